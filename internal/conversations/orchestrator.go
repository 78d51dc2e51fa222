package conversations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/drafts"
	"github.com/JaimeStill/scrivener/internal/matching"
	"github.com/JaimeStill/scrivener/internal/templates"
	"github.com/JaimeStill/scrivener/internal/variables"
	"github.com/JaimeStill/scrivener/pkg/cache"
)

// generationLease bounds how long an unfinished generation blocks the session.
const generationLease = time.Minute

type orchestrator struct {
	store     *store
	templates templates.Finder
	matcher   Matcher
	drafts    Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// New creates the conversation System. Sessions live in c and expire after
// ttl without activity.
func New(
	c cache.System,
	ttl time.Duration,
	finder templates.Finder,
	matcher Matcher,
	recorder Recorder,
	logger *slog.Logger,
) System {
	return &orchestrator{
		store:     &store{cache: c, ttl: ttl, lease: generationLease},
		templates: finder,
		matcher:   matcher,
		drafts:    recorder,
		logger:    logger.With("system", "conversations"),
		now:       time.Now,
	}
}

func (o *orchestrator) Handler() *Handler {
	return NewHandler(o, o.logger)
}

func (o *orchestrator) Start(ctx context.Context) (*Session, error) {
	s := NewSession(o.now())
	if err := o.store.create(ctx, s); err != nil {
		return nil, err
	}

	o.logger.Info("session started", "id", s.ID)
	return s, nil
}

func (o *orchestrator) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	return o.store.get(ctx, id)
}

func (o *orchestrator) End(ctx context.Context, id uuid.UUID) error {
	if err := o.store.delete(ctx, id); err != nil {
		return err
	}
	o.logger.Info("session ended", "id", id)
	return nil
}

func (o *orchestrator) Query(ctx context.Context, id uuid.UUID, text string) (*Session, error) {
	if _, err := o.store.get(ctx, id); err != nil {
		return nil, err
	}

	matches, err := o.matcher.Match(ctx, text)
	if err != nil {
		if errors.Is(err, matching.ErrEmptyQuery) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, err
	}

	var top *templates.Template
	if len(matches) > 0 {
		top, err = o.templates.Find(ctx, matches[0].ID)
		if err != nil {
			return nil, fmt.Errorf("load matched template %s: %w", matches[0].TemplateID, err)
		}
	}

	s, err := o.store.update(ctx, id, o.now, func(s *Session) error {
		return s.Matched(text, matches, top)
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("session queried", "id", id, "matches", len(matches), "state", s.State)
	return s, nil
}

func (o *orchestrator) Select(ctx context.Context, id uuid.UUID, ref string) (*Session, error) {
	t, err := templates.Resolve(ctx, o.templates, ref)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return nil, fmt.Errorf("%w: template %s not found", ErrInvalidRequest, ref)
		}
		return nil, err
	}

	s, err := o.store.update(ctx, id, o.now, func(s *Session) error {
		return s.Select(t)
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("template selected", "id", id, "template_id", t.TemplateID, "state", s.State)
	return s, nil
}

func (o *orchestrator) Answer(ctx context.Context, id uuid.UUID, key string, raw *string) (variables.Result, *Session, error) {
	var result variables.Result

	s, err := o.store.update(ctx, id, o.now, func(s *Session) error {
		r, err := s.Answer(key, raw)
		result = r
		return err
	})
	if err != nil {
		return variables.Result{}, nil, err
	}

	o.logger.Debug("answer recorded", "id", id, "key", key, "ok", result.OK(), "state", s.State)
	return result, s, nil
}

func (o *orchestrator) Questions(ctx context.Context, id uuid.UUID) ([]variables.Question, error) {
	s, err := o.store.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Template == nil {
		return nil, ErrNoTemplate
	}
	return s.Questions(), nil
}

func (o *orchestrator) Reset(ctx context.Context, id uuid.UUID) (*Session, error) {
	s, err := o.store.update(ctx, id, o.now, func(s *Session) error {
		return s.Reset()
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("session reset", "id", id)
	return s, nil
}

// Generate claims the session, renders and records the draft, then completes
// the claim. The claim keeps answers, resets and other generations out while
// the draft is being recorded.
func (o *orchestrator) Generate(ctx context.Context, id uuid.UUID) (*Session, error) {
	var (
		cmd    drafts.RecordCommand
		genErr error
	)

	s, err := o.store.update(ctx, id, o.now, func(s *Session) error {
		genErr = nil

		answers, err := s.Claim(o.now())
		if err != nil {
			return err
		}

		text, err := drafts.Generate(s.Template, answers)
		if err != nil {
			genErr = err
			s.Fail(err.Error())
			return nil
		}

		cmd = drafts.RecordCommand{
			TemplateUUID: s.Template.ID,
			TemplateID:   s.Template.TemplateID,
			Title:        s.Template.Title,
			UserQuery:    s.Query,
			Answers:      answers,
			DraftMD:      text,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		o.logger.Warn("generation failed", "id", id, "error", genErr)
		return s, genErr
	}
	claim := s.Revision

	d, err := o.drafts.Record(ctx, cmd)
	if err != nil {
		recErr := fmt.Errorf("record draft: %w", err)
		s, uerr := o.store.update(ctx, id, o.now, func(s *Session) error {
			return s.Release(claim, recErr.Error())
		})
		if uerr != nil {
			o.logger.Error("release session after failed record", "id", id, "error", uerr)
		}
		return s, recErr
	}

	s, err = o.store.update(ctx, id, o.now, func(s *Session) error {
		return s.Complete(d, claim)
	})
	if err != nil {
		o.logger.Error("draft recorded but session not completed", "id", id, "draft_id", d.ID, "error", err)
		return nil, err
	}

	o.logger.Info("draft generated", "id", id, "draft_id", d.ID, "template_id", d.TemplateID)
	return s, nil
}
