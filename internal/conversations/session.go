// Package conversations drives a drafting session from a user's request to a
// finished draft: template selection, answer collection and generation.
//
// A Session is a plain state machine value. Its methods validate the
// transition, mutate the value, and never perform I/O; the Orchestrator
// loads, applies and stores sessions one writer at a time.
package conversations

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/drafts"
	"github.com/JaimeStill/scrivener/internal/matching"
	"github.com/JaimeStill/scrivener/internal/templates"
	"github.com/JaimeStill/scrivener/internal/variables"
)

// State is a session's position in the drafting flow.
type State string

const (
	SelectingTemplate State = "selecting_template"
	CollectingAnswers State = "collecting_answers"
	ReadyToGenerate   State = "ready_to_generate"
	Done              State = "done"
)

// Answer is the latest raw input for a variable and its validation.
type Answer struct {
	Raw    *string          `json:"raw"`
	Result variables.Result `json:"result"`
}

// Session is one drafting conversation.
type Session struct {
	ID         uuid.UUID           `json:"id"`
	State      State               `json:"state"`
	Query      *string             `json:"query,omitempty"`
	Candidates []matching.Match    `json:"candidates"`
	Template   *templates.Template `json:"template,omitempty"`
	Answers    map[string]Answer   `json:"answers"`
	Failure    *string             `json:"failure,omitempty"`
	Draft      *drafts.Draft       `json:"draft,omitempty"`
	Generating *time.Time          `json:"generating,omitempty"`
	Revision   uint64              `json:"revision"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Pending describes a variable that still blocks generation.
type Pending struct {
	Key      string                `json:"key"`
	Label    string                `json:"label"`
	Required bool                  `json:"required"`
	Error    *variables.FieldError `json:"error,omitempty"`
}

// NewSession starts a conversation in SelectingTemplate.
func NewSession(now time.Time) *Session {
	return &Session{
		ID:         uuid.New(),
		State:      SelectingTemplate,
		Candidates: []matching.Match{},
		Answers:    map[string]Answer{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Matched records a query and its ranked candidates. When top is non-nil it
// is selected; otherwise the session keeps waiting for a selection.
func (s *Session) Matched(query string, candidates []matching.Match, top *templates.Template) error {
	if err := s.expect(SelectingTemplate); err != nil {
		return err
	}

	s.Query = &query
	s.Candidates = candidates
	if s.Candidates == nil {
		s.Candidates = []matching.Match{}
	}

	if top == nil {
		return nil
	}
	return s.Select(top)
}

// Select binds the session to t and starts collecting answers.
func (s *Session) Select(t *templates.Template) error {
	if err := s.expect(SelectingTemplate); err != nil {
		return err
	}

	s.Template = t
	s.Answers = map[string]Answer{}
	s.Failure = nil
	s.State = CollectingAnswers
	s.evaluate()
	return nil
}

// Answer validates raw (nil when absent) for key and records it as the
// latest answer. Readiness is re-evaluated after every answer.
func (s *Session) Answer(key string, raw *string) (variables.Result, error) {
	if err := s.expect(CollectingAnswers, ReadyToGenerate); err != nil {
		return variables.Result{}, err
	}
	if s.Generating != nil {
		return variables.Result{}, ErrGenerating
	}

	v, ok := s.Template.Variable(key)
	if !ok {
		return variables.Result{}, fmt.Errorf("%w: %s", ErrUnknownVariable, key)
	}

	result := variables.Validate(v, raw)
	s.Answers[key] = Answer{Raw: raw, Result: result}
	s.evaluate()
	return result, nil
}

// Reset discards the selection and answers and returns to SelectingTemplate.
func (s *Session) Reset() error {
	if s.State == Done {
		return ErrSessionDone
	}
	if s.Generating != nil {
		return ErrGenerating
	}

	s.State = SelectingTemplate
	s.Query = nil
	s.Candidates = []matching.Match{}
	s.Template = nil
	s.Answers = map[string]Answer{}
	s.Failure = nil
	return nil
}

// Validated returns the normalized answer set. It fails unless the session
// is ReadyToGenerate.
func (s *Session) Validated() (drafts.Answers, error) {
	if err := s.expect(ReadyToGenerate); err != nil {
		return nil, err
	}

	out := make(drafts.Answers, len(s.Answers))
	for key, a := range s.Answers {
		out[key] = a.Result.Value
	}
	return out, nil
}

// Claim marks the session as generating at now and returns the answer set
// to render. Answers and resets are refused until the claim is completed or
// released, and a second claim fails with ErrGenerating.
func (s *Session) Claim(now time.Time) (drafts.Answers, error) {
	answers, err := s.Validated()
	if err != nil {
		return nil, err
	}
	if s.Generating != nil {
		return nil, ErrGenerating
	}

	s.Generating = &now
	return answers, nil
}

// Fail returns a ready session to CollectingAnswers with reason attached.
// Answers are kept and any generation claim is dropped.
func (s *Session) Fail(reason string) {
	if s.State == Done {
		return
	}
	s.Generating = nil
	s.Failure = &reason
	if s.Template == nil {
		s.State = SelectingTemplate
		return
	}
	s.State = CollectingAnswers
}

// Release drops the claim taken at revision and records reason as a failure.
func (s *Session) Release(revision uint64, reason string) error {
	if err := s.holds(revision); err != nil {
		return err
	}
	s.Fail(reason)
	return nil
}

// Complete attaches the recorded draft and ends the session. The claim taken
// at revision must still be held and the session must still be ready.
func (s *Session) Complete(d *drafts.Draft, revision uint64) error {
	if err := s.holds(revision); err != nil {
		return err
	}
	if s.State != ReadyToGenerate {
		return ErrNotReady
	}

	s.Draft = d
	s.Failure = nil
	s.Generating = nil
	s.State = Done
	return nil
}

func (s *Session) holds(revision uint64) error {
	switch {
	case s.State == Done:
		return ErrSessionDone
	case s.Template == nil:
		return ErrNoTemplate
	case s.Generating == nil || s.Revision != revision:
		return fmt.Errorf("%w: generation claim lost", ErrConflict)
	}
	return nil
}

// Pending lists template variables without a passing latest answer, in
// template order.
func (s *Session) Pending() []Pending {
	out := []Pending{}
	if s.Template == nil {
		return out
	}

	for _, v := range s.Template.Variables {
		a, answered := s.Answers[v.Key]
		if answered && a.Result.OK() {
			continue
		}
		p := Pending{Key: v.Key, Label: v.Label, Required: v.Required}
		if answered {
			p.Error = a.Result.Error
		}
		out = append(out, p)
	}
	return out
}

// Questions returns the prompts for every pending variable.
func (s *Session) Questions() []variables.Question {
	out := []variables.Question{}
	for _, p := range s.Pending() {
		v, _ := s.Template.Variable(p.Key)
		out = append(out, v.Ask())
	}
	return out
}

// evaluate moves between CollectingAnswers and ReadyToGenerate. Ready means
// every variable has a latest answer and every answer passed.
func (s *Session) evaluate() {
	if s.State != CollectingAnswers && s.State != ReadyToGenerate {
		return
	}

	if len(s.Pending()) == 0 {
		s.State = ReadyToGenerate
		return
	}
	s.State = CollectingAnswers
}

func (s *Session) expect(states ...State) error {
	for _, st := range states {
		if s.State == st {
			return nil
		}
	}

	switch {
	case s.State == Done:
		return ErrSessionDone
	case s.State == SelectingTemplate:
		for _, st := range states {
			if st == CollectingAnswers || st == ReadyToGenerate {
				return ErrNoTemplate
			}
		}
	}
	if len(states) == 1 && states[0] == ReadyToGenerate {
		return ErrNotReady
	}
	return fmt.Errorf("%w: %s", ErrInvalidTransition, s.State)
}
