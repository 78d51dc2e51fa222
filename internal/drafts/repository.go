package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/pagination"
	"github.com/JaimeStill/scrivener/pkg/query"
	"github.com/JaimeStill/scrivener/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "drafts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Draft], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "Title", "TemplateID", "UserQuery")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanDraft)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Draft, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	d, err := repository.QueryOne(ctx, r.db, q, args, scanDraft)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrInvalidRequest)
	}
	return &d, nil
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Draft, error) {
	answers, err := json.Marshal(cmd.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	q := `
		INSERT INTO drafts(id, template_uuid, template_id, title, user_query, answers, draft_md)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, template_uuid, template_id, title, user_query, answers, draft_md, created_at`

	args := []any{uuid.New(), cmd.TemplateUUID, cmd.TemplateID, cmd.Title, cmd.UserQuery, string(answers), cmd.DraftMD}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Draft, error) {
		return repository.QueryOne(ctx, tx, q, args, scanDraft)
	})
	if err != nil {
		return nil, fmt.Errorf("record draft: %w", err)
	}

	r.logger.Info("draft recorded", "id", d.ID, "template_id", d.TemplateID)
	return &d, nil
}
