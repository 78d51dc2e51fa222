package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/JaimeStill/scrivener/pkg/pagination"
	"github.com/JaimeStill/scrivener/pkg/query"
	"github.com/JaimeStill/scrivener/pkg/repository"
)

// maxVersionProbe bounds how many _vN suffixes are tried when a generated
// template_id collides with a published one.
const maxVersionProbe = 20

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	catalog    *catalogCache
}

// New creates a template repository implementing the System interface.
// The catalog snapshot is reloaded after local writes or once older than catalogTTL.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
	catalogTTL time.Duration,
) System {
	r := &repo{
		db:         db,
		logger:     logger.With("system", "templates"),
		pagination: pagination,
	}
	r.catalog = newCatalogCache(r.loadCatalog, catalogTTL, time.Now)
	return r
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Template], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "Title", "FileDescription", "TemplateID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Template, error) {
	return r.findBy(ctx, "ID", id)
}

func (r *repo) FindByTemplateID(ctx context.Context, templateID string) (*Template, error) {
	return r.findBy(ctx, "TemplateID", templateID)
}

func (r *repo) findBy(ctx context.Context, field string, value any) (*Template, error) {
	q, args := query.NewBuilder(projection).BuildSingle(field, value)

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTemplate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func (r *repo) Catalog(ctx context.Context) ([]Template, error) {
	return r.catalog.get(ctx)
}

func (r *repo) loadCatalog(ctx context.Context) ([]Template, error) {
	q, args := query.NewBuilder(projection, defaultSort...).Build()
	items, err := repository.QueryMany(ctx, r.db, q, args, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	r.logger.Debug("catalog loaded", "templates", len(items))
	return items, nil
}

func (r *repo) Browse(ctx context.Context, q string, limit int) ([]Template, error) {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return browse(catalog, q, limit), nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Created, error) {
	cmd, warnings, err := prepare(cmd)
	if err != nil {
		return nil, err
	}

	tags, err := json.Marshal(cmd.SimilarityTags)
	if err != nil {
		return nil, fmt.Errorf("encode similarity_tags: %w", err)
	}
	vars, err := json.Marshal(cmd.Variables)
	if err != nil {
		return nil, fmt.Errorf("encode variables: %w", err)
	}

	q := `
		INSERT INTO templates(id, template_id, title, file_description, doc_type, jurisdiction, similarity_tags, body_md, variables)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, template_id, title, file_description, doc_type, jurisdiction, similarity_tags, body_md, variables, created_at`

	insert := func(templateID string) (Template, error) {
		args := []any{
			uuid.New(),
			templateID,
			cmd.Title,
			cmd.FileDescription,
			cmd.DocType,
			cmd.Jurisdiction,
			string(tags),
			cmd.BodyMD,
			string(vars),
		}
		return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Template, error) {
			return repository.QueryOne(ctx, tx, q, args, scanTemplate)
		})
	}

	var t Template
	if cmd.TemplateID != "" {
		t, err = insert(cmd.TemplateID)
	} else {
		for version := 1; version <= maxVersionProbe; version++ {
			t, err = insert(GenerateTemplateID(cmd.Title, version))
			if !errors.Is(repository.MapError(err, ErrNotFound, ErrDuplicate), ErrDuplicate) {
				break
			}
		}
	}
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.catalog.invalidate()

	for _, w := range warnings {
		r.logger.Warn("template published with warning", "template_id", t.TemplateID, "warning", w)
	}
	r.logger.Info("template created", "id", t.ID, "template_id", t.TemplateID, "variables", len(t.Variables))

	return &Created{Template: t, Warnings: warnings}, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.Tx(ctx, r.db, func(tx *sql.Tx) error {
		return repository.ExecExpectOne(ctx, tx, "DELETE FROM templates WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.catalog.invalidate()
	r.logger.Info("template deleted", "id", id)
	return nil
}

type searchSource []Template

func (s searchSource) String(i int) string {
	t := s[i]
	return strings.Join([]string{t.Title, t.TemplateID, t.DocType, strings.Join(t.SimilarityTags, " ")}, " ")
}

func (s searchSource) Len() int { return len(s) }

// browse ranks catalog entries by fuzzy match against q. An empty q returns
// the catalog order. limit <= 0 means no limit.
func browse(catalog []Template, q string, limit int) []Template {
	q = strings.TrimSpace(q)

	var out []Template
	if q == "" {
		out = append(out, catalog...)
	} else {
		for _, m := range fuzzy.FindFrom(q, searchSource(catalog)) {
			out = append(out, catalog[m.Index])
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Template{}
	}
	return out
}
