package documents

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/scrivener/pkg/pagination"
	"github.com/JaimeStill/scrivener/pkg/query"
	"github.com/JaimeStill/scrivener/pkg/repository"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

// batchWorkers bounds concurrent uploads within one batch.
const batchWorkers = 4

const returning = `RETURNING id, filename, content_type, size_bytes, page_count, storage_key, status, raw_text, extraction, uploaded_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if !Supported(cmd.ContentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, cmd.ContentType)
	}

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	q := `
		INSERT INTO documents(id, filename, content_type, size_bytes, page_count, storage_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		` + returning

	insertArgs := []any{
		id,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
		StatusUploaded,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanDocument)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "filename", d.Filename, "content_type", d.ContentType)
	return &d, nil
}

func (r *repo) CreateBatch(ctx context.Context, cmds []CreateCommand) []BatchResult {
	results := make([]BatchResult, len(cmds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)

	for i, cmd := range cmds {
		g.Go(func() error {
			results[i].Filename = cmd.Filename

			doc, err := r.Create(gctx, cmd)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Document = doc
			return nil
		})
	}

	g.Wait()

	r.logger.Info("document batch processed", "files", len(cmds))
	return results
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*Document, io.ReadCloser, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := r.storage.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download document blob: %w", err)
	}
	return doc, rc, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	err = repository.Tx(ctx, r.db, func(tx *sql.Tx) error {
		return repository.ExecExpectOne(ctx, tx, "DELETE FROM documents WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, doc.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", doc.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) RecordExtraction(ctx context.Context, id uuid.UUID, cmd ExtractionCommand) (*Document, error) {
	if err := checkExtraction(cmd); err != nil {
		return nil, err
	}

	text := SanitizeText(cmd.Text)
	extraction, err := json.Marshal(cmd.Extraction)
	if err != nil {
		return nil, fmt.Errorf("encode extraction: %w", err)
	}

	q := `
		UPDATE documents
		SET raw_text = $2, extraction = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		` + returning

	args := []any{id, text, string(extraction), StatusExtracted}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, args, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("extraction recorded", "id", id, "variables", len(cmd.Variables), "text_length", len(text))
	return &d, nil
}

func (r *repo) Propose(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return Propose(doc)
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "document"
	}
	return url.PathEscape(name)
}
