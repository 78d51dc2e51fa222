package documents

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	// CreateBatch uploads every file independently; one failure does not
	// affect the others. Results keep the input order.
	CreateBatch(ctx context.Context, cmds []CreateCommand) []BatchResult
	// Download returns the stored file. The caller must close the reader.
	Download(ctx context.Context, id uuid.UUID) (*Document, io.ReadCloser, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordExtraction stores the extractor's text and proposed variables
	// and marks the document extracted. Re-extraction overwrites.
	RecordExtraction(ctx context.Context, id uuid.UUID, cmd ExtractionCommand) (*Document, error)
	// Propose drafts a template definition from an extracted document.
	Propose(ctx context.Context, id uuid.UUID) (*Proposal, error)
}
