package drafts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/pagination"
)

// System defines the draft history contract.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Draft], error)
	Find(ctx context.Context, id uuid.UUID) (*Draft, error)
	Record(ctx context.Context, cmd RecordCommand) (*Draft, error)
}
