package templates

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/pagination"
)

// System defines the public contract for template catalog operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Template], error)
	Find(ctx context.Context, id uuid.UUID) (*Template, error)
	FindByTemplateID(ctx context.Context, templateID string) (*Template, error)

	// Catalog returns an immutable snapshot of every published template,
	// newest first. Callers must not modify it.
	Catalog(ctx context.Context) ([]Template, error)
	// Browse fuzzy-searches the catalog by title, template_id, doc_type and tags.
	Browse(ctx context.Context, q string, limit int) ([]Template, error)

	Create(ctx context.Context, cmd CreateCommand) (*Created, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Finder looks up single templates.
type Finder interface {
	Find(ctx context.Context, id uuid.UUID) (*Template, error)
	FindByTemplateID(ctx context.Context, templateID string) (*Template, error)
}

// Resolve finds a template by UUID or, when ref is not a UUID, by template_id.
func Resolve(ctx context.Context, f Finder, ref string) (*Template, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return f.Find(ctx, id)
	}
	return f.FindByTemplateID(ctx, ref)
}
