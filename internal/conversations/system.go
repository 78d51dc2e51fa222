package conversations

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/drafts"
	"github.com/JaimeStill/scrivener/internal/matching"
	"github.com/JaimeStill/scrivener/internal/variables"
)

// System defines the drafting conversation contract. Every command loads the
// session, applies one transition, and stores the result.
type System interface {
	Handler() *Handler

	Start(ctx context.Context) (*Session, error)
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	End(ctx context.Context, id uuid.UUID) error

	// Query ranks the catalog and selects the top match when there is one.
	Query(ctx context.Context, id uuid.UUID, text string) (*Session, error)
	// Select binds a template by UUID or template_id.
	Select(ctx context.Context, id uuid.UUID, ref string) (*Session, error)
	Answer(ctx context.Context, id uuid.UUID, key string, raw *string) (variables.Result, *Session, error)
	Questions(ctx context.Context, id uuid.UUID) ([]variables.Question, error)
	Reset(ctx context.Context, id uuid.UUID) (*Session, error)
	// Generate renders and records the draft. On failure the session returns
	// to collecting answers with the reason attached.
	Generate(ctx context.Context, id uuid.UUID) (*Session, error)
}

// Matcher ranks the catalog.
type Matcher interface {
	Match(ctx context.Context, query string) ([]matching.Match, error)
}

// Recorder persists generated drafts.
type Recorder interface {
	Record(ctx context.Context, cmd drafts.RecordCommand) (*drafts.Draft, error)
}
