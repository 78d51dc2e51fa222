package api

import (
	"github.com/JaimeStill/scrivener/internal/conversations"
	"github.com/JaimeStill/scrivener/internal/documents"
	"github.com/JaimeStill/scrivener/internal/drafts"
	"github.com/JaimeStill/scrivener/internal/matching"
	"github.com/JaimeStill/scrivener/internal/templates"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Templates     templates.System
	Matching      matching.System
	Drafts        drafts.System
	Conversations conversations.System
	Documents     documents.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	templatesSystem := templates.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
		runtime.Matching.CatalogTTLDuration(),
	)

	matchingSystem := matching.NewSystem(
		templatesSystem,
		matching.New(runtime.Matching.ThresholdValue(), runtime.Matching.MaxResults),
		runtime.Logger,
	)

	draftsSystem := drafts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	conversationsSystem := conversations.New(
		runtime.Cache,
		runtime.Sessions.TTLDuration(),
		templatesSystem,
		matchingSystem,
		draftsSystem,
		runtime.Logger,
	)

	documentsSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Templates:     templatesSystem,
		Matching:      matchingSystem,
		Drafts:        draftsSystem,
		Conversations: conversationsSystem,
		Documents:     documentsSystem,
	}
}
