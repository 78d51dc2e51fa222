package api

import (
	"net/http"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/pkg/routes"
)

func domainGroups(domain *Domain, cfg *config.Config) []routes.Group {
	return []routes.Group{
		domain.Templates.Handler().Routes(),
		domain.Matching.Handler().Routes(),
		domain.Conversations.Handler().Routes(),
		domain.Drafts.Handler().Routes(),
		domain.Documents.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	}
}

func registerRoutes(mux *http.ServeMux, groups []routes.Group, spec []byte) {
	routes.Register(mux, groups...)
	mux.HandleFunc("GET /openapi.json", openapiHandler(spec))
}
