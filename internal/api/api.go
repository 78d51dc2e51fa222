// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/internal/infrastructure"
	"github.com/JaimeStill/scrivener/pkg/middleware"
	"github.com/JaimeStill/scrivener/pkg/module"
	"github.com/JaimeStill/scrivener/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)
	groups := domainGroups(domain, cfg)

	spec, err := openapi.MarshalJSON(buildSpec(cfg, groups))
	if err != nil {
		return nil, fmt.Errorf("openapi spec: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, groups, spec)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.Recover(runtime.Logger),
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
	)

	return m, nil
}
