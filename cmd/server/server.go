package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/JaimeStill/scrivener/internal/api"
	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/internal/infrastructure"
	"github.com/JaimeStill/scrivener/pkg/module"
)

const readinessTimeout = 2 * time.Second

// Server owns the infrastructure, the mounted modules, and the HTTP listener.
type Server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

// NewServer builds infrastructure and mounts the API module under its base path.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	router.Mount(apiModule)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"base_path", apiModule.Prefix(),
		"version", cfg.Version,
	)

	return &Server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start launches infrastructure hooks and the HTTP listener.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
			s.infra.Logger.Warn("started with degraded subsystems", "error", err)
			return
		}
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown cancels the lifecycle context and waits for hooks up to timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		probes := map[string]func(context.Context) error{
			"database": infra.Database.Ping,
			"cache":    infra.Cache.Ping,
			"storage":  infra.Storage.Ping,
		}

		checks := map[string]string{"status": "ready"}
		status := http.StatusOK

		for name, ping := range probes {
			checks[name] = "ok"
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				checks["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		writeStatus(w, status, checks)
	})

	return router
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
