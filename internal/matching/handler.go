package matching

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/scrivener/pkg/handlers"
	"github.com/JaimeStill/scrivener/pkg/routes"
)

// Request is the body of a match request.
type Request struct {
	Query string `json:"query"`
}

// Handler provides the template matching endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "matching"),
	}
}

// Routes mounts the matcher beside the template catalog endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/templates",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/match", Handler: h.Match, Body: Request{}, Returns: []Match{}},
		},
	}
}

// Match ranks the catalog against the request query. An empty result is a
// normal outcome; the caller falls back to browsing.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	matches, err := h.sys.Match(r.Context(), req.Query)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matches)
}
