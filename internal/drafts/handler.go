package drafts

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/handlers"
	"github.com/JaimeStill/scrivener/pkg/pagination"
	"github.com/JaimeStill/scrivener/pkg/routes"
)

// Handler provides HTTP endpoints for draft history.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "drafts"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/drafts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Returns: pagination.PageResult[Draft]{}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Body: SearchRequest{}, Returns: pagination.PageResult[Draft]{}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Returns: Draft{}},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page, FiltersFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	d, ok := h.find(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, d)
}

// Download returns the draft body as a markdown attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	d, ok := h.find(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("%s-%s.md", d.TemplateID, d.ID.String()[:8])

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(d.DraftMD))
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) (*Draft, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: id must be a UUID", ErrInvalidRequest))
		return nil, false
	}

	d, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return d, true
}
