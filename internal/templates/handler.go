package templates

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/handlers"
	"github.com/JaimeStill/scrivener/pkg/pagination"
	"github.com/JaimeStill/scrivener/pkg/routes"
)

const maxDefinitionSize = 1 << 20

// Handler provides HTTP endpoints for template operations.
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
		logger:     logger.With("handler", "templates"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for template endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/templates",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Returns: pagination.PageResult[Template]{}},
			{Method: "POST", Pattern: "", Handler: h.Create, Body: CreateCommand{}, Returns: Created{}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Body: SearchRequest{}, Returns: pagination.PageResult[Template]{}},
			{Method: "POST", Pattern: "/check", Handler: h.Check, Body: CreateCommand{}, Returns: CheckResult{}},
			{Method: "POST", Pattern: "/import", Handler: h.Import, Returns: Created{}},
			{Method: "GET", Pattern: "/browse", Handler: h.Browse, Returns: []Template{}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Returns: Template{}},
			{Method: "GET", Pattern: "/{id}/export", Handler: h.Export},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
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

// Browse fuzzy-searches the catalog with the q query parameter.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidRequest))
			return
		}
		limit = min(n, h.pagination.MaxPageSize)
	}

	result, err := h.sys.Browse(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a template by UUID or template_id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	t, err := Resolve(r.Context(), h.sys, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}

	h.create(w, r, cmd)
}

// Import publishes a YAML definition from the request body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	cmd, err := DecodeYAML(http.MaxBytesReader(w, r.Body, maxDefinitionSize))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.create(w, r, cmd)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, cmd CreateCommand) {
	created, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, created)
}

// Check validates a definition without publishing it.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Check(cmd))
}

// Export writes a template as a YAML definition attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	t, err := Resolve(r.Context(), h.sys, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var buf bytes.Buffer
	if err := EncodeYAML(&buf, t); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.TemplateID+".yaml"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: id must be a UUID", ErrInvalidRequest))
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
