package conversations

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/drafts"
	"github.com/JaimeStill/scrivener/internal/variables"
	"github.com/JaimeStill/scrivener/pkg/handlers"
	"github.com/JaimeStill/scrivener/pkg/routes"
)

// QueryRequest carries the user's free-text description of the document.
type QueryRequest struct {
	Query string `json:"query"`
}

// SelectRequest names a template by UUID or template_id.
type SelectRequest struct {
	Template string `json:"template"`
}

// AnswerRequest supplies a value for one variable. A null or missing value
// is an absent answer.
type AnswerRequest struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// AnswerResponse pairs the field's validation with the updated session.
type AnswerResponse struct {
	Result  variables.Result `json:"result"`
	Pending []Pending        `json:"pending"`
	Session *Session         `json:"session"`
}

// Handler provides HTTP endpoints for drafting sessions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "conversations"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Start, Returns: Session{}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Returns: Session{}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.End},
			{Method: "POST", Pattern: "/{id}/query", Handler: h.Query, Body: QueryRequest{}, Returns: Session{}},
			{Method: "POST", Pattern: "/{id}/select", Handler: h.Select, Body: SelectRequest{}, Returns: Session{}},
			{Method: "POST", Pattern: "/{id}/answers", Handler: h.Answer, Body: AnswerRequest{}, Returns: AnswerResponse{}},
			{Method: "GET", Pattern: "/{id}/questions", Handler: h.Questions, Returns: []variables.Question{}},
			{Method: "POST", Pattern: "/{id}/reset", Handler: h.Reset, Returns: Session{}},
			{Method: "POST", Pattern: "/{id}/generate", Handler: h.Generate, Returns: drafts.Draft{}},
		},
	}
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Start(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, s)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sys.End(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Query matches the request text against the catalog. An empty candidate
// list leaves the session in selecting_template; the caller browses instead.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req QueryRequest
	if !h.decode(w, r, &req) {
		return
	}

	s, err := h.sys.Query(r.Context(), id, req.Query)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Template) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: template is required", ErrInvalidRequest))
		return
	}

	s, err := h.sys.Select(r.Context(), id, strings.TrimSpace(req.Template))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

// Answer records one value. Validation failures are part of a successful
// response; they attach to the field and never end the session.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, s, err := h.sys.Answer(r.Context(), id, req.Key, req.Value)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, AnswerResponse{
		Result:  result,
		Pending: s.Pending(),
		Session: s,
	})
}

func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	q, err := h.sys.Questions(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, q)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Reset(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

// Generate returns the recorded draft.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Generate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, s.Draft)
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: id must be a UUID", ErrInvalidRequest))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := handlers.DecodeJSON(r, v); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return false
	}
	return true
}
