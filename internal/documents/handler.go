package documents

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/formatting"
	"github.com/JaimeStill/scrivener/pkg/handlers"
	"github.com/JaimeStill/scrivener/pkg/pagination"
	"github.com/JaimeStill/scrivener/pkg/routes"
)

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "documents"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Returns: pagination.PageResult[Document]{}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Returns: Document{}},
			{Method: "POST", Pattern: "", Handler: h.Upload, Returns: Document{}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, Body: SearchRequest{}, Returns: pagination.PageResult[Document]{}},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download},
			{Method: "PUT", Pattern: "/{id}/extraction", Handler: h.RecordExtraction, Body: ExtractionCommand{}, Returns: Document{}},
			{Method: "GET", Pattern: "/{id}/proposal", Handler: h.Proposal, Returns: Proposal{}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of documents with optional query parameter filters.
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

// Find returns a single document by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching documents.
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

// Upload accepts a multipart form. A single "file" part is stored and
// returned as a document; one or more "files" parts are processed as a batch
// and reported per file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
				fmt.Errorf("%w: limit %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 1)))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidFile, err))
		return
	}

	if batch := r.MultipartForm.File["files"]; len(batch) > 0 {
		h.uploadBatch(w, r, batch)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: expected one file part", ErrInvalidFile))
		return
	}

	cmd, err := h.readFile(files[0])
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	doc, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) uploadBatch(w http.ResponseWriter, r *http.Request, files []*multipart.FileHeader) {
	results := make([]BatchResult, len(files))

	var (
		cmds  []CreateCommand
		index []int
	)
	for i, fh := range files {
		cmd, err := h.readFile(fh)
		if err != nil {
			results[i] = BatchResult{Filename: fh.Filename, Error: err.Error()}
			continue
		}
		cmds = append(cmds, cmd)
		index = append(index, i)
	}

	if len(cmds) > 0 {
		for j, res := range h.sys.CreateBatch(r.Context(), cmds) {
			results[index[j]] = res
		}
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

func (h *Handler) readFile(fh *multipart.FileHeader) (CreateCommand, error) {
	file, err := fh.Open()
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(data) == 0 {
		return CreateCommand{}, fmt.Errorf("%w: %s is empty", ErrInvalidFile, fh.Filename)
	}

	contentType := DetectContentType(fh.Header.Get("Content-Type"), fh.Filename, data)
	if !Supported(contentType) {
		return CreateCommand{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, fh.Filename, contentType)
	}

	return CreateCommand{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: contentType,
		PageCount:   extractPDFPageCount(h.logger, data, contentType),
	}, nil
}

// Download streams the stored source file.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	doc, rc, err := h.sys.Download(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("document download interrupted", "id", id, "error", err)
	}
}

// RecordExtraction stores the upstream extractor's payload for a document.
func (h *Handler) RecordExtraction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	var cmd ExtractionCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}

	doc, err := h.sys.RecordExtraction(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Proposal returns a template definition drafted from an extracted document.
func (h *Handler) Proposal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	p, err := h.sys.Propose(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Delete removes a document by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: id must be a UUID", ErrInvalidRequest))
		return uuid.Nil, false
	}
	return id, true
}
