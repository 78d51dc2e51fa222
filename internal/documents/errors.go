package documents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/scrivener/pkg/storage"
)

// Domain errors for document operations.
var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("document already exists")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
	ErrUnsupportedType = errors.New("unsupported file type; upload PDF or DOCX")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotExtracted    = errors.New("document has not been extracted")
)

// MapHTTPStatus maps document domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotExtracted):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidFile), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
