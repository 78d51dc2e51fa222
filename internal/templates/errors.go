package templates

import (
	"errors"
	"net/http"
)

// Domain errors for template operations.
var (
	ErrNotFound          = errors.New("template not found")
	ErrDuplicate         = errors.New("template_id already exists")
	ErrInvalidDefinition = errors.New("invalid template definition")
	ErrInvalidRequest    = errors.New("invalid request")
)

// MapHTTPStatus maps template domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDefinition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
