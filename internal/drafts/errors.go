package drafts

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound              = errors.New("draft not found")
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
	ErrIncompleteAnswerSet   = errors.New("incomplete answer set")
	ErrInvalidRequest        = errors.New("invalid request")
)

// MapHTTPStatus maps draft domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnresolvedPlaceholder), errors.Is(err, ErrIncompleteAnswerSet):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
