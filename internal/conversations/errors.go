package conversations

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/scrivener/internal/drafts"
)

var (
	ErrNotFound          = errors.New("session not found")
	ErrInvalidTransition = errors.New("command not allowed in current state")
	ErrSessionDone       = errors.New("session is done")
	ErrNoTemplate        = errors.New("no template selected")
	ErrUnknownVariable   = errors.New("unknown variable")
	ErrNotReady          = errors.New("answers are incomplete or invalid")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrConflict          = errors.New("session modified concurrently")
	ErrGenerating        = errors.New("draft generation in progress")
)

// MapHTTPStatus maps conversation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnknownVariable):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrSessionDone),
		errors.Is(err, ErrNoTemplate),
		errors.Is(err, ErrNotReady),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrGenerating),
		errors.Is(err, drafts.ErrIncompleteAnswerSet),
		errors.Is(err, drafts.ErrUnresolvedPlaceholder):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
