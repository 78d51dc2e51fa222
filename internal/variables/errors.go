package variables

import "errors"

// Field-level validation failures. A Result carries one of these; they are
// recoverable and reported against the variable they concern.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrNotInEnum            = errors.New("value not in allowed set")
	ErrPatternMismatch      = errors.New("pattern mismatch")
)

// Definition failures, reported when a variable is authored.
var (
	ErrInvalidDType   = errors.New("invalid dtype")
	ErrInvalidKey     = errors.New("invalid variable key")
	ErrMissingLabel   = errors.New("variable label required")
	ErrInvalidPattern = errors.New("invalid regex pattern")
	ErrInvalidEnum    = errors.New("invalid enum values")
)

// Kind names a field-level failure in API payloads.
type Kind string

const (
	KindMissingRequiredField Kind = "missing_required_field"
	KindTypeMismatch         Kind = "type_mismatch"
	KindNotInEnum            Kind = "not_in_enum"
	KindPatternMismatch      Kind = "pattern_mismatch"
)

var kindErrors = map[Kind]error{
	KindMissingRequiredField: ErrMissingRequiredField,
	KindTypeMismatch:         ErrTypeMismatch,
	KindNotInEnum:            ErrNotInEnum,
	KindPatternMismatch:      ErrPatternMismatch,
}

// FieldError is a failed validation of one variable. Message is suitable for
// direct display.
type FieldError struct {
	Key     string `json:"key"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Key + ": " + e.Message
}

// Unwrap exposes the sentinel for Kind so errors.Is matches it.
func (e *FieldError) Unwrap() error {
	return kindErrors[e.Kind]
}
