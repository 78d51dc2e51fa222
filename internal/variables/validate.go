package variables

import (
	"fmt"
	"slices"
	"strings"
)

// Result is the outcome of validating one answer. On success Value holds the
// normalized display text ("" for an absent optional answer); on failure
// Error describes the first rule that failed.
type Result struct {
	Key   string      `json:"key"`
	Value string      `json:"value"`
	Error *FieldError `json:"error,omitempty"`
}

// OK reports whether the answer passed validation.
func (r Result) OK() bool {
	return r.Error == nil
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Validate checks raw (nil when absent) against v. Rules apply in order and
// the first failure wins: required presence, dtype coercion, enum membership,
// then the regex pattern (skipped when an enum is defined).
func Validate(v Variable, raw *string) Result {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		if v.Required {
			return v.fail(KindMissingRequiredField, fmt.Sprintf("%s is required", v.display()))
		}
		return Result{Key: v.Key}
	}

	r := v.DType.rule()
	value, ok := r.normalize(*raw)
	if !ok {
		return v.fail(KindTypeMismatch, fmt.Sprintf("%s must be a valid %s", v.display(), r.name))
	}

	if len(v.EnumValues) > 0 {
		if !slices.Contains(v.EnumValues, value) {
			return v.fail(KindNotInEnum, fmt.Sprintf(
				"%s must be one of: %s", v.display(), strings.Join(v.EnumValues, ", "),
			))
		}
		return Result{Key: v.Key, Value: value}
	}

	if v.RegexPattern != nil && *v.RegexPattern != "" {
		re, err := compilePattern(*v.RegexPattern)
		if err != nil || !re.MatchString(value) {
			return v.fail(KindPatternMismatch, fmt.Sprintf(
				"%s must match the pattern %s", v.display(), *v.RegexPattern,
			))
		}
	}

	return Result{Key: v.Key, Value: value}
}

func (v Variable) fail(kind Kind, message string) Result {
	return Result{
		Key:   v.Key,
		Error: &FieldError{Key: v.Key, Kind: kind, Message: message},
	}
}

func (v Variable) display() string {
	if label := strings.TrimSpace(v.Label); label != "" {
		return label
	}
	return v.Key
}
