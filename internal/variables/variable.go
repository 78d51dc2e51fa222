// Package variables defines template fill-in variables and validates
// user answers against them.
package variables

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// KeyPattern is the shape of a variable key.
var KeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Variable describes one typed fill-in point of a template.
//
// Example is shown as a hint and is never used as a default. When EnumValues
// is non-empty RegexPattern is ignored.
type Variable struct {
	Key          string   `json:"key" yaml:"key"`
	Label        string   `json:"label" yaml:"label"`
	Description  *string  `json:"description,omitempty" yaml:"description,omitempty"`
	Example      *string  `json:"example,omitempty" yaml:"example,omitempty"`
	Required     bool     `json:"required" yaml:"required"`
	DType        DType    `json:"dtype" yaml:"dtype"`
	RegexPattern *string  `json:"regex_pattern,omitempty" yaml:"regex_pattern,omitempty"`
	EnumValues   []string `json:"enum_values,omitempty" yaml:"enum_values,omitempty"`
}

// Check reports the first authoring problem with v: key shape, label,
// dtype, enum set, or an uncompilable regex.
func (v Variable) Check() error {
	if !KeyPattern.MatchString(v.Key) {
		return fmt.Errorf("%w: %q must match %s", ErrInvalidKey, v.Key, KeyPattern)
	}
	if strings.TrimSpace(v.Label) == "" {
		return fmt.Errorf("%w: %s", ErrMissingLabel, v.Key)
	}
	if !v.DType.Valid() {
		return fmt.Errorf("%w: %s has %q", ErrInvalidDType, v.Key, v.DType)
	}
	for i, e := range v.EnumValues {
		if e == "" {
			return fmt.Errorf("%w: %s has an empty value", ErrInvalidEnum, v.Key)
		}
		if slices.Contains(v.EnumValues[:i], e) {
			return fmt.Errorf("%w: %s repeats %q", ErrInvalidEnum, v.Key, e)
		}
	}
	if v.RegexPattern != nil {
		if _, err := compilePattern(*v.RegexPattern); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPattern, v.Key, err)
		}
	}
	return nil
}

// MaxCachedPatterns bounds the compiled regex cache. Least recently used
// patterns are evicted and recompiled on demand.
const MaxCachedPatterns = 256

var patterns = newPatternCache(MaxCachedPatterns)

func newPatternCache(size int) *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		panic(fmt.Sprintf("pattern cache: %v", err))
	}
	return c
}

// compilePattern anchors p so it must match the whole value. Compiled
// patterns are cached by source; failures are not cached.
func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := patterns.Get(p); ok {
		return re, nil
	}
	re, err := regexp.Compile(`^(?:` + p + `)$`)
	if err != nil {
		return nil, err
	}
	patterns.Add(p, re)
	return re, nil
}
