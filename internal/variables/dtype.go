package variables

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DType identifies the value type of a variable.
type DType string

const (
	String DType = "string"
	Number DType = "number"
	Date   DType = "date"
	Email  DType = "email"
	Phone  DType = "phone"
)

// DateLayout is the only accepted date input format and the rendered form of
// every date answer.
const DateLayout = "2006-01-02"

var (
	numberPattern = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d+)?|\.\d+)$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9()./\-\s]+$`)
	whitespace    = regexp.MustCompile(`\s+`)
	emailCheck    = validator.New()
)

// rule is the parse/format behavior bound to a DType. normalize returns the
// display form of raw, or ok=false when raw is not a value of the type.
type rule struct {
	name      string
	hint      string
	normalize func(raw string) (value string, ok bool)
}

var rules = map[DType]rule{
	String: {
		name:      "text",
		normalize: func(raw string) (string, bool) { return raw, true },
	},
	Number: {
		name:      "number",
		hint:      "digits only, e.g. 25000 or 1250.50",
		normalize: normalizeNumber,
	},
	Date: {
		name:      "date (YYYY-MM-DD)",
		hint:      "YYYY-MM-DD",
		normalize: normalizeDate,
	},
	Email: {
		name:      "email address",
		hint:      "name@example.com",
		normalize: normalizeEmail,
	},
	Phone: {
		name:      "phone number",
		hint:      "digits with optional +, spaces or dashes",
		normalize: normalizePhone,
	},
}

// DTypes returns every supported dtype in declaration order.
func DTypes() []DType {
	return []DType{String, Number, Date, Email, Phone}
}

// ParseDType converts s to a DType. An empty string yields String.
func ParseDType(s string) (DType, error) {
	if s == "" {
		return String, nil
	}
	d := DType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rules[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDType, s)
	}
	return d, nil
}

// Valid reports whether d is a supported dtype.
func (d DType) Valid() bool {
	_, ok := rules[d]
	return ok
}

// UnmarshalJSON rejects unknown dtypes; an empty value defaults to String.
func (d *DType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDType(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalYAML applies the same rules as UnmarshalJSON.
func (d *DType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDType(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d DType) rule() rule {
	if r, ok := rules[d]; ok {
		return r
	}
	return rules[String]
}

func normalizeNumber(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if !numberPattern.MatchString(s) {
		return "", false
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}

	out := whole
	if hasFrac {
		out += "." + frac
	}
	if negative && strings.Trim(out, "0.") != "" {
		out = "-" + out
	}
	return out, true
}

func normalizeDate(raw string) (string, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}

func normalizeEmail(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if err := emailCheck.Var(s, "required,email"); err != nil {
		return "", false
	}
	return s, true
}

func normalizePhone(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if !phonePattern.MatchString(s) || strings.LastIndex(s, "+") > 0 {
		return "", false
	}

	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 7 || digits > 15 {
		return "", false
	}
	return whitespace.ReplaceAllString(s, " "), true
}
