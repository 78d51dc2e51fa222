package templates

import (
	"regexp"
	"slices"
	"strings"

	"github.com/JaimeStill/scrivener/internal/variables"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Placeholder is one {{key}} token in a template body. Start and End are
// byte offsets of the whole token.
type Placeholder struct {
	Key   string
	Start int
	End   int
}

// Valid reports whether the token names a well-formed key.
func (p Placeholder) Valid() bool {
	return variables.KeyPattern.MatchString(p.Key)
}

// Placeholders returns every token in body in order of appearance. Inner
// whitespace is allowed: "{{ key }}" names key.
func Placeholders(body string) []Placeholder {
	matches := placeholderPattern.FindAllStringSubmatchIndex(body, -1)
	out := make([]Placeholder, len(matches))
	for i, m := range matches {
		out[i] = Placeholder{
			Key:   body[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		}
	}
	return out
}

// PlaceholderKeys returns the distinct keys referenced by body in order of
// first appearance.
func PlaceholderKeys(body string) []string {
	var keys []string
	for _, p := range Placeholders(body) {
		if !slices.Contains(keys, p.Key) {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

func orphans(body string, vars []variables.Variable) []string {
	used := PlaceholderKeys(body)
	var out []string
	for _, v := range vars {
		if !slices.Contains(used, v.Key) {
			out = append(out, v.Key)
		}
	}
	return out
}

// Templatize turns extracted document text into a template body by
// replacing each variable's example value with its {{key}} token. Longer
// examples win where examples overlap; examples shorter than two characters
// are ignored.
func Templatize(text string, vars []variables.Variable) string {
	type candidate struct {
		example string
		key     string
	}

	var candidates []candidate
	for _, v := range vars {
		if v.Example == nil {
			continue
		}
		ex := strings.TrimSpace(*v.Example)
		if len([]rune(ex)) < 2 || slices.ContainsFunc(candidates, func(c candidate) bool { return c.example == ex }) {
			continue
		}
		candidates = append(candidates, candidate{example: ex, key: v.Key})
	}
	if len(candidates) == 0 {
		return text
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return len(b.example) - len(a.example)
	})

	alts := make([]string, len(candidates))
	keys := make(map[string]string, len(candidates))
	for i, c := range candidates {
		alts[i] = regexp.QuoteMeta(c.example)
		keys[c.example] = c.key
	}

	re := regexp.MustCompile(strings.Join(alts, "|"))
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return "{{" + keys[m] + "}}"
	})
}
