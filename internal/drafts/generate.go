// Package drafts renders finished documents from templates and keeps the
// history of every draft produced.
package drafts

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/scrivener/internal/templates"
)

// Answers maps variable keys to validated, normalized values.
type Answers map[string]string

// Generate substitutes answers into the template body. Every {{key}} token
// is replaced verbatim; the body is not otherwise interpreted. Required
// variables must have a non-empty answer and every token must have an
// answer, even if empty.
func Generate(t *templates.Template, answers Answers) (string, error) {
	var incomplete []string
	for _, v := range t.Variables {
		if v.Required && answers[v.Key] == "" {
			incomplete = append(incomplete, v.Key)
		}
	}
	if len(incomplete) > 0 {
		return "", fmt.Errorf("%w: %s", ErrIncompleteAnswerSet, strings.Join(incomplete, ", "))
	}

	placeholders := templates.Placeholders(t.BodyMD)

	var unresolved []string
	for _, p := range placeholders {
		if _, ok := answers[p.Key]; !ok && !slices.Contains(unresolved, p.Key) {
			unresolved = append(unresolved, p.Key)
		}
	}
	if len(unresolved) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, strings.Join(unresolved, ", "))
	}

	var b strings.Builder
	b.Grow(len(t.BodyMD))

	last := 0
	for _, p := range placeholders {
		b.WriteString(t.BodyMD[last:p.Start])
		b.WriteString(answers[p.Key])
		last = p.End
	}
	b.WriteString(t.BodyMD[last:])

	return b.String(), nil
}
