package matching

import (
	"math"
	"slices"
	"strings"

	"github.com/JaimeStill/scrivener/internal/templates"
)

// Field weights.
const (
	titleWeight       = 3.0
	docTypeWeight     = 2.0
	tagWeight         = 2.0
	descriptionWeight = 1.0
)

// Matcher ranks templates against a query. The zero value is not usable; use New.
type Matcher struct {
	threshold  float64
	maxResults int
}

// New creates a Matcher keeping results scored strictly above threshold,
// at most maxResults of them.
func New(threshold float64, maxResults int) *Matcher {
	return &Matcher{threshold: threshold, maxResults: maxResults}
}

type scored struct {
	tpl   *templates.Template
	match Match
}

// Match scores every template in catalog against query and returns the
// matches above the threshold, highest confidence first. Ties are broken by
// newer created_at, then template_id. The result never depends on catalog order.
func (m *Matcher) Match(query string, catalog []templates.Template) []Match {
	q := terms(query)
	if len(q) == 0 || len(catalog) == 0 {
		return []Match{}
	}

	var hits []scored
	for i := range catalog {
		t := &catalog[i]
		confidence, reasoning := score(q, t)
		if confidence <= m.threshold {
			continue
		}
		hits = append(hits, scored{tpl: t, match: newMatch(t, confidence, reasoning)})
	}

	slices.SortFunc(hits, func(a, b scored) int {
		switch {
		case a.match.Confidence != b.match.Confidence:
			if a.match.Confidence > b.match.Confidence {
				return -1
			}
			return 1
		case !a.tpl.CreatedAt.Equal(b.tpl.CreatedAt):
			return b.tpl.CreatedAt.Compare(a.tpl.CreatedAt)
		}
		return strings.Compare(a.tpl.TemplateID, b.tpl.TemplateID)
	})

	if m.maxResults > 0 && len(hits) > m.maxResults {
		hits = hits[:m.maxResults]
	}

	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = h.match
	}
	return out
}

func score(q []string, t *templates.Template) (float64, string) {
	var (
		earned, total float64
		clauses       []string
	)

	field := func(label string, weight float64, text string) {
		tokens := terms(text)
		if len(tokens) == 0 {
			return
		}
		total += weight

		var sum float64
		var matched []string
		for _, tok := range tokens {
			c := credit(tok, q)
			if c > 0 {
				matched = append(matched, tok)
			}
			sum += c
		}
		if len(matched) == 0 {
			return
		}
		earned += weight * sum / float64(len(tokens))
		clauses = append(clauses, "matched "+label+": "+strings.Join(matched, ", "))
	}

	field("title", titleWeight, t.Title)
	field("doc type", docTypeWeight, strings.ReplaceAll(t.DocType, "_", " "))

	var tags []string
	for _, tag := range t.SimilarityTags {
		tokens := terms(tag)
		if len(tokens) == 0 {
			continue
		}
		total += tagWeight

		var sum float64
		complete := true
		for _, tok := range tokens {
			c := credit(tok, q)
			if c == 0 {
				complete = false
				break
			}
			sum += c
		}
		if complete {
			earned += tagWeight * sum / float64(len(tokens))
			tags = append(tags, strings.Join(tokens, " "))
		}
	}
	if len(tags) > 0 {
		clauses = append(clauses, "matched tags: "+strings.Join(tags, ", "))
	}

	field("description", descriptionWeight, t.FileDescription)

	if total == 0 || earned == 0 {
		return 0, ""
	}

	confidence := math.Round(earned/total*1e4) / 1e4
	return min(max(confidence, 0), 1), strings.Join(clauses, "; ")
}
