// Package matching ranks catalog templates against a free-text request by
// weighted token overlap. Scores are explainable and deterministic.
package matching

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/templates"
)

// Match is one ranked catalog entry. It is never persisted.
type Match struct {
	ID         uuid.UUID `json:"id"`
	TemplateID string    `json:"template_id"`
	Title      string    `json:"title"`
	DocType    string    `json:"doc_type"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
}

func newMatch(t *templates.Template, confidence float64, reasoning string) Match {
	return Match{
		ID:         t.ID,
		TemplateID: t.TemplateID,
		Title:      t.Title,
		DocType:    t.DocType,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}
