// Package templates implements the template catalog: reusable document
// bodies with typed fill-in variables, their authoring rules, storage, and
// HTTP endpoints.
package templates

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/variables"
)

// Template is a published document shell. Templates are never updated; a
// revision is published under a new TemplateID.
type Template struct {
	ID              uuid.UUID            `json:"id"`
	TemplateID      string               `json:"template_id"`
	Title           string               `json:"title"`
	FileDescription string               `json:"file_description"`
	DocType         string               `json:"doc_type"`
	Jurisdiction    *string              `json:"jurisdiction,omitempty"`
	SimilarityTags  []string             `json:"similarity_tags"`
	BodyMD          string               `json:"body_md"`
	Variables       []variables.Variable `json:"variables"`
	CreatedAt       time.Time            `json:"created_at"`
}

// Variable returns the variable with key.
func (t *Template) Variable(key string) (variables.Variable, bool) {
	for _, v := range t.Variables {
		if v.Key == key {
			return v, true
		}
	}
	return variables.Variable{}, false
}

// Orphans lists variable keys that never appear as a placeholder in BodyMD.
func (t *Template) Orphans() []string {
	return orphans(t.BodyMD, t.Variables)
}

// CreateCommand carries a template definition to publish. An empty
// TemplateID is generated from Title.
type CreateCommand struct {
	TemplateID      string               `json:"template_id,omitempty" yaml:"template_id,omitempty" validate:"omitempty,max=64"`
	Title           string               `json:"title" yaml:"title" validate:"required,max=200"`
	FileDescription string               `json:"file_description" yaml:"file_description" validate:"max=2000"`
	DocType         string               `json:"doc_type" yaml:"doc_type" validate:"required,max=100"`
	Jurisdiction    *string              `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty" validate:"omitempty,max=100"`
	SimilarityTags  []string             `json:"similarity_tags" yaml:"similarity_tags" validate:"max=32,dive,max=64"`
	BodyMD          string               `json:"body_md" yaml:"body_md" validate:"required"`
	Variables       []variables.Variable `json:"variables" yaml:"variables"`
}

// CheckResult reports whether a definition can be published. Warnings do
// not block publication.
type CheckResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Created is returned when a template is published.
type Created struct {
	Template
	Warnings []string `json:"warnings,omitempty"`
}
