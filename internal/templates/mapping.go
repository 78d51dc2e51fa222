package templates

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/scrivener/pkg/query"
	"github.com/JaimeStill/scrivener/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "templates", "t").
	Project("id", "ID").
	Project("template_id", "TemplateID").
	Project("title", "Title").
	Project("file_description", "FileDescription").
	Project("doc_type", "DocType").
	Project("jurisdiction", "Jurisdiction").
	Project("similarity_tags", "SimilarityTags").
	Project("body_md", "BodyMD").
	Project("variables", "Variables").
	Project("created_at", "CreatedAt")

var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "TemplateID"},
}

// Filters narrows template listings. DocType and Jurisdiction match exactly,
// Tag matches one similarity tag, and Title is a case-insensitive substring.
type Filters struct {
	DocType      *string `json:"doc_type,omitempty"`
	Jurisdiction *string `json:"jurisdiction,omitempty"`
	Tag          *string `json:"tag,omitempty"`
	Title        *string `json:"title,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocType", f.DocType).
		WhereEquals("Jurisdiction", f.Jurisdiction).
		WhereHasElement("SimilarityTags", f.Tag).
		WhereContains("Title", f.Title)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("doc_type"); v != "" {
		f.DocType = &v
	}
	if v := values.Get("jurisdiction"); v != "" {
		f.Jurisdiction = &v
	}
	if v := values.Get("tag"); v != "" {
		f.Tag = &v
	}
	if v := values.Get("title"); v != "" {
		f.Title = &v
	}

	return f
}

func scanTemplate(s repository.Scanner) (Template, error) {
	var (
		t    Template
		tags []byte
		vars []byte
	)

	err := s.Scan(
		&t.ID,
		&t.TemplateID,
		&t.Title,
		&t.FileDescription,
		&t.DocType,
		&t.Jurisdiction,
		&tags,
		&t.BodyMD,
		&vars,
		&t.CreatedAt,
	)
	if err != nil {
		return t, err
	}

	if err := json.Unmarshal(tags, &t.SimilarityTags); err != nil {
		return t, fmt.Errorf("decode similarity_tags: %w", err)
	}
	if err := json.Unmarshal(vars, &t.Variables); err != nil {
		return t, fmt.Errorf("decode variables: %w", err)
	}

	return t, nil
}
