package drafts

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/scrivener/pkg/query"
	"github.com/JaimeStill/scrivener/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "drafts", "d").
	Project("id", "ID").
	Project("template_uuid", "TemplateUUID").
	Project("template_id", "TemplateID").
	Project("title", "Title").
	Project("user_query", "UserQuery").
	Project("answers", "Answers").
	Project("draft_md", "DraftMD").
	Project("created_at", "CreatedAt")

var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "ID"},
}

// Filters narrows draft listings.
type Filters struct {
	TemplateID *string `json:"template_id,omitempty"`
	Title      *string `json:"title,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("TemplateID", f.TemplateID).
		WhereContains("Title", f.Title)
}

func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("template_id"); v != "" {
		f.TemplateID = &v
	}
	if v := values.Get("title"); v != "" {
		f.Title = &v
	}
	return f
}

func scanDraft(s repository.Scanner) (Draft, error) {
	var (
		d       Draft
		answers []byte
	)

	err := s.Scan(
		&d.ID,
		&d.TemplateUUID,
		&d.TemplateID,
		&d.Title,
		&d.UserQuery,
		&answers,
		&d.DraftMD,
		&d.CreatedAt,
	)
	if err != nil {
		return d, err
	}

	if err := json.Unmarshal(answers, &d.Answers); err != nil {
		return d, fmt.Errorf("decode answers: %w", err)
	}
	return d, nil
}
