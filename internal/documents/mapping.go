package documents

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/scrivener/pkg/query"
	"github.com/JaimeStill/scrivener/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("status", "Status").
	Project("raw_text", "RawText").
	Project("extraction", "Extraction").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Status and ContentType use exact matching;
// Filename uses case-insensitive contains matching.
type Filters struct {
	Status      *string `json:"status,omitempty"`
	Filename    *string `json:"filename,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d          Document
		extraction []byte
	)

	err := s.Scan(
		&d.ID,
		&d.Filename,
		&d.ContentType,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.Status,
		&d.RawText,
		&extraction,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	if extraction != nil {
		var e Extraction
		if err := json.Unmarshal(extraction, &e); err != nil {
			return d, fmt.Errorf("decode extraction: %w", err)
		}
		d.Extraction = &e
	}
	return d, nil
}
