// Package documents handles intake of source legal documents: upload to blob
// storage, recording the upstream extraction, and proposing a template
// definition from it.
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/templates"
	"github.com/JaimeStill/scrivener/internal/variables"
)

// Document statuses.
const (
	StatusUploaded  = "uploaded"
	StatusExtracted = "extracted"
)

// Accepted upload content types.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Document is an uploaded source document and, once extracted, its text and
// proposed variables.
type Document struct {
	ID          uuid.UUID   `json:"id"`
	Filename    string      `json:"filename"`
	ContentType string      `json:"content_type"`
	SizeBytes   int64       `json:"size_bytes"`
	PageCount   *int        `json:"page_count"`
	StorageKey  string      `json:"storage_key"`
	Status      string      `json:"status"`
	RawText     *string     `json:"raw_text,omitempty"`
	Extraction  *Extraction `json:"extraction,omitempty"`
	UploadedAt  time.Time   `json:"uploaded_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Extraction is the upstream extractor's reading of a document. Every field
// may be empty; Variables may be empty for manual authoring.
type Extraction struct {
	Title           string               `json:"title,omitempty" validate:"max=200"`
	FileDescription string               `json:"file_description,omitempty" validate:"max=2000"`
	DocType         string               `json:"doc_type,omitempty" validate:"max=100"`
	Jurisdiction    *string              `json:"jurisdiction,omitempty" validate:"omitempty,max=100"`
	SimilarityTags  []string             `json:"similarity_tags,omitempty" validate:"max=32,dive,max=64"`
	Variables       []variables.Variable `json:"variables"`
}

// ExtractionCommand is the payload an extractor submits for a document.
type ExtractionCommand struct {
	Text string `json:"text" validate:"required"`
	Extraction
}

// CreateCommand carries an uploaded file. PageCount is set for PDFs when
// pdfcpu can read them.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Document is populated and Error is empty.
// On failure, Error describes the problem and Document is nil.
type BatchResult struct {
	Document *Document `json:"document,omitempty"`
	Filename string    `json:"filename"`
	Error    string    `json:"error,omitempty"`
}

// Proposal is a template definition drafted from an extracted document,
// with the result of checking it. It is not published.
type Proposal struct {
	DocumentID uuid.UUID               `json:"document_id"`
	Command    templates.CreateCommand `json:"command"`
	Check      templates.CheckResult   `json:"check"`
}
