package drafts

import (
	"time"

	"github.com/google/uuid"
)

// Draft is a generated document. Drafts are immutable. TemplateUUID is nil
// once the source template has been deleted; TemplateID and Title keep the
// reference readable.
type Draft struct {
	ID           uuid.UUID  `json:"id"`
	TemplateUUID *uuid.UUID `json:"template_uuid,omitempty"`
	TemplateID   string     `json:"template_id"`
	Title        string     `json:"title"`
	UserQuery    *string    `json:"user_query,omitempty"`
	Answers      Answers    `json:"answers"`
	DraftMD      string     `json:"draft_md"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RecordCommand carries a generated draft to persist.
type RecordCommand struct {
	TemplateUUID uuid.UUID
	TemplateID   string
	Title        string
	UserQuery    *string
	Answers      Answers
	DraftMD      string
}
