package documents

import (
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/JaimeStill/scrivener/internal/templates"
)

const defaultDocType = "document"

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	validate = validator.New()

	angleRun = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9]*)([^<>]*)>`)
)

// markupTags are the elements extractors emit. Names are matched
// case-sensitively so capitalized blanks such as <Address> stay text.
var markupTags = map[string]bool{
	"a": true, "b": true, "blockquote": true, "body": true, "br": true,
	"code": true, "div": true, "em": true, "font": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "hr": true, "html": true, "i": true, "li": true,
	"ol": true, "p": true, "pre": true, "script": true, "section": true,
	"span": true, "strong": true, "style": true, "sub": true, "sup": true,
	"table": true, "tbody": true, "td": true, "th": true, "thead": true,
	"title": true, "tr": true, "u": true, "ul": true,
}

// SanitizeText strips any markup the extractor left in the text and
// restores entities, so templates carry plain text. Angle-bracket blanks
// like <Name of Tenant> are kept.
func SanitizeText(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})

	cleaned := textPolicy.Sanitize(escapeBlanks(raw))
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// escapeBlanks entity-encodes every <...> run that is not a markup tag.
func escapeBlanks(raw string) string {
	return angleRun.ReplaceAllStringFunc(raw, func(run string) string {
		m := angleRun.FindStringSubmatch(run)
		rest := m[3]
		if markupTags[m[2]] && (rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '/') {
			return run
		}
		return "&lt;" + run[1:len(run)-1] + "&gt;"
	})
}

func checkExtraction(cmd ExtractionCommand) error {
	if strings.TrimSpace(cmd.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}

	if err := validate.Struct(cmd); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var fields []string
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid fields: %s", ErrInvalidRequest, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Propose drafts an unpublished template definition from d: the body is the
// extracted text with each proposed variable's example replaced by its
// placeholder, and the template_id is generated from the title.
func Propose(d *Document) (*Proposal, error) {
	if d.Status != StatusExtracted || d.RawText == nil || d.Extraction == nil {
		return nil, ErrNotExtracted
	}

	ext := d.Extraction

	title := strings.TrimSpace(ext.Title)
	if title == "" {
		title = strings.TrimSuffix(d.Filename, filepath.Ext(d.Filename))
	}

	docType := strings.TrimSpace(ext.DocType)
	if docType == "" {
		docType = defaultDocType
	}

	cmd := templates.Normalize(templates.CreateCommand{
		TemplateID:      templates.GenerateTemplateID(title, 1),
		Title:           title,
		FileDescription: ext.FileDescription,
		DocType:         docType,
		Jurisdiction:    ext.Jurisdiction,
		SimilarityTags:  ext.SimilarityTags,
		BodyMD:          templates.Templatize(*d.RawText, ext.Variables),
		Variables:       ext.Variables,
	})

	return &Proposal{
		DocumentID: d.ID,
		Command:    cmd,
		Check:      templates.Check(cmd),
	}, nil
}
