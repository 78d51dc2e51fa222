package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Command returns the definition that republishes t under the same template_id.
func (t *Template) Command() CreateCommand {
	return CreateCommand{
		TemplateID:      t.TemplateID,
		Title:           t.Title,
		FileDescription: t.FileDescription,
		DocType:         t.DocType,
		Jurisdiction:    t.Jurisdiction,
		SimilarityTags:  t.SimilarityTags,
		BodyMD:          t.BodyMD,
		Variables:       t.Variables,
	}
}

// EncodeYAML writes t as a YAML definition suitable for DecodeYAML.
func EncodeYAML(w io.Writer, t *Template) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.Command()); err != nil {
		return fmt.Errorf("encode template %s: %w", t.TemplateID, err)
	}
	return enc.Close()
}

// DecodeYAML reads a single YAML template definition. Unknown keys are rejected.
func DecodeYAML(r io.Reader) (CreateCommand, error) {
	var cmd CreateCommand

	data, err := io.ReadAll(r)
	if err != nil {
		return cmd, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cmd, fmt.Errorf("%w: empty definition", ErrInvalidRequest)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
		return cmd, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return cmd, nil
}
