package openapi

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

// MarshalJSON renders the spec as indented JSON with a trailing newline.
func MarshalJSON(spec *Spec) ([]byte, error) {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteJSON writes the rendered spec to filename. The file is replaced
// through a rename so readers never observe a partial document.
func WriteJSON(spec *Spec, filename string) error {
	data, err := MarshalJSON(spec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".openapi-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

// ServeSpec serves pre-rendered spec bytes.
func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(spec)
	}
}
