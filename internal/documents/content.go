package documents

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Supported reports whether contentType is an accepted upload type.
func Supported(contentType string) bool {
	return contentType == ContentTypePDF || contentType == ContentTypeDOCX
}

// DetectContentType resolves the type of an uploaded file from its declared
// header, falling back to content sniffing. DOCX files sniff as zip archives
// and are recognized by extension.
func DetectContentType(header, filename string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(strings.TrimSpace(header)); err == nil && mt != "application/octet-stream" {
		return mt
	}

	sniffed := http.DetectContentType(data)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		sniffed = mt
	}

	if sniffed == "application/zip" && strings.EqualFold(filepath.Ext(filename), ".docx") {
		return ContentTypeDOCX
	}
	return sniffed
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != ContentTypePDF {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
