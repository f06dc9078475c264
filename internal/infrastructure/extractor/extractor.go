// Package extractor turns local material files into plain text for
// chunking. Format support is selected by file extension.
package extractor

import (
	"path/filepath"
	"strings"

	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/extractor/pdf"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/extractor/xlsx"
)

// TextExtractor reads one file and returns its text content.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// ForPath picks an extractor by extension. Unknown extensions fall back
// to plaintext so Markdown, source files and notes work without an
// explicit mapping.
func ForPath(path string) TextExtractor {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdf.NewExtractor()
	case ".xlsx", ".xlsm":
		return xlsx.NewExtractor()
	default:
		return plaintext.NewExtractor()
	}
}

// Supported reports whether the path looks like an ingestible material
// file. Directory walks use it to skip binaries.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".xlsx", ".xlsm", ".txt", ".md", ".markdown", ".text":
		return true
	default:
		return false
	}
}
