package plaintext

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read material file: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("not valid utf-8 text: %s", path)
	}
	return strings.TrimSpace(string(raw)), nil
}
