// Package answer builds a deterministic Markdown answer straight from
// the retrieved chunks. It is the default generator for demo setups
// without an LLM and the fallback when Ollama generation fails.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

const (
	maxHighlights      = 5
	minHighlightLength = 20

	defaultHighlight = "- Материалы подтверждают базовые определения и шаги RAG."
	outroSection     = "#### Что дальше?\n" +
		"Если нужен пошаговый план или хочется раскрыть конкретный шаг, задай уточняющий вопрос — " +
		"я подберу дополнительные материалы."
)

type MarkdownBuilder struct{}

func NewMarkdownBuilder() *MarkdownBuilder {
	return &MarkdownBuilder{}
}

func (b *MarkdownBuilder) GenerateAnswer(_ context.Context, question string, sources []domain.SourceChunk) (string, error) {
	intro := fmt.Sprintf("### Короткий ответ на запрос «%s»", question)

	summary := []string{"#### Главное", ""}
	highlights := collectHighlights(sources)
	if len(highlights) > 0 {
		for _, highlight := range highlights {
			summary = append(summary, "- "+highlight)
		}
	} else {
		summary = append(summary, defaultHighlight)
	}

	details := []string{"#### Использованные фрагменты", ""}
	for idx, src := range sources {
		meta := src.AssignmentTitle
		if src.Topic != "" {
			meta += " · " + src.Topic
		}
		sourceHint := ""
		if src.Source != "" {
			sourceHint = fmt.Sprintf(" (%s, chunk #%d)", src.Source, src.ChunkNumber)
		}
		details = append(details, fmt.Sprintf("%d. **%s**%s\n   > %s", idx+1, meta, sourceHint, strings.TrimSpace(src.Content)))
	}

	sections := make([]string, 0, len(summary)+len(details)+5)
	sections = append(sections, intro, "")
	sections = append(sections, summary...)
	sections = append(sections, "")
	sections = append(sections, details...)
	sections = append(sections, "", outroSection)
	return strings.Join(sections, "\n"), nil
}

// collectHighlights pulls up to five distinct sentences of meaningful
// length from the chunks, in retrieval order.
func collectHighlights(sources []domain.SourceChunk) []string {
	var highlights []string
	seen := make(map[string]struct{})
	for _, src := range sources {
		for _, sentence := range strings.Split(strings.ReplaceAll(src.Content, "…", "."), ".") {
			normalized := strings.Trim(sentence, " \n\t;-")
			if len([]rune(normalized)) < minHighlightLength {
				continue
			}
			lower := strings.ToLower(normalized)
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			highlights = append(highlights, normalized)
			if len(highlights) >= maxHighlights {
				return highlights
			}
		}
	}
	return highlights
}
