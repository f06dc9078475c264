package ollama

import (
	"fmt"
	"strings"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

func buildAnswerPrompt(question string, sources []domain.SourceChunk) string {
	var contextBuilder strings.Builder
	for idx, src := range sources {
		header := fmt.Sprintf("[%d] assignment=%s", idx+1, src.AssignmentTitle)
		if src.Topic != "" {
			header += " topic=" + src.Topic
		}
		if src.Source != "" {
			header += fmt.Sprintf(" source=%s chunk=%d", src.Source, src.ChunkNumber)
		}
		contextBuilder.WriteString(fmt.Sprintf("%s score=%.3f\n%s\n\n", header, src.Score, src.Content))
	}

	return fmt.Sprintf(`You are a course assistant. Answer the student's question using
only the course-material fragments below. Answer in the language of
the question, in Markdown. If the fragments are insufficient, say so
directly.

Question:
%s

Fragments:
%s`, question, contextBuilder.String())
}
