package answer

import (
	"context"
	"strings"
	"testing"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

func TestGenerateAnswerSections(t *testing.T) {
	builder := NewMarkdownBuilder()
	sources := []domain.SourceChunk{
		{
			AssignmentTitle: "Введение в RAG",
			Topic:           "rag",
			Source:          "lecture.md",
			ChunkNumber:     2,
			Content:         "RAG сочетает поиск по базе знаний и генерацию ответа. Короткое. Модель опирается на найденные фрагменты вместо памяти.",
			Score:           0.91,
		},
	}

	got, err := builder.GenerateAnswer(context.Background(), "Что такое RAG?", sources)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}

	if !strings.HasPrefix(got, "### Короткий ответ на запрос «Что такое RAG?»") {
		t.Fatalf("missing intro header:\n%s", got)
	}
	for _, want := range []string{
		"#### Главное",
		"- RAG сочетает поиск по базе знаний и генерацию ответа",
		"- Модель опирается на найденные фрагменты вместо памяти",
		"#### Использованные фрагменты",
		"1. **Введение в RAG · rag** (lecture.md, chunk #2)",
		"   > RAG сочетает поиск по базе знаний и генерацию ответа.",
		"#### Что дальше?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("answer missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "- Короткое") {
		t.Errorf("short sentence must not become a highlight:\n%s", got)
	}
}

func TestGenerateAnswerDeduplicatesHighlights(t *testing.T) {
	builder := NewMarkdownBuilder()
	sources := []domain.SourceChunk{
		{AssignmentTitle: "A", Content: "Эмбеддинги превращают текст в числовые векторы."},
		{AssignmentTitle: "B", Content: "ЭМБЕДДИНГИ ПРЕВРАЩАЮТ ТЕКСТ В ЧИСЛОВЫЕ ВЕКТОРЫ."},
	}

	got, err := builder.GenerateAnswer(context.Background(), "q", sources)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if strings.Count(got, "- Эмбеддинги превращают текст в числовые векторы") != 1 {
		t.Fatalf("case-insensitive duplicate highlight not removed:\n%s", got)
	}
	if strings.Contains(got, "- ЭМБЕДДИНГИ") {
		t.Fatalf("duplicate kept with different case:\n%s", got)
	}
}

func TestGenerateAnswerCapsHighlightsAtFive(t *testing.T) {
	builder := NewMarkdownBuilder()
	content := strings.Join([]string{
		"Первое предложение достаточно длинное номер один",
		"Второе предложение достаточно длинное номер два",
		"Третье предложение достаточно длинное номер три",
		"Четвертое предложение достаточно длинное номер четыре",
		"Пятое предложение достаточно длинное номер пять",
		"Шестое предложение достаточно длинное номер шесть",
	}, ". ") + "."

	got, err := builder.GenerateAnswer(context.Background(), "q", []domain.SourceChunk{{AssignmentTitle: "A", Content: content}})
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if strings.Contains(got, "- Шестое") {
		t.Fatalf("more than five highlights:\n%s", got)
	}
	if !strings.Contains(got, "- Пятое предложение") {
		t.Fatalf("fifth highlight missing:\n%s", got)
	}
}

func TestGenerateAnswerFallsBackToDefaultHighlight(t *testing.T) {
	builder := NewMarkdownBuilder()
	got, err := builder.GenerateAnswer(context.Background(), "q", []domain.SourceChunk{
		{AssignmentTitle: "A", Content: "Коротко. Мало."},
	})
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(got, "- Материалы подтверждают базовые определения и шаги RAG.") {
		t.Fatalf("default highlight missing:\n%s", got)
	}
}

func TestGenerateAnswerEllipsisSplitsSentences(t *testing.T) {
	builder := NewMarkdownBuilder()
	got, err := builder.GenerateAnswer(context.Background(), "q", []domain.SourceChunk{
		{AssignmentTitle: "A", Content: "Чанкование делит документ на перекрывающиеся окна…и сохраняет контекст между соседними частями"},
	})
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(got, "- Чанкование делит документ на перекрывающиеся окна") {
		t.Fatalf("text before ellipsis not treated as a sentence:\n%s", got)
	}
	if !strings.Contains(got, "- и сохраняет контекст между соседними частями") {
		t.Fatalf("text after ellipsis not treated as a sentence:\n%s", got)
	}
}
