package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

type embedderFake struct {
	lastQuery string
	err       error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.lastQuery = text
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type vectorIndexFake struct {
	limit int
	hits  []domain.VectorHit
	err   error
}

func (f *vectorIndexFake) UpsertPoints(context.Context, []domain.VectorPoint) error { return nil }
func (f *vectorIndexFake) Search(_ context.Context, _ []float32, limit int) ([]domain.VectorHit, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

type repoFake struct {
	assignment *domain.Assignment
	chunks     []domain.ChunkRecord
	hydrated   map[string]domain.HydratedChunk
	hydrateIDs []string

	createdAssignments []domain.Assignment
	createdChunks      []domain.ChunkRecord
	createdRefs        []domain.VectorRef
	err                error
}

func (f *repoFake) CreateAssignment(_ context.Context, a *domain.Assignment) error {
	if f.err != nil {
		return f.err
	}
	f.createdAssignments = append(f.createdAssignments, *a)
	return nil
}

func (f *repoFake) AssignmentByID(context.Context, string) (*domain.Assignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.assignment == nil {
		return nil, domain.WrapError(domain.ErrMaterialNotFound, "assignment by id", errors.New("missing"))
	}
	return f.assignment, nil
}

func (f *repoFake) CreateChunk(_ context.Context, c *domain.ChunkRecord) error {
	if f.err != nil {
		return f.err
	}
	f.createdChunks = append(f.createdChunks, *c)
	return nil
}

func (f *repoFake) ChunksByAssignment(context.Context, string) ([]domain.ChunkRecord, error) {
	return f.chunks, nil
}

func (f *repoFake) CreateVectorRef(_ context.Context, ref domain.VectorRef) error {
	f.createdRefs = append(f.createdRefs, ref)
	return nil
}

func (f *repoFake) HydrateChunks(_ context.Context, ids []string) (map[string]domain.HydratedChunk, error) {
	f.hydrateIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	return f.hydrated, nil
}

type generatorFake struct {
	text string
	err  error
}

func (f *generatorFake) GenerateAnswer(context.Context, string, []domain.SourceChunk) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newChatFixture(index *vectorIndexFake, repo *repoFake, generator *generatorFake) *ChatUseCase {
	retriever := NewRetriever(&embedderFake{}, index, repo)
	fallback := &generatorFake{text: "template answer"}
	if generator == nil {
		return NewChatUseCase(retriever, nil, fallback, 0, 0)
	}
	return NewChatUseCase(retriever, generator, fallback, 0, 0)
}

func TestChatDefaultAndMaxLimit(t *testing.T) {
	index := &vectorIndexFake{hits: []domain.VectorHit{{DocumentID: "d1", Score: 0.9}}}
	repo := &repoFake{hydrated: map[string]domain.HydratedChunk{
		"d1": {Content: "chunk", AssignmentTitle: "Intro"},
	}}
	uc := newChatFixture(index, repo, &generatorFake{text: "llm answer"})

	if _, err := uc.Chat(context.Background(), "question", 0); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if index.limit != 6 {
		t.Fatalf("expected default limit 6, got %d", index.limit)
	}

	if _, err := uc.Chat(context.Background(), "question", 99); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if index.limit != 8 {
		t.Fatalf("expected limit clamped to 8, got %d", index.limit)
	}
}

func TestChatEmptyMessage(t *testing.T) {
	uc := newChatFixture(&vectorIndexFake{}, &repoFake{}, nil)
	_, err := uc.Chat(context.Background(), "   ", 3)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChatNoHitsIsNotFound(t *testing.T) {
	uc := newChatFixture(&vectorIndexFake{}, &repoFake{}, nil)
	_, err := uc.Chat(context.Background(), "question", 3)
	if !domain.IsKind(err, domain.ErrMaterialNotFound) {
		t.Fatalf("expected ErrMaterialNotFound, got %v", err)
	}
}

func TestChatNothingHydratedIsNotFound(t *testing.T) {
	index := &vectorIndexFake{hits: []domain.VectorHit{{DocumentID: "gone", Score: 0.5}}}
	uc := newChatFixture(index, &repoFake{hydrated: map[string]domain.HydratedChunk{}}, nil)
	_, err := uc.Chat(context.Background(), "question", 3)
	if !domain.IsKind(err, domain.ErrMaterialNotFound) {
		t.Fatalf("expected ErrMaterialNotFound, got %v", err)
	}
}

func TestChatPreservesHitOrderAndScores(t *testing.T) {
	index := &vectorIndexFake{hits: []domain.VectorHit{
		{DocumentID: "d2", Score: 0.8},
		{DocumentID: "missing", Score: 0.7},
		{DocumentID: "d1", Score: 0.6},
	}}
	repo := &repoFake{hydrated: map[string]domain.HydratedChunk{
		"d1": {Content: "first chunk", AssignmentTitle: "A"},
		"d2": {Content: "second chunk", AssignmentTitle: "B"},
	}}
	uc := newChatFixture(index, repo, &generatorFake{text: "llm answer"})

	answer, err := uc.Chat(context.Background(), "question", 5)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(answer.Sources))
	}
	if answer.Sources[0].Content != "second chunk" || answer.Sources[1].Content != "first chunk" {
		t.Fatalf("hit order not preserved: %+v", answer.Sources)
	}
	if answer.Sources[0].Score != 0.8 {
		t.Fatalf("expected hit score carried over, got %v", answer.Sources[0].Score)
	}
}

func TestChatFallsBackToTemplateOnGeneratorError(t *testing.T) {
	index := &vectorIndexFake{hits: []domain.VectorHit{{DocumentID: "d1", Score: 0.9}}}
	repo := &repoFake{hydrated: map[string]domain.HydratedChunk{
		"d1": {Content: "chunk", AssignmentTitle: "Intro"},
	}}
	uc := newChatFixture(index, repo, &generatorFake{err: errors.New("ollama down")})

	answer, err := uc.Chat(context.Background(), "question", 3)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if answer.Origin != domain.OriginTemplate {
		t.Fatalf("expected template origin, got %s", answer.Origin)
	}
	if answer.Answer != "template answer" {
		t.Fatalf("expected template answer, got %q", answer.Answer)
	}
}

func TestChatUsesLLMWhenAvailable(t *testing.T) {
	index := &vectorIndexFake{hits: []domain.VectorHit{{DocumentID: "d1", Score: 0.9}}}
	repo := &repoFake{hydrated: map[string]domain.HydratedChunk{
		"d1": {Content: "chunk", AssignmentTitle: "Intro"},
	}}
	uc := newChatFixture(index, repo, &generatorFake{text: "llm answer"})

	answer, err := uc.Chat(context.Background(), "question", 3)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if answer.Origin != domain.OriginLLM {
		t.Fatalf("expected llm origin, got %s", answer.Origin)
	}
}
