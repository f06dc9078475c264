package ports

import (
	"context"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

// ChatService is the inbound contract for the RAG chat endpoint.
type ChatService interface {
	Chat(ctx context.Context, message string, limit int) (*domain.ChatAnswer, error)
}

// MaterialIngestor stores a material in the relational store, archive and
// topic graph. Vector indexing is a separate step.
type MaterialIngestor interface {
	Ingest(ctx context.Context, m domain.Material) (*domain.Assignment, error)
}

// AssignmentIndexer embeds an assignment's chunks and upserts them into
// the vector index. Returns the number of chunks indexed.
type AssignmentIndexer interface {
	IndexAssignment(ctx context.Context, assignmentID string) (int, error)
}

// SearchService is the inbound contract for ad-hoc vector search.
type SearchService interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SourceChunk, error)
}
