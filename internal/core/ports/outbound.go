package ports

import (
	"context"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

// MaterialRepository persists assignments, chunk rows and vector refs in
// the relational store.
type MaterialRepository interface {
	CreateAssignment(ctx context.Context, a *domain.Assignment) error
	AssignmentByID(ctx context.Context, id string) (*domain.Assignment, error)
	CreateChunk(ctx context.Context, c *domain.ChunkRecord) error
	ChunksByAssignment(ctx context.Context, assignmentID string) ([]domain.ChunkRecord, error)
	CreateVectorRef(ctx context.Context, ref domain.VectorRef) error
	HydrateChunks(ctx context.Context, documentIDs []string) (map[string]domain.HydratedChunk, error)
}

// MaterialArchive keeps the raw material documents as they arrived.
type MaterialArchive interface {
	ArchiveMaterial(ctx context.Context, assignmentID string, m domain.Material) error
}

// TopicGraph maintains the assignment/topic graph.
type TopicGraph interface {
	LinkAssignmentTopic(ctx context.Context, a domain.Assignment) error
	RelatedAssignments(ctx context.Context, topic string, limit int) ([]domain.RelatedAssignment, error)
}

// JobQueue moves indexing jobs between the ingest CLI and the worker.
type JobQueue interface {
	PublishAssignmentIngested(ctx context.Context, assignmentID string) error
	SubscribeAssignmentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// EventStream records per-chunk indexing events for downstream consumers.
type EventStream interface {
	PublishChunkIndexed(ctx context.Context, event domain.ChunkIndexedEvent) error
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex upserts chunk points and performs nearest-neighbour search.
type VectorIndex interface {
	UpsertPoints(ctx context.Context, points []domain.VectorPoint) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.VectorHit, error)
}

// AnswerGenerator creates the final user-facing answer from retrieved
// context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, sources []domain.SourceChunk) (string, error)
}
