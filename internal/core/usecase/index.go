package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
	"github.com/pkorolev/course-rag-assistant/internal/core/ports"
)

const defaultEmbedBatchSize = 16

// IndexUseCase embeds an assignment's chunks, upserts them into the
// vector index, records a vector ref per chunk and emits one stream
// event per indexed chunk. Embedding runs batch-wise with bounded
// concurrency; everything after embedding is sequential so refs and
// events follow chunk order.
type IndexUseCase struct {
	repo     ports.MaterialRepository
	embedder ports.Embedder
	index    ports.VectorIndex
	events   ports.EventStream

	collection  string
	batchSize   int
	concurrency int
}

func NewIndexUseCase(
	repo ports.MaterialRepository,
	embedder ports.Embedder,
	index ports.VectorIndex,
	events ports.EventStream,
	collection string,
	concurrency int,
) *IndexUseCase {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &IndexUseCase{
		repo:        repo,
		embedder:    embedder,
		index:       index,
		events:      events,
		collection:  collection,
		batchSize:   defaultEmbedBatchSize,
		concurrency: concurrency,
	}
}

func (uc *IndexUseCase) IndexAssignment(ctx context.Context, assignmentID string) (int, error) {
	assignment, err := uc.repo.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return 0, fmt.Errorf("load assignment: %w", err)
	}

	chunks, err := uc.repo.ChunksByAssignment(ctx, assignmentID)
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, domain.WrapError(domain.ErrMaterialNotFound, "index assignment", errors.New("assignment has no chunks"))
	}

	vectors, err := uc.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}

	points := make([]domain.VectorPoint, len(chunks))
	for i, chunk := range chunks {
		points[i] = domain.VectorPoint{
			PointID:      uuid.NewString(),
			Vector:       vectors[i],
			AssignmentID: chunk.AssignmentID,
			DocumentID:   chunk.ID,
			ChunkNumber:  chunk.ChunkNumber,
			Topic:        assignment.Topic,
			Source:       chunk.Source,
		}
	}

	if err := uc.index.UpsertPoints(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert points: %w", err)
	}

	for _, point := range points {
		ref := domain.VectorRef{
			DocumentID: point.DocumentID,
			Collection: uc.collection,
			PointID:    point.PointID,
		}
		if err := uc.repo.CreateVectorRef(ctx, ref); err != nil {
			return 0, fmt.Errorf("create vector ref: %w", err)
		}
		if uc.events != nil {
			event := domain.ChunkIndexedEvent{
				AssignmentID: point.AssignmentID,
				DocumentID:   point.DocumentID,
				PointID:      point.PointID,
			}
			if err := uc.events.PublishChunkIndexed(ctx, event); err != nil {
				return 0, fmt.Errorf("publish chunk indexed event: %w", err)
			}
		}
	}

	return len(chunks), nil
}

func (uc *IndexUseCase) embedChunks(ctx context.Context, chunks []domain.ChunkRecord) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for start := 0; start < len(texts); start += uc.batchSize {
		end := min(start+uc.batchSize, len(texts))
		g.Go(func() error {
			batch, err := uc.embedder.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed chunks [%d:%d]: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embed chunks [%d:%d]: got %d vectors", start, end, len(batch))
			}
			copy(vectors[start:], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
