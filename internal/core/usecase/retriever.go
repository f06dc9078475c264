package usecase

import (
	"context"
	"fmt"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
	"github.com/pkorolev/course-rag-assistant/internal/core/ports"
)

// Retriever runs the shared retrieval pipeline: embed the query, search
// the vector index, then hydrate hits from Postgres. Hit order is
// preserved and hits whose documents no longer exist are skipped.
type Retriever struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	repo     ports.MaterialRepository
}

func NewRetriever(
	embedder ports.Embedder,
	index ports.VectorIndex,
	repo ports.MaterialRepository,
) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		repo:     repo,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]domain.SourceChunk, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, queryVector, limit)
	if err != nil {
		return nil, fmt.Errorf("search vector index: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.DocumentID != "" {
			ids = append(ids, hit.DocumentID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	hydrated, err := r.repo.HydrateChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate chunks: %w", err)
	}

	sources := make([]domain.SourceChunk, 0, len(hits))
	for _, hit := range hits {
		meta, ok := hydrated[hit.DocumentID]
		if !ok {
			continue
		}
		sources = append(sources, domain.SourceChunk{
			AssignmentTitle: meta.AssignmentTitle,
			Topic:           meta.Topic,
			Source:          meta.Source,
			ChunkNumber:     meta.ChunkNumber,
			Content:         meta.Content,
			Score:           hit.Score,
		})
		if len(sources) >= limit {
			break
		}
	}
	return sources, nil
}
