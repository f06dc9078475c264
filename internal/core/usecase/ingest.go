package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
	"github.com/pkorolev/course-rag-assistant/internal/core/ports"
)

// IngestUseCase stores one material: an assignment row, the raw material
// document in the archive, the topic-graph edge and one chunk row per
// chunk. Archive and graph are optional collaborators.
type IngestUseCase struct {
	repo    ports.MaterialRepository
	archive ports.MaterialArchive
	graph   ports.TopicGraph
}

func NewIngestUseCase(
	repo ports.MaterialRepository,
	archive ports.MaterialArchive,
	graph ports.TopicGraph,
) *IngestUseCase {
	return &IngestUseCase{
		repo:    repo,
		archive: archive,
		graph:   graph,
	}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, m domain.Material) (*domain.Assignment, error) {
	if err := validateMaterial(m); err != nil {
		return nil, err
	}

	assignment := &domain.Assignment{
		ID:          uuid.NewString(),
		Title:       m.Title,
		Description: m.Description,
		Topic:       m.Topic,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.repo.CreateAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	if uc.archive != nil {
		if err := uc.archive.ArchiveMaterial(ctx, assignment.ID, m); err != nil {
			return nil, fmt.Errorf("archive material: %w", err)
		}
	}

	if uc.graph != nil && assignment.Topic != "" {
		if err := uc.graph.LinkAssignmentTopic(ctx, *assignment); err != nil {
			return nil, fmt.Errorf("link assignment topic: %w", err)
		}
	}

	for idx, chunk := range m.Chunks {
		record := &domain.ChunkRecord{
			ID:           uuid.NewString(),
			AssignmentID: assignment.ID,
			Source:       m.Source,
			ChunkNumber:  idx,
			Content:      chunk,
			CreatedAt:    time.Now().UTC(),
		}
		if err := uc.repo.CreateChunk(ctx, record); err != nil {
			return nil, fmt.Errorf("create chunk %d: %w", idx, err)
		}
	}

	return assignment, nil
}

func validateMaterial(m domain.Material) error {
	if m.Title == "" {
		return domain.WrapError(domain.ErrInvalidInput, "ingest material", errors.New("missing title"))
	}
	if len(m.Chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "ingest material", errors.New("material has no chunks"))
	}
	for idx, chunk := range m.Chunks {
		if chunk == "" {
			return domain.WrapError(domain.ErrInvalidInput, "ingest material", fmt.Errorf("empty chunk at index %d", idx))
		}
	}
	return nil
}
