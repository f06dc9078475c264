package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

const defaultSearchLimit = 3

// SearchUseCase is the ad-hoc retrieval path used by the search CLI.
// Unlike chat, an empty result set is not an error.
type SearchUseCase struct {
	retriever *Retriever
}

func NewSearchUseCase(retriever *Retriever) *SearchUseCase {
	return &SearchUseCase{retriever: retriever}
}

func (uc *SearchUseCase) Search(ctx context.Context, query string, limit int) ([]domain.SourceChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("empty query"))
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return uc.retriever.Retrieve(ctx, query, limit)
}
