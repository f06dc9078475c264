package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
	"github.com/pkorolev/course-rag-assistant/internal/core/ports"
)

const (
	defaultChunkLimit = 6
	maxChunkLimit     = 8
)

// ChatUseCase answers a chat message from retrieved course materials.
// The primary generator (a local LLM) may be nil or fail; the fallback
// generator renders the canned Markdown template and must not fail.
type ChatUseCase struct {
	retriever *Retriever
	generator ports.AnswerGenerator
	fallback  ports.AnswerGenerator

	defaultLimit int
	maxLimit     int
}

func NewChatUseCase(
	retriever *Retriever,
	generator ports.AnswerGenerator,
	fallback ports.AnswerGenerator,
	defaultLimit int,
	maxLimit int,
) *ChatUseCase {
	if defaultLimit <= 0 {
		defaultLimit = defaultChunkLimit
	}
	if maxLimit <= 0 {
		maxLimit = maxChunkLimit
	}
	return &ChatUseCase{
		retriever:    retriever,
		generator:    generator,
		fallback:     fallback,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, message string, limit int) (*domain.ChatAnswer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", errors.New("empty message"))
	}

	if limit <= 0 {
		limit = uc.defaultLimit
	}
	if limit > uc.maxLimit {
		limit = uc.maxLimit
	}

	sources, err := uc.retriever.Retrieve(ctx, message, limit)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, domain.WrapError(domain.ErrMaterialNotFound, "chat retrieval", errors.New("no matching materials"))
	}

	text, origin := uc.generate(ctx, message, sources)
	return &domain.ChatAnswer{
		Answer:  text,
		Sources: sources,
		Origin:  origin,
	}, nil
}

func (uc *ChatUseCase) generate(ctx context.Context, message string, sources []domain.SourceChunk) (string, domain.AnswerOrigin) {
	if uc.generator != nil {
		text, err := uc.generator.GenerateAnswer(ctx, message, sources)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, domain.OriginLLM
		}
		if err != nil {
			slog.Warn("llm_generation_failed", "error", err)
		}
	}

	text, err := uc.fallback.GenerateAnswer(ctx, message, sources)
	if err != nil {
		// The template builder is pure string assembly; an error here
		// means a programming bug, not a runtime condition.
		slog.Error("template_generation_failed", "error", err)
		return "", domain.OriginTemplate
	}
	return text, domain.OriginTemplate
}
