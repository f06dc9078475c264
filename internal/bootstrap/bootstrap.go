// Package bootstrap wires configuration into connected adapters and use
// cases. Each binary enables only the backends it needs.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/pkorolev/course-rag-assistant/internal/config"
	"github.com/pkorolev/course-rag-assistant/internal/core/ports"
	"github.com/pkorolev/course-rag-assistant/internal/core/usecase"
	mongoarchive "github.com/pkorolev/course-rag-assistant/internal/infrastructure/archive/mongo"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/answer"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/embedding/hash"
	neo4jgraph "github.com/pkorolev/course-rag-assistant/internal/infrastructure/graph/neo4j"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/llm/ollama"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/queue/nats"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/repository/postgres"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/resilience"
	redisstream "github.com/pkorolev/course-rag-assistant/internal/infrastructure/stream/redis"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/vector/qdrant"
)

// Options selects optional backends per binary. Postgres, Qdrant and
// the embedder are always connected.
type Options struct {
	// WithQueue connects NATS for the ingest -enqueue path and the worker.
	WithQueue bool
	// WithArchive connects MongoDB for raw material copies during ingest.
	WithArchive bool
	// WithStream connects Redis for chunk-indexed events.
	WithStream bool
	// WithGraph connects Neo4j when GRAPH_ENABLED is also set.
	WithGraph bool
}

type App struct {
	Config config.Config

	Queue ports.JobQueue
	Graph ports.TopicGraph

	IngestUC ports.MaterialIngestor
	IndexUC  ports.AssignmentIndexer
	ChatUC   ports.ChatService
	SearchUC ports.SearchService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewMaterialRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	closers := []func(){func() { _ = db.Close() }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)

	var embedder ports.Embedder
	if cfg.EmbedderProvider == "ollama" {
		embedder = ollama.NewEmbedder(ollamaClient, executor)
	} else {
		embedder = hash.New(cfg.EmbeddingDim)
	}

	var generator ports.AnswerGenerator
	if cfg.ChatGenerator == "ollama" {
		generator = ollama.NewGenerator(ollamaClient, executor)
	}

	vectorIndex := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDim)

	var queue ports.JobQueue
	if opts.WithQueue {
		natsQueue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("init nats queue: %w", err)
		}
		closers = append(closers, natsQueue.Close)
		queue = natsQueue
	}

	var archive ports.MaterialArchive
	if opts.WithArchive {
		mongoArchive, err := mongoarchive.New(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("init mongo archive: %w", err)
		}
		closers = append(closers, func() { _ = mongoArchive.Close(context.Background()) })
		archive = mongoArchive
	}

	var events ports.EventStream
	if opts.WithStream {
		stream, err := redisstream.New(ctx, cfg.RedisURL, cfg.IngestStream)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("init redis stream: %w", err)
		}
		closers = append(closers, func() { _ = stream.Close() })
		events = stream
	}

	var graph ports.TopicGraph
	if opts.WithGraph && cfg.GraphEnabled {
		neoGraph, err := neo4jgraph.New(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("init neo4j graph: %w", err)
		}
		closers = append(closers, func() { _ = neoGraph.Close(context.Background()) })
		graph = neoGraph
	}

	retriever := usecase.NewRetriever(embedder, vectorIndex, repo)
	fallback := answer.NewMarkdownBuilder()

	ingestUC := usecase.NewIngestUseCase(repo, archive, graph)
	indexUC := usecase.NewIndexUseCase(repo, embedder, vectorIndex, events, cfg.QdrantCollection, cfg.EmbedConcurrency)
	chatUC := usecase.NewChatUseCase(retriever, generator, fallback, cfg.ChatChunkLimit, cfg.ChatMaxChunks)
	searchUC := usecase.NewSearchUseCase(retriever)

	return &App{
		Config: cfg,

		Queue: queue,
		Graph: graph,

		IngestUC: ingestUC,
		IndexUC:  indexUC,
		ChatUC:   chatUC,
		SearchUC: searchUC,

		closeFn: closeAll,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
