// Command ingest loads course materials into the stack: rows in
// Postgres, a raw copy in MongoDB, topic links in Neo4j and vectors in
// Qdrant. By default materials come from a JSON file and are indexed
// inline; -dir walks a directory of files instead, and -enqueue defers
// indexing to the worker via NATS.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkorolev/course-rag-assistant/internal/bootstrap"
	"github.com/pkorolev/course-rag-assistant/internal/config"
	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/chunking"
	"github.com/pkorolev/course-rag-assistant/internal/infrastructure/extractor"
	"github.com/pkorolev/course-rag-assistant/internal/observability/logging"
)

func main() {
	var (
		materialsPath = flag.String("file", "data/materials.json", "JSON file with materials to ingest")
		dirPath       = flag.String("dir", "", "ingest every supported file under this directory instead of -file")
		topic         = flag.String("topic", "", "topic assigned to materials ingested from -dir")
		enqueue       = flag.Bool("enqueue", false, "publish indexing jobs to NATS instead of indexing inline")
	)
	flag.Parse()

	cfg := config.Load()
	slog.SetDefault(logging.New("rag-ingest", cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		WithQueue:   *enqueue,
		WithArchive: true,
		WithStream:  !*enqueue,
		WithGraph:   true,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	var materials []domain.Material
	if *dirPath != "" {
		materials, err = materialsFromDirectory(*dirPath, *topic, cfg.ChunkSize, cfg.ChunkOverlap)
	} else {
		materials, err = materialsFromFile(*materialsPath)
	}
	if err != nil {
		log.Fatalf("load materials: %v", err)
	}
	if len(materials) == 0 {
		log.Fatalf("nothing to ingest")
	}

	totalChunks := 0
	for _, material := range materials {
		assignment, err := app.IngestUC.Ingest(ctx, material)
		if err != nil {
			log.Fatalf("ingest material %q: %v", material.Title, err)
		}

		if *enqueue {
			if err := app.Queue.PublishAssignmentIngested(ctx, assignment.ID); err != nil {
				log.Fatalf("enqueue assignment %s: %v", assignment.ID, err)
			}
			slog.Info("assignment_enqueued", "assignment_id", assignment.ID, "title", material.Title)
			continue
		}

		chunks, err := app.IndexUC.IndexAssignment(ctx, assignment.ID)
		if err != nil {
			log.Fatalf("index assignment %s: %v", assignment.ID, err)
		}
		totalChunks += chunks
		slog.Info("assignment_indexed", "assignment_id", assignment.ID, "title", material.Title, "chunks", chunks)
	}

	if *enqueue {
		fmt.Printf("Enqueued %d materials for indexing.\n", len(materials))
		return
	}
	fmt.Printf("Inserted %d chunks into Qdrant collection %q.\n", totalChunks, cfg.QdrantCollection)
}

func materialsFromFile(path string) ([]domain.Material, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read materials file: %w", err)
	}

	var items []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Topic       string   `json:"topic"`
		Source      string   `json:"source"`
		Notes       []string `json:"notes"`
		Chunks      []string `json:"chunks"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse materials file: %w", err)
	}

	materials := make([]domain.Material, 0, len(items))
	for _, item := range items {
		materials = append(materials, domain.Material{
			Title:       item.Title,
			Description: item.Description,
			Topic:       item.Topic,
			Source:      item.Source,
			Notes:       item.Notes,
			Chunks:      item.Chunks,
		})
	}
	return materials, nil
}

func materialsFromDirectory(dir, topic string, chunkSize, overlap int) ([]domain.Material, error) {
	splitter := chunking.NewSplitter(chunkSize, overlap)

	var materials []domain.Material
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !extractor.Supported(path) {
			return nil
		}

		text, err := extractor.ForPath(path).Extract(path)
		if err != nil {
			return fmt.Errorf("extract %s: %w", path, err)
		}
		chunks := splitter.Split(text)
		if len(chunks) == 0 {
			slog.Warn("material_skipped_empty", "path", path)
			return nil
		}

		relative, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			relative = path
		}
		materials = append(materials, domain.Material{
			Title:  entry.Name(),
			Topic:  topic,
			Source: relative,
			Chunks: chunks,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return materials, nil
}
