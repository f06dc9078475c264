// Command search queries the vector index from the terminal and prints
// the matched chunks with their assignment metadata.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkorolev/course-rag-assistant/internal/bootstrap"
	"github.com/pkorolev/course-rag-assistant/internal/config"
	"github.com/pkorolev/course-rag-assistant/internal/observability/logging"
)

func main() {
	limit := flag.Int("limit", 3, "number of hits to return")
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: search [-limit N] <query>")
		os.Exit(2)
	}

	cfg := config.Load()
	slog.SetDefault(logging.New("rag-search", "warn", cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	results, err := app.SearchUC.Search(ctx, query, *limit)
	if err != nil {
		log.Fatalf("search error: %v", err)
	}
	if len(results) == 0 {
		fmt.Println("No matches found.")
		return
	}

	for idx, hit := range results {
		fmt.Printf("[%d] score=%.4f\n", idx+1, hit.Score)
		if hit.AssignmentTitle != "" {
			fmt.Printf("    assignment: %s (%s)\n", hit.AssignmentTitle, hit.Topic)
		}
		if hit.Source != "" {
			fmt.Printf("    source: %s chunk #%d\n", hit.Source, hit.ChunkNumber)
		}
		if hit.Content != "" {
			fmt.Println("    content:", hit.Content)
		}
		fmt.Println()
	}
}
