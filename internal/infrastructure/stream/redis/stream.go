// Package redis publishes chunk-indexed events to a Redis stream so
// cache warmers and analytics consumers can follow indexing progress.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

type Stream struct {
	client *redis.Client
	stream string
}

func New(ctx context.Context, url, stream string) (*Stream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Stream{client: client, stream: stream}, nil
}

func (s *Stream) PublishChunkIndexed(ctx context.Context, event domain.ChunkIndexedEvent) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"assignment_id": event.AssignmentID,
			"document_id":   event.DocumentID,
			"point_id":      event.PointID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish chunk event %s: %w", event.DocumentID, err)
	}
	return nil
}

func (s *Stream) Close() error {
	return s.client.Close()
}
