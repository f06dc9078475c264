// Package mongo keeps a raw copy of every ingested material in MongoDB.
// Postgres holds the normalized rows the chat path reads; the archive
// preserves the material as submitted, including operator notes, so
// collections can be re-chunked and re-indexed later.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

type Archive struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func New(ctx context.Context, uri, database, collection string) (*Archive, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Archive{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (a *Archive) ArchiveMaterial(ctx context.Context, assignmentID string, material domain.Material) error {
	doc := bson.M{
		"assignment_id": assignmentID,
		"title":         material.Title,
		"description":   material.Description,
		"topic":         material.Topic,
		"source":        material.Source,
		"notes":         material.Notes,
		"chunks":        material.Chunks,
		"ingested_at":   time.Now().UTC(),
	}
	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("archive material %s: %w", assignmentID, err)
	}
	return nil
}

func (a *Archive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
