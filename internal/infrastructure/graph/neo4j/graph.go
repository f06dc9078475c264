// Package neo4j maintains the assignment/topic graph. Ingest links each
// assignment to its topic node; the API uses the graph to suggest
// related assignments for a topic.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

type Graph struct {
	driver neo4j.DriverWithContext
}

func New(ctx context.Context, uri, user, password string) (*Graph, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return &Graph{driver: driver}, nil
}

func (g *Graph) LinkAssignmentTopic(ctx context.Context, a domain.Assignment) error {
	if a.Topic == "" {
		return nil
	}
	_, err := neo4j.ExecuteQuery(ctx, g.driver,
		`MERGE (t:Topic {name: $topic})
		 MERGE (a:Assignment {id: $id})
		 SET a.title = $title
		 MERGE (a)-[:COVERS]->(t)`,
		map[string]any{
			"topic": a.Topic,
			"id":    a.ID,
			"title": a.Title,
		},
		neo4j.EagerResultTransformer)
	if err != nil {
		return fmt.Errorf("link assignment %s to topic %q: %w", a.ID, a.Topic, err)
	}
	return nil
}

func (g *Graph) RelatedAssignments(ctx context.Context, topic string, limit int) ([]domain.RelatedAssignment, error) {
	if limit <= 0 {
		limit = 5
	}
	result, err := neo4j.ExecuteQuery(ctx, g.driver,
		`MATCH (a:Assignment)-[:COVERS]->(t:Topic {name: $topic})
		 RETURN a.id AS id, a.title AS title
		 ORDER BY a.title
		 LIMIT $limit`,
		map[string]any{
			"topic": topic,
			"limit": limit,
		},
		neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("query related assignments for topic %q: %w", topic, err)
	}

	related := make([]domain.RelatedAssignment, 0, len(result.Records))
	for _, record := range result.Records {
		id, _, err := neo4j.GetRecordValue[string](record, "id")
		if err != nil {
			return nil, fmt.Errorf("read related assignment id: %w", err)
		}
		title, _, err := neo4j.GetRecordValue[string](record, "title")
		if err != nil {
			return nil, fmt.Errorf("read related assignment title: %w", err)
		}
		related = append(related, domain.RelatedAssignment{ID: id, Title: title})
	}
	return related, nil
}

func (g *Graph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}
