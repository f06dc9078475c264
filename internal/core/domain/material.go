package domain

import "time"

// Material is a raw course-material item as it arrives from the ingest
// input (materials.json entry or an extracted file).
type Material struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Topic       string   `json:"topic,omitempty"`
	Source      string   `json:"source"`
	Notes       []string `json:"notes,omitempty"`
	Chunks      []string `json:"chunks"`
}

// Assignment is the relational aggregate a material is stored under.
type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Topic       string    `json:"topic,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChunkRecord is one row of the documents table: a single chunk of an
// assignment's source material.
type ChunkRecord struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	Source       string    `json:"source,omitempty"`
	ChunkNumber  int       `json:"chunk_number"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// VectorRef links a documents row to the Qdrant point built from it.
type VectorRef struct {
	DocumentID string
	Collection string
	PointID    string
}

// ChunkIndexedEvent is emitted to the ingest stream once a chunk has
// been upserted into the vector index.
type ChunkIndexedEvent struct {
	AssignmentID string
	DocumentID   string
	PointID      string
}

// RelatedAssignment is a topic-graph neighbour of an assignment.
type RelatedAssignment struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
