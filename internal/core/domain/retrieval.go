package domain

// VectorHit is a single nearest-neighbour result from the vector index.
// Payloads carry only identifiers and light metadata; chunk text always
// comes from Postgres during hydration.
type VectorHit struct {
	PointID      string
	AssignmentID string
	DocumentID   string
	ChunkNumber  int
	Topic        string
	Source       string
	Score        float64
}

// VectorPoint is what gets upserted into the vector index for one chunk.
type VectorPoint struct {
	PointID      string
	Vector       []float32
	AssignmentID string
	DocumentID   string
	ChunkNumber  int
	Topic        string
	Source       string
}

// HydratedChunk is the Postgres side of a vector hit: the chunk content
// joined with its assignment metadata.
type HydratedChunk struct {
	Content         string
	Source          string
	ChunkNumber     int
	AssignmentTitle string
	Topic           string
}

// SourceChunk is a retrieved context fragment as exposed to API clients.
type SourceChunk struct {
	AssignmentTitle string  `json:"assignment_title"`
	Topic           string  `json:"topic,omitempty"`
	Source          string  `json:"source,omitempty"`
	ChunkNumber     int     `json:"chunk_number"`
	Content         string  `json:"content"`
	Score           float64 `json:"score"`
}

// AnswerOrigin records which path produced the answer text.
type AnswerOrigin string

const (
	OriginLLM      AnswerOrigin = "llm"
	OriginTemplate AnswerOrigin = "template"
)

// ChatAnswer is the chat endpoint response body.
type ChatAnswer struct {
	Answer  string        `json:"answer"`
	Sources []SourceChunk `json:"sources"`
	Origin  AnswerOrigin  `json:"-"`
}
