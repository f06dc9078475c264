package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

type MaterialRepository struct {
	db *sql.DB
}

func NewMaterialRepository(db *sql.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *MaterialRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/ingest startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS assignments (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	topic TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	assignment_id UUID NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
	source TEXT,
	chunk_number INT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS vector_refs (
	id BIGSERIAL PRIMARY KEY,
	document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	qdrant_collection TEXT NOT NULL,
	point_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_documents_assignment_id ON documents(assignment_id);
CREATE INDEX IF NOT EXISTS idx_vector_refs_document_id ON vector_refs(document_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *MaterialRepository) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO assignments (id, title, description, topic, created_at)
VALUES ($1, $2, $3, $4, $5)
`, a.ID, a.Title, nullableString(a.Description), nullableString(a.Topic), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (r *MaterialRepository) AssignmentByID(ctx context.Context, id string) (*domain.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, description, topic, created_at
FROM assignments
WHERE id = $1
`, id)

	var a domain.Assignment
	var description, topic sql.NullString
	err := row.Scan(&a.ID, &a.Title, &description, &topic, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrMaterialNotFound, "assignment by id", err)
		}
		return nil, fmt.Errorf("scan assignment: %w", err)
	}
	a.Description = description.String
	a.Topic = topic.String
	return &a, nil
}

func (r *MaterialRepository) CreateChunk(ctx context.Context, c *domain.ChunkRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, assignment_id, source, chunk_number, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, c.ID, c.AssignmentID, nullableString(c.Source), c.ChunkNumber, c.Content, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

func (r *MaterialRepository) ChunksByAssignment(ctx context.Context, assignmentID string) ([]domain.ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, assignment_id, source, chunk_number, content, created_at
FROM documents
WHERE assignment_id = $1
ORDER BY chunk_number
`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.ChunkRecord
	for rows.Next() {
		var c domain.ChunkRecord
		var source sql.NullString
		if err := rows.Scan(&c.ID, &c.AssignmentID, &source, &c.ChunkNumber, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Source = source.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

func (r *MaterialRepository) CreateVectorRef(ctx context.Context, ref domain.VectorRef) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO vector_refs (document_id, qdrant_collection, point_id, created_at)
VALUES ($1, $2, $3, $4)
`, ref.DocumentID, ref.Collection, ref.PointID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert vector ref: %w", err)
	}
	return nil
}

// HydrateChunks fetches chunk content plus assignment metadata for the
// given document ids in one round trip. Unknown ids are simply absent
// from the result map.
func (r *MaterialRepository) HydrateChunks(ctx context.Context, documentIDs []string) (map[string]domain.HydratedChunk, error) {
	out := make(map[string]domain.HydratedChunk, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(documentIDs))
	args := make([]any, len(documentIDs))
	for i, id := range documentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
SELECT d.id, d.content, d.source, d.chunk_number, a.title, a.topic
FROM documents d
JOIN assignments a ON d.assignment_id = a.id
WHERE d.id IN (%s)
`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hydrated chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var chunk domain.HydratedChunk
		var source, topic sql.NullString
		if err := rows.Scan(&id, &chunk.Content, &source, &chunk.ChunkNumber, &chunk.AssignmentTitle, &topic); err != nil {
			return nil, fmt.Errorf("scan hydrated chunk: %w", err)
		}
		chunk.Source = source.String
		chunk.Topic = topic.String
		out[id] = chunk
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hydrated chunks: %w", err)
	}
	return out, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
