package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
)

// Client talks to Qdrant over its REST API. Point payloads carry only
// identifiers and light metadata; chunk text lives in Postgres.
type Client struct {
	baseURL    string
	collection string
	vectorSize int
	httpClient *http.Client

	ensureMu sync.Mutex
	ensured  bool
}

func New(baseURL, collection string, vectorSize int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		vectorSize: vectorSize,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type pointPayload struct {
	AssignmentID string `json:"assignment_id"`
	DocumentID   string `json:"document_id"`
	ChunkNumber  int    `json:"chunk_number"`
	Topic        string `json:"topic,omitempty"`
	Source       string `json:"source,omitempty"`
}

func (c *Client) UpsertPoints(ctx context.Context, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := c.ensureCollection(ctx); err != nil {
		return err
	}

	type point struct {
		ID      string       `json:"id"`
		Vector  []float32    `json:"vector"`
		Payload pointPayload `json:"payload"`
	}

	body := struct {
		Points []point `json:"points"`
	}{Points: make([]point, 0, len(points))}

	for _, p := range points {
		body.Points = append(body.Points, point{
			ID:     p.PointID,
			Vector: p.Vector,
			Payload: pointPayload{
				AssignmentID: p.AssignmentID,
				DocumentID:   p.DocumentID,
				ChunkNumber:  p.ChunkNumber,
				Topic:        p.Topic,
				Source:       p.Source,
			},
		})
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPut, url, body, nil, "upsert")
}

func (c *Client) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.VectorHit, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}

	var searchResp struct {
		Result []struct {
			ID      any          `json:"id"`
			Score   float64      `json:"score"`
			Payload pointPayload `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.VectorHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.VectorHit{
			PointID:      fmt.Sprintf("%v", r.ID),
			AssignmentID: r.Payload.AssignmentID,
			DocumentID:   r.Payload.DocumentID,
			ChunkNumber:  r.Payload.ChunkNumber,
			Topic:        r.Payload.Topic,
			Source:       r.Payload.Source,
			Score:        r.Score,
		})
	}
	return out, nil
}

func (c *Client) ensureCollection(ctx context.Context) error {
	c.ensureMu.Lock()
	ensured := c.ensured
	c.ensureMu.Unlock()
	if ensured {
		return nil
	}

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     c.vectorSize,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	err := c.do(ctx, http.MethodPut, url, reqBody, nil, "ensure collection")
	if err != nil {
		// 409 means the collection already exists; any other failure is real.
		var statusErr *statusError
		if !errors.As(err, &statusErr) || statusErr.code != http.StatusConflict {
			return err
		}
	}

	c.ensureMu.Lock()
	c.ensured = true
	c.ensureMu.Unlock()
	return nil
}

type statusError struct {
	operation string
	code      int
	status    string
	body      string
}

func (e *statusError) Error() string {
	if strings.TrimSpace(e.body) == "" {
		return fmt.Sprintf("qdrant %s status: %s", e.operation, e.status)
	}
	return fmt.Sprintf("qdrant %s status: %s: %s", e.operation, e.status, strings.TrimSpace(e.body))
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			operation: operation,
			code:      resp.StatusCode,
			status:    resp.Status,
			body:      string(raw),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
