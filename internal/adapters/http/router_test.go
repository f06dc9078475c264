package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkorolev/course-rag-assistant/internal/core/domain"
	"github.com/pkorolev/course-rag-assistant/internal/core/ports"
	"github.com/pkorolev/course-rag-assistant/internal/observability/metrics"
)

type chatServiceFake struct {
	answer *domain.ChatAnswer
	err    error

	gotMessage string
	gotLimit   int
}

func (f *chatServiceFake) Chat(_ context.Context, message string, limit int) (*domain.ChatAnswer, error) {
	f.gotMessage = message
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type topicGraphFake struct {
	related []domain.RelatedAssignment
	err     error

	gotTopic string
	gotLimit int
}

func (f *topicGraphFake) LinkAssignmentTopic(context.Context, domain.Assignment) error {
	return nil
}

func (f *topicGraphFake) RelatedAssignments(_ context.Context, topic string, limit int) ([]domain.RelatedAssignment, error) {
	f.gotTopic = topic
	f.gotLimit = limit
	return f.related, f.err
}

func newTestRouter(chat ports.ChatService, graph ports.TopicGraph) http.Handler {
	rt := NewRouter(chat, graph, metrics.NewHTTPServerMetrics(serviceName), RouterOptions{
		Examples: []string{"Что такое RAG?"},
	})
	return rt.Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&chatServiceFake{}, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", res.Body.String())
	}
}

func TestGetExamples(t *testing.T) {
	handler := newTestRouter(&chatServiceFake{}, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/examples", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		Examples []string `json:"examples"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Examples) != 1 || body.Examples[0] != "Что такое RAG?" {
		t.Fatalf("unexpected examples: %v", body.Examples)
	}
}

func TestPostChatReturnsAnswerAndSources(t *testing.T) {
	chat := &chatServiceFake{
		answer: &domain.ChatAnswer{
			Answer: "### Короткий ответ",
			Sources: []domain.SourceChunk{{
				AssignmentTitle: "Введение в RAG",
				ChunkNumber:     1,
				Content:         "текст",
				Score:           0.9,
			}},
			Origin: domain.OriginTemplate,
		},
	}
	handler := newTestRouter(chat, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"Что такое RAG?","limit":4}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if chat.gotMessage != "Что такое RAG?" || chat.gotLimit != 4 {
		t.Fatalf("service got message=%q limit=%d", chat.gotMessage, chat.gotLimit)
	}

	var body struct {
		Answer  string `json:"answer"`
		Sources []struct {
			AssignmentTitle string  `json:"assignment_title"`
			Score           float64 `json:"score"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Answer != "### Короткий ответ" {
		t.Fatalf("unexpected answer: %q", body.Answer)
	}
	if len(body.Sources) != 1 || body.Sources[0].AssignmentTitle != "Введение в RAG" {
		t.Fatalf("unexpected sources: %+v", body.Sources)
	}
	if strings.Contains(res.Body.String(), "origin") {
		t.Fatalf("answer origin must not leak into the response: %s", res.Body.String())
	}
}

func TestPostChatRejectsInvalidJSON(t *testing.T) {
	handler := newTestRouter(&chatServiceFake{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestPostChatErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "chat", errors.New("empty message")), http.StatusBadRequest},
		{"no materials", domain.WrapError(domain.ErrMaterialNotFound, "chat retrieval", errors.New("no matching materials")), http.StatusNotFound},
		{"temporary", domain.WrapError(domain.ErrTemporary, "qdrant search", errors.New("connection refused")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(&chatServiceFake{err: tc.err}, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"q"}`))
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)
			if res.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.Code)
			}
			if !strings.Contains(res.Body.String(), "error") {
				t.Fatalf("expected error body, got %s", res.Body.String())
			}
		})
	}
}

func TestGetRelatedAssignments(t *testing.T) {
	graph := &topicGraphFake{
		related: []domain.RelatedAssignment{{ID: "a1", Title: "Введение в RAG"}},
	}
	handler := newTestRouter(&chatServiceFake{}, graph)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/topics/rag/related?limit=3", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if graph.gotTopic != "rag" || graph.gotLimit != 3 {
		t.Fatalf("graph got topic=%q limit=%d", graph.gotTopic, graph.gotLimit)
	}
	if !strings.Contains(res.Body.String(), "Введение в RAG") {
		t.Fatalf("unexpected body: %s", res.Body.String())
	}
}

func TestGetRelatedAssignmentsWithoutGraph(t *testing.T) {
	handler := newTestRouter(&chatServiceFake{}, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/topics/rag/related", nil))
	if res.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 when graph is disabled, got %d", res.Code)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	handler := newTestRouter(&chatServiceFake{}, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected %s header to be set", requestIDHeader)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestRouter(&chatServiceFake{}, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", res.Code)
	}
	if res.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
