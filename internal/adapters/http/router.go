// Package httpadapter exposes the chat API over HTTP.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkorolev/course-rag-assistant/internal/core/ports"
	"github.com/pkorolev/course-rag-assistant/internal/observability/metrics"
)

const serviceName = "rag-api"

type Router struct {
	chat     ports.ChatService
	graph    ports.TopicGraph
	examples []string
	metrics  *metrics.HTTPServerMetrics

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
}

type RouterOptions struct {
	Examples       []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

// NewRouter wires the chat service and the optional topic graph. A nil
// graph disables the related-assignments endpoint.
func NewRouter(chat ports.ChatService, graph ports.TopicGraph, m *metrics.HTTPServerMetrics, opts RouterOptions) *Router {
	return &Router{
		chat:           chat,
		graph:          graph,
		examples:       opts.Examples,
		metrics:        m,
		rateLimitRPS:   opts.RateLimitRPS,
		rateLimitBurst: opts.RateLimitBurst,
		maxInFlight:    opts.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /api/examples", rt.getExamples)
	mux.HandleFunc("POST /api/chat", rt.postChat)
	mux.HandleFunc("GET /api/topics/{topic}/related", rt.getRelatedAssignments)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, 50*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = corsMiddleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) getExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"examples": rt.examples})
}

func (rt *Router) postChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		Limit   int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.chat.Chat(r.Context(), req.Message, req.Limit)
	if err != nil {
		rt.recordChatFailure(err)
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChatAnswer(serviceName, string(answer.Origin), len(answer.Sources), time.Since(start))
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) getRelatedAssignments(w http.ResponseWriter, r *http.Request) {
	if rt.graph == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "topic graph is disabled"})
		return
	}

	topic := r.PathValue("topic")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	related, err := rt.graph.RelatedAssignments(r.Context(), topic, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"topic":       topic,
		"assignments": related,
	})
}

func (rt *Router) recordChatFailure(err error) {
	if rt.metrics == nil {
		return
	}
	if mapErrorToHTTPStatus(err) == http.StatusNotFound {
		rt.metrics.RecordChatNoContext(serviceName)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
