// Package rest serves the ops endpoints of long-running commands: health
// probes and Prometheus metrics.
package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fliaght/novelmof/internal/transport/middleware"
)

const pingTimeout = 3 * time.Second

// Pinger checks that the entry store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the probe endpoints.
type HealthHandler struct {
	store   Pinger
	version string
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. store may be nil, as in dry-run
// mode, in which case readiness does not depend on storage.
func NewHealthHandler(store Pinger, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version, now: time.Now}
}

// HealthResponse is the JSON response of every probe.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Live always answers 200 while the process runs.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: h.now()})
}

// Ready answers 200 when the store responds to a ping and 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	comp := h.check(r.Context())
	writeJSON(w, statusCode(comp), HealthResponse{Status: comp.Status, Timestamp: h.now()})
}

// Health is Ready with the version and the store latency.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	comp := h.check(r.Context())
	writeJSON(w, statusCode(comp), HealthResponse{
		Status:     comp.Status,
		Version:    h.version,
		Components: map[string]CompStatus{"store": comp},
		Timestamp:  h.now(),
	})
}

func (h *HealthHandler) check(ctx context.Context) CompStatus {
	if h.store == nil {
		return CompStatus{Status: "ok"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	if err := h.store.Ping(ctx); err != nil {
		return CompStatus{Status: "down", Error: err.Error()}
	}
	return CompStatus{Status: "ok", Latency: time.Since(start).String()}
}

func statusCode(c CompStatus) int {
	if c.Status != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// NewHandler mounts the probes and /metrics for gatherer behind the
// recovery and logging middleware.
func NewHandler(h *HealthHandler, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", h.Live)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logger(logger),
	)(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
