package handlers

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/freema/coauthor/internal/redisclient"
	"github.com/freema/coauthor/internal/store"
)

// HealthHandler serves /health and /ready endpoints.
type HealthHandler struct {
	store     store.Store
	cache     *redisclient.Client // nil when the cache is disabled
	startTime time.Time
	version   string
	ready     *atomic.Bool
}

// NewHealthHandler creates a health handler. cache may be nil.
func NewHealthHandler(s store.Store, cache *redisclient.Client, version string) *HealthHandler {
	ready := &atomic.Bool{}
	ready.Store(true)
	return &HealthHandler{
		store:     s,
		cache:     cache,
		startTime: time.Now(),
		version:   version,
		ready:     ready,
	}
}

// SetReady sets the readiness state (false during shutdown).
func (h *HealthHandler) SetReady(v bool) {
	h.ready.Store(v)
}

type healthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Cache   string `json:"cache,omitempty"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health checks store (and cache, when enabled) connectivity.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Store:   "ok",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	}
	statusCode := http.StatusOK

	if _, err := h.store.Load(r.Context()); err != nil {
		resp.Status = "error"
		resp.Store = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Cache = "connected"
		if err := h.cache.Ping(r.Context()); err != nil {
			// A dead cache degrades lookups but does not take the service down.
			resp.Cache = "disconnected"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// Ready returns 200 if the server is accepting traffic, 503 during shutdown.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "shutting_down"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
