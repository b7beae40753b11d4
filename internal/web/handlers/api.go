package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ug-admin-search/internal/logger"
	"github.com/ug-admin-search/internal/search"
)

// Config represents the handler settings taken from the service configuration
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// NewConfig builds handler settings. A default limit above maxLimit is
// lowered to maxLimit so the reported limit is the one applied.
func NewConfig(defaultLimit, maxLimit int) *Config {
	if maxLimit > 0 && defaultLimit > maxLimit {
		logger.L().Warn("default_limit_clamped", "default_limit", defaultLimit, "max_limit", maxLimit)
		defaultLimit = maxLimit
	}
	return &Config{DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// APIHandler handles general API endpoints
type APIHandler struct {
	Holder   *search.Holder
	Reloader *search.Reloader
	Config   *Config
}

// StatsResponse represents overall statistics
type StatsResponse struct {
	search.Stats
	Generation uint64 `json:"generation"`
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status     string `json:"status"`
	Generation uint64 `json:"generation"`
	Units      int    `json:"units"`
}

// ReloadResponse reports the engine in service after a reload
type ReloadResponse struct {
	StatsResponse
	Duration string `json:"duration"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetStats returns unit counts and build details of the engine in service
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	e := engineOrUnavailable(w, h.Holder)
	if e == nil {
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Stats: e.Stats(), Generation: h.Holder.Generation()})
}

// Health reports whether an engine is serving
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	e := h.Holder.Engine()
	if e == nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "loading"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Generation: h.Holder.Generation(),
		Units:      e.Stats().Total,
	})
}

// Reload rebuilds the engine from the configured provider
func (h *APIHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.Reloader == nil {
		writeError(w, http.StatusNotFound, "reload is not configured")
		return
	}
	start := time.Now()
	e, err := h.Reloader.Reload(r.Context())
	if err != nil {
		logger.L().Error("reload_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reload failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		StatsResponse: StatsResponse{Stats: e.Stats(), Generation: h.Holder.Generation()},
		Duration:      time.Since(start).String(),
	})
}

func engineOrUnavailable(w http.ResponseWriter, h *search.Holder) *search.Engine {
	e := h.Engine()
	if e == nil {
		writeError(w, http.StatusServiceUnavailable, "reference data not loaded")
	}
	return e
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Warn("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// parseIntParam returns defaultVal for an empty string and ok=false for
// anything that is not an integer.
func parseIntParam(s string, defaultVal int) (int, bool) {
	if s == "" {
		return defaultVal, true
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return i, true
}
