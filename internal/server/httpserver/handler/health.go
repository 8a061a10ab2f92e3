package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/tracklog-go/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: buildinfo.Version,
	})
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if h.ready != nil {
		if err := h.ready(); err != nil {
			resp.Status = "not_ready"
			resp.Error = err.Error()
			h.writeJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}
