package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/core/service"
	"github.com/yndnr/tracklog-go/internal/telemetry/logger"
)

// Route patterns served by Handler.
const (
	RouteLocationUpdate  = "GET /location-update/{pwd}/{user_id}/{lat}/{long}"
	RouteDataUpdate      = "GET /data-update/{pwd}/{user_id}/{lat}/{long}/{battery}"
	RouteLatestLocations = "GET /latest/locations"
	RouteLatestData      = "GET /latest/data"
	RouteHealth          = "GET /health"
	RouteReady           = "GET /ready"
)

// Config holds the dependencies of Handler.
type Config struct {
	Tracking *service.TrackingService
	Logger   *slog.Logger

	// Ready reports whether the server can take traffic. Nil means always.
	Ready func() error
}

// Handler serves the tracklog HTTP API.
type Handler struct {
	tracking *service.TrackingService
	logger   *slog.Logger
	ready    func() error
	mux      *http.ServeMux
}

// New creates a Handler.
func New(cfg *Config) *Handler {
	h := &Handler{
		tracking: cfg.Tracking,
		logger:   cfg.Logger,
		ready:    cfg.Ready,
		mux:      http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc(RouteHealth, h.handleHealth)
	h.mux.HandleFunc(RouteReady, h.handleReady)

	h.mux.HandleFunc(RouteLocationUpdate, h.handleLocationUpdate)
	h.mux.HandleFunc(RouteDataUpdate, h.handleDataUpdate)

	h.mux.HandleFunc(RouteLatestLocations, h.handleLatestLocations)
	h.mux.HandleFunc(RouteLatestData, h.handleLatestData)
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "request_id", requestID, "error", err)
	}
}

// writeError writes an error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message, details))
}

// writeStatus answers a tracker endpoint with a bare status code.
func (h *Handler) writeStatus(w http.ResponseWriter, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	if code := domain.GetErrorCode(err); code != "" {
		w.Header().Set("X-Error-Code", code)
	}
	status := errorStatus(err)
	http.Error(w, http.StatusText(status), status)
}

// handleServiceError converts a service error to an error envelope.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		h.writeError(w, r, errorStatus(err), de.Code, de.Message, nonEmpty(de.Details))
		return
	}
	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError,
		domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, nil)
}

// errorStatus maps an error to an HTTP status. Errors that are not domain
// errors are internal.
func errorStatus(err error) int {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	return de.HTTPStatus()
}

// getRequestID returns the request ID set by the RequestID middleware.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

// bearerPassword extracts the password from "Authorization: Bearer <pwd>".
func bearerPassword(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
