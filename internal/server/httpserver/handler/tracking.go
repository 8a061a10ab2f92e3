package handler

import (
	"net/http"
	"strconv"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/core/service"
	"github.com/yndnr/tracklog-go/internal/telemetry/logger"
)

// handleLocationUpdate handles GET /location-update/{pwd}/{user_id}/{lat}/{long}.
func (h *Handler) handleLocationUpdate(w http.ResponseWriter, r *http.Request) {
	lat, long, err := parseCoordinates(r)
	if err != nil {
		h.writeStatus(w, err)
		return
	}

	err = h.tracking.UpdateLocation(r.Context(), &service.UpdateLocationRequest{
		Password: r.PathValue("pwd"),
		UserID:   r.PathValue("user_id"),
		Lat:      lat,
		Long:     long,
	})
	h.logUpdateError(r, "location", err)
	h.writeStatus(w, err)
}

// handleDataUpdate handles GET /data-update/{pwd}/{user_id}/{lat}/{long}/{battery}.
func (h *Handler) handleDataUpdate(w http.ResponseWriter, r *http.Request) {
	lat, long, err := parseCoordinates(r)
	if err != nil {
		h.writeStatus(w, err)
		return
	}
	battery, err := strconv.ParseUint(r.PathValue("battery"), 10, 8)
	if err != nil {
		h.writeStatus(w, domain.ErrInvalidBattery.WithDetails("battery is not a number 0-255"))
		return
	}

	err = h.tracking.UpdateData(r.Context(), &service.UpdateDataRequest{
		Password: r.PathValue("pwd"),
		UserID:   r.PathValue("user_id"),
		Lat:      lat,
		Long:     long,
		Battery:  uint8(battery),
	})
	h.logUpdateError(r, "data", err)
	h.writeStatus(w, err)
}

// handleLatestLocations handles GET /latest/locations.
func (h *Handler) handleLatestLocations(w http.ResponseWriter, r *http.Request) {
	latest, err := h.tracking.LatestLocations(r.Context(), bearerPassword(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, latest)
}

// handleLatestData handles GET /latest/data.
func (h *Handler) handleLatestData(w http.ResponseWriter, r *http.Request) {
	latest, err := h.tracking.LatestData(r.Context(), bearerPassword(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, latest)
}

func (h *Handler) logUpdateError(r *http.Request, store string, err error) {
	if err == nil || errorStatus(err) < 500 {
		return
	}
	logger.L(r.Context()).Error("update failed",
		"store", store,
		"user_id", r.PathValue("user_id"),
		"error", err,
	)
}

func parseCoordinates(r *http.Request) (float64, float64, error) {
	lat, err := strconv.ParseFloat(r.PathValue("lat"), 64)
	if err != nil {
		return 0, 0, domain.ErrInvalidCoordinate.WithDetails("latitude is not a number")
	}
	long, err := strconv.ParseFloat(r.PathValue("long"), 64)
	if err != nil {
		return 0, 0, domain.ErrInvalidCoordinate.WithDetails("longitude is not a number")
	}
	return lat, long, nil
}
