// Package handlers holds the gin handlers and their request/response
// shapes. Error mapping is centralized here so every route reports the
// same way.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"romuo/internal/modules/catalog"
	"romuo/internal/modules/fleet"
	"romuo/internal/modules/pricing"
	"romuo/internal/modules/ride"
	"romuo/internal/modules/zone"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses. A missing ride
// and a ride in the wrong state both answer 404 with the same body, so
// callers cannot probe which rides exist.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrNotFound), errors.Is(err, ride.ErrInvalidState):
		writeError(c, http.StatusNotFound, "ride unavailable")
	case errors.Is(err, ride.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ride.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ride.ErrBadRequest),
		errors.Is(err, pricing.ErrPassengerCount),
		errors.Is(err, catalog.ErrUnknownClass),
		errors.Is(err, catalog.ErrNoEligibleVehicle),
		errors.Is(err, zone.ErrBadZone),
		errors.Is(err, fleet.ErrBadDriver),
		errors.Is(err, fleet.ErrBadVehicle),
		errors.Is(err, fleet.ErrDriverOffline):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, fleet.ErrDuplicatePlate):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, zone.ErrNotFound), errors.Is(err, fleet.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
