package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"romuo/internal/modules/pricing"
	"romuo/internal/types"
)

type PricingHandler struct {
	pricing *pricing.Service
}

func NewPricingHandler(svc *pricing.Service) *PricingHandler {
	return &PricingHandler{pricing: svc}
}

type quoteReq struct {
	VehicleClassID string       `json:"vehicle_class_id"`
	Pickup         *types.Point `json:"pickup"`
	Destination    *types.Point `json:"destination"`
	DistanceKm     float64      `json:"distance_km"`
	DurationMin    *float64     `json:"duration_min"`
	Passengers     int          `json:"passengers"`
	RiderAge       *int         `json:"rider_age"`
	RideSharing    bool         `json:"ride_sharing"`
	ScheduledAt    *time.Time   `json:"scheduled_at"`
}

func (h *PricingHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	bd, err := h.pricing.Quote(c.Request.Context(), pricing.QuoteRequest{
		VehicleClassID: req.VehicleClassID,
		Pickup:         req.Pickup,
		Destination:    req.Destination,
		DistanceKm:     req.DistanceKm,
		DurationMin:    req.DurationMin,
		Passengers:     req.Passengers,
		RiderAge:       req.RiderAge,
		RideSharing:    req.RideSharing,
		ScheduledAt:    req.ScheduledAt,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bd)
}
