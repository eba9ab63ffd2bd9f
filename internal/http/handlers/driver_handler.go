package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"romuo/internal/http/middleware"
	"romuo/internal/modules/dispatch"
	"romuo/internal/modules/fleet"
	"romuo/internal/modules/ride"
	"romuo/internal/types"
)

type DriverHandler struct {
	rides    *ride.Service
	fleet    *fleet.Service
	dispatch *dispatch.Service
}

func NewDriverHandler(rides *ride.Service, fl *fleet.Service, dp *dispatch.Service) *DriverHandler {
	return &DriverHandler{rides: rides, fleet: fl, dispatch: dp}
}

// actor resolves the authenticated identity to its fleet record. Drivers
// act under their fleet id, not their login id.
func (h *DriverHandler) actor(c *gin.Context) (ride.Actor, bool) {
	ident, _ := middleware.IdentityFrom(c)
	d, err := h.fleet.DriverByIdentity(c.Request.Context(), types.ID(ident.UserID))
	if err != nil {
		writeError(c, http.StatusForbidden, "no driver profile for this account")
		return ride.Actor{}, false
	}
	return ride.Actor{ID: d.ID, Role: ride.RoleDriver}, true
}

func (h *DriverHandler) PendingRides(c *gin.Context) {
	rides, err := h.dispatch.PendingQueue(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": rides})
}

func (h *DriverHandler) Accept(c *gin.Context) {
	h.transition(c, h.rides.Accept)
}

func (h *DriverHandler) EnRoute(c *gin.Context) {
	h.transition(c, h.rides.EnRoute)
}

func (h *DriverHandler) Arrived(c *gin.Context) {
	h.transition(c, h.rides.Arrived)
}

func (h *DriverHandler) Start(c *gin.Context) {
	h.transition(c, h.rides.Start)
}

func (h *DriverHandler) Complete(c *gin.Context) {
	h.transition(c, h.rides.Complete)
}

func (h *DriverHandler) transition(c *gin.Context, fn func(context.Context, types.ID, ride.Actor) (*ride.Ride, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	r, err := fn(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

type declineReq struct {
	Reason string `json:"reason"`
}

func (h *DriverHandler) Decline(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req declineReq
	_ = c.ShouldBindJSON(&req)
	if err := h.rides.Decline(c.Request.Context(), types.ID(c.Param("id")), actor, req.Reason); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": ride.StatusPending})
}

func (h *DriverHandler) Earnings(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	period := dispatch.Period(c.DefaultQuery("period", string(dispatch.PeriodToday)))
	e, err := h.dispatch.DriverEarnings(c.Request.Context(), actor.ID, period)
	if err != nil {
		if err == dispatch.ErrBadPeriod {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, e)
}

type locationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.fleet.RecordPing(c.Request.Context(), actor.ID, types.Point{Lat: req.Lat, Lng: req.Lng}); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ok": true})
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	switch fleet.DriverStatus(req.Status) {
	case fleet.DriverAvailable, fleet.DriverBusy, fleet.DriverOffline:
	default:
		writeError(c, http.StatusBadRequest, "unknown driver status")
		return
	}
	if err := h.fleet.SetDriverStatus(c.Request.Context(), actor.ID, fleet.DriverStatus(req.Status)); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ok": true})
}
