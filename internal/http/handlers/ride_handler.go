package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"romuo/internal/http/middleware"
	"romuo/internal/identity"
	"romuo/internal/modules/fleet"
	"romuo/internal/modules/ride"
	"romuo/internal/types"
)

type RideHandler struct {
	rides *ride.Service
	fleet *fleet.Service
}

func NewRideHandler(svc *ride.Service, fl *fleet.Service) *RideHandler {
	return &RideHandler{rides: svc, fleet: fl}
}

type guestReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type createRideReq struct {
	Pickup          types.Point `json:"pickup"`
	PickupAddr      string      `json:"pickup_address"`
	Destination     types.Point `json:"destination"`
	DestinationAddr string      `json:"destination_address"`
	VehicleClassID  string      `json:"vehicle_class_id"`
	Passengers      int         `json:"passengers"`
	DistanceKm      float64     `json:"distance_km"`
	DurationMin     *float64    `json:"duration_min"`
	PaymentMethod   string      `json:"payment_method"`
	RiderAge        *int        `json:"rider_age"`
	RideSharing     bool        `json:"ride_sharing"`
	ScheduledAt     *time.Time  `json:"scheduled_at"`
	Guest           *guestReq   `json:"guest"`
	Notes           string      `json:"notes"`
}

func (h *RideHandler) Create(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := ride.CreateCommand{
		RequesterID:     types.ID(ident.UserID),
		AccountType:     string(ident.AccountType),
		Pickup:          req.Pickup,
		PickupAddr:      req.PickupAddr,
		Destination:     req.Destination,
		DestinationAddr: req.DestinationAddr,
		VehicleClassID:  req.VehicleClassID,
		Passengers:      req.Passengers,
		DistanceKm:      req.DistanceKm,
		DurationMin:     req.DurationMin,
		PaymentMethod:   ride.PaymentMethod(req.PaymentMethod),
		RiderAge:        req.RiderAge,
		RideSharing:     req.RideSharing,
		ScheduledAt:     req.ScheduledAt,
		Notes:           req.Notes,
	}
	if req.Guest != nil {
		cmd.Guest = &ride.GuestContact{Name: req.Guest.Name, Phone: req.Guest.Phone}
	}
	r, err := h.rides.Create(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !h.mayRead(c, r) {
		// same body as a missing ride
		writeError(c, http.StatusNotFound, "ride unavailable")
		return
	}
	writeJSON(c, http.StatusOK, r)
}

// mayRead restricts ride visibility to the requester, the bound driver
// and administrators. Unclaimed pending rides reach drivers through
// their pending queue, not through this lookup.
func (h *RideHandler) mayRead(c *gin.Context, r *ride.Ride) bool {
	ident, _ := middleware.IdentityFrom(c)
	switch ident.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleDriver:
		if r.DriverID == nil || h.fleet == nil {
			return false
		}
		d, err := h.fleet.DriverByIdentity(c.Request.Context(), ident.UserID)
		return err == nil && d.ID == *r.DriverID
	default:
		return r.RequesterID == ident.UserID
	}
}

func (h *RideHandler) History(c *gin.Context) {
	id := types.ID(c.Param("id"))
	r, err := h.rides.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !h.mayRead(c, r) {
		writeError(c, http.StatusNotFound, "ride unavailable")
		return
	}
	events, err := h.rides.History(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"events": events})
}

func (h *RideHandler) ListMine(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	rides, err := h.rides.ByRequester(c.Request.Context(), types.ID(ident.UserID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if n < len(rides) {
			rides = rides[:n]
		}
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": rides})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *RideHandler) Cancel(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	var req cancelReq
	_ = c.ShouldBindJSON(&req)

	actor := ride.Actor{ID: types.ID(ident.UserID), Role: ride.RolePassenger}
	if ident.Role == identity.RoleAdmin {
		actor.Role = ride.RoleAdmin
	}
	r, err := h.rides.Cancel(c.Request.Context(), types.ID(c.Param("id")), actor, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
