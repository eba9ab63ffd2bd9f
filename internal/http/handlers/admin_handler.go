package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"romuo/internal/http/middleware"
	"romuo/internal/modules/dispatch"
	"romuo/internal/modules/fleet"
	"romuo/internal/modules/ride"
	"romuo/internal/modules/zone"
	"romuo/internal/types"
)

type AdminHandler struct {
	rides    *ride.Service
	fleet    *fleet.Service
	zones    *zone.Service
	dispatch *dispatch.Service
}

func NewAdminHandler(rides *ride.Service, fl *fleet.Service, zones *zone.Service, dp *dispatch.Service) *AdminHandler {
	return &AdminHandler{rides: rides, fleet: fl, zones: zones, dispatch: dp}
}

type assignReq struct {
	DriverID string `json:"driver_id"`
}

func (h *AdminHandler) AssignRide(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "driver_id required")
		return
	}
	admin := ride.Actor{ID: types.ID(ident.UserID), Role: ride.RoleAdmin}
	r, err := h.rides.AdminAssign(c.Request.Context(), types.ID(c.Param("id")), types.ID(req.DriverID), admin)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *AdminHandler) Board(c *gin.Context) {
	snap, err := h.dispatch.Board(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, snap)
}

// Calendar defaults to the coming seven days.
func (h *AdminHandler) Calendar(c *gin.Context) {
	from := time.Now().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 7)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		to = t
	}
	cal, err := h.dispatch.Calendar(c.Request.Context(), from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"days": cal})
}

type registerDriverReq struct {
	IdentityID string `json:"identity_id"`
	Name       string `json:"name"`
}

func (h *AdminHandler) RegisterDriver(c *gin.Context) {
	var req registerDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.fleet.RegisterDriver(c.Request.Context(), types.ID(req.IdentityID), req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, d)
}

type registerVehicleReq struct {
	Plate          string    `json:"plate"`
	ClassID        string    `json:"class_id"`
	Capacity       int       `json:"capacity"`
	InsuranceUntil time.Time `json:"insurance_until"`
	ServiceDue     time.Time `json:"service_due"`
}

func (h *AdminHandler) RegisterVehicle(c *gin.Context) {
	var req registerVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.fleet.RegisterVehicle(c.Request.Context(), req.Plate, req.ClassID, req.Capacity, req.InsuranceUntil, req.ServiceDue)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, v)
}

type assignVehicleReq struct {
	VehicleID string `json:"vehicle_id"`
}

func (h *AdminHandler) AssignVehicle(c *gin.Context) {
	var req assignVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil || req.VehicleID == "" {
		writeError(c, http.StatusBadRequest, "vehicle_id required")
		return
	}
	if err := h.fleet.AssignVehicle(c.Request.Context(), types.ID(c.Param("id")), types.ID(req.VehicleID)); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ok": true})
}

type zoneReq struct {
	Name          string             `json:"name"`
	Origin        zone.Endpoint      `json:"origin"`
	Destination   zone.Endpoint      `json:"destination"`
	Prices        map[string]float64 `json:"prices"`
	Bidirectional bool               `json:"bidirectional"`
}

func (h *AdminHandler) CreateZone(c *gin.Context) {
	var req zoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	z := &zone.Zone{
		Name:          req.Name,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Prices:        req.Prices,
		Bidirectional: req.Bidirectional,
	}
	if err := h.zones.Create(c.Request.Context(), z); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, z)
}

func (h *AdminHandler) UpdateZone(c *gin.Context) {
	var req zoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	z, err := h.zones.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	z.Name = req.Name
	z.Origin = req.Origin
	z.Destination = req.Destination
	z.Prices = req.Prices
	z.Bidirectional = req.Bidirectional
	if err := h.zones.Update(c.Request.Context(), z); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, z)
}

func (h *AdminHandler) DeactivateZone(c *gin.Context) {
	if err := h.zones.Deactivate(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ok": true})
}

func (h *AdminHandler) ListZones(c *gin.Context) {
	zones, err := h.zones.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"zones": zones})
}
