package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"romuo/internal/modules/catalog"
)

type VehicleHandler struct {
	catalog *catalog.Catalog
}

func NewVehicleHandler(cat *catalog.Catalog) *VehicleHandler {
	return &VehicleHandler{catalog: cat}
}

func (h *VehicleHandler) ListClasses(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"classes": h.catalog.List()})
}

// Suggest returns the classes that fit the passenger count, cheapest
// first; the first entry is the recommendation.
func (h *VehicleHandler) Suggest(c *gin.Context) {
	passengers, err := strconv.Atoi(c.Query("passengers"))
	if err != nil || passengers <= 0 {
		writeError(c, http.StatusBadRequest, "passengers must be a positive integer")
		return
	}
	eligible, err := h.catalog.Suggest(passengers)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"recommended": eligible[0],
		"eligible":    eligible,
	})
}
