package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cargowatch/api/db"
	"github.com/cargowatch/api/services"
)

type RegionHandler struct {
	Service *services.RegionService
}

func NewRegionHandler(service *services.RegionService) *RegionHandler {
	return &RegionHandler{Service: service}
}

// ListRegions handles GET /regions. Public read path: degrades to an
// empty list so the map and filter dropdowns still render.
func (h *RegionHandler) ListRegions(c *gin.Context) {
	regions, err := h.Service.ListRegions(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list regions, serving empty list: %v", err)
		regions = []db.Region{}
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions, "total": len(regions)})
}

// Hotspots handles GET /regions/hotspots?limit=n for the dashboard
func (h *RegionHandler) Hotspots(c *gin.Context) {
	limit := 5
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	regions, err := h.Service.TopByIncidentCount(c.Request.Context(), limit)
	if err != nil {
		log.Printf("Failed to list hotspot regions, serving empty list: %v", err)
		regions = []db.Region{}
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}
