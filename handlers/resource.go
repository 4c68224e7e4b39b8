package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cargowatch/api/db"
	"github.com/cargowatch/api/services"
)

type ResourceHandler struct {
	Service *services.ResourceService
}

func NewResourceHandler(service *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{Service: service}
}

// ListResources handles GET /resources?category=... (public read path)
func (h *ResourceHandler) ListResources(c *gin.Context) {
	resources, err := h.Service.ListResources(c.Request.Context(), c.Query("category"))
	if err != nil {
		log.Printf("Failed to list resources, serving empty list: %v", err)
		resources = []db.Resource{}
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources, "total": len(resources)})
}
