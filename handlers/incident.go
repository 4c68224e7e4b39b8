package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cargowatch/api/authz"
	"github.com/cargowatch/api/db"
	"github.com/cargowatch/api/services"
)

type IncidentHandler struct {
	incidentService *services.IncidentService
	commentService  *services.CommentService
	evidenceService *services.EvidenceService
}

func NewIncidentHandler(incidentService *services.IncidentService, commentService *services.CommentService, evidenceService *services.EvidenceService) *IncidentHandler {
	return &IncidentHandler{
		incidentService: incidentService,
		commentService:  commentService,
		evidenceService: evidenceService,
	}
}

// ListIncidents handles GET /incidents. Public read path: a store failure
// degrades to an empty feed so the page still renders.
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	filters := db.IncidentFilters{
		Region:   c.Query("region"),
		Severity: c.Query("severity"),
		Type:     c.Query("type"),
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), filters, limit)
	if err != nil {
		log.Printf("Failed to list incidents, serving empty feed: %v", err)
		incidents = []db.Incident{}
	}

	c.JSON(http.StatusOK, gin.H{
		"incidents": incidents,
		"total":     len(incidents),
	})
}

// GetIncident handles GET /incidents/:id
func (h *IncidentHandler) GetIncident(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incident ID is required"})
		return
	}

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Incident not found"})
			return
		}
		log.Printf("Failed to get incident %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch incident"})
		return
	}

	// View counting is best-effort and never fails the read
	if err := h.incidentService.IncrementViewCount(c.Request.Context(), id); err != nil {
		log.Printf("Failed to bump view count for incident %s: %v", id, err)
	}

	c.JSON(http.StatusOK, incident)
}

// CreateIncident handles POST /incidents. Runs behind RequireApproved;
// reporter identity comes from the session user, never the payload.
func (h *IncidentHandler) CreateIncident(c *gin.Context) {
	user, ok := authz.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req db.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	incident, err := h.incidentService.CreateIncident(c.Request.Context(), user, &req)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
			return
		}
		log.Printf("Failed to create incident: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create incident"})
		return
	}

	c.JSON(http.StatusCreated, incident)
}

// GetStats handles GET /incidents/stats. Public read path: degrades to
// zeroed counters when the store is unreachable.
func (h *IncidentHandler) GetStats(c *gin.Context) {
	stats, err := h.incidentService.GetDashboardStats(c.Request.Context())
	if err != nil {
		log.Printf("Failed to compute dashboard stats, serving zeros: %v", err)
		stats = &db.DashboardStats{}
	}
	c.JSON(http.StatusOK, stats)
}

// ListComments handles GET /incidents/:id/comments (public)
func (h *IncidentHandler) ListComments(c *gin.Context) {
	id := c.Param("id")
	comments, err := h.commentService.ListComments(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to list comments for incident %s, serving empty list: %v", id, err)
		comments = []db.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "total": len(comments)})
}

// CreateComment handles POST /incidents/:id/comments behind RequireApproved
func (h *IncidentHandler) CreateComment(c *gin.Context) {
	user, ok := authz.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req db.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), user, c.Param("id"), &req)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Incident not found"})
		default:
			log.Printf("Failed to create comment: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListEvidence handles GET /incidents/:id/evidence (public)
func (h *IncidentHandler) ListEvidence(c *gin.Context) {
	id := c.Param("id")
	items, err := h.evidenceService.ListByIncident(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to list evidence for incident %s, serving empty list: %v", id, err)
		items = []db.Evidence{}
	}
	c.JSON(http.StatusOK, gin.H{"evidence": items, "total": len(items)})
}
