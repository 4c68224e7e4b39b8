package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cargowatch/api/db"
	"github.com/cargowatch/api/services"
)

// AdminHandler serves the moderation endpoints. All routes sit behind
// RequireRole("admin").
type AdminHandler struct {
	Users *services.UserService
}

func NewAdminHandler(users *services.UserService) *AdminHandler {
	return &AdminHandler{Users: users}
}

// ListPendingUsers handles GET /admin/users/pending
func (h *AdminHandler) ListPendingUsers(c *gin.Context) {
	users, err := h.Users.ListPendingUsers(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list pending users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending users"})
		return
	}
	if users == nil {
		users = []db.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

// ApproveUser handles POST /admin/users/:id/approve
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	user, err := h.Users.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondApprovalError(c, err, "approve")
		return
	}
	c.JSON(http.StatusOK, user)
}

// RejectUser handles POST /admin/users/:id/reject. A rejection reason is
// required so the applicant sees why on the pending-approval page.
func (h *AdminHandler) RejectUser(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.Users.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondApprovalError(c, err, "reject")
		return
	}
	c.JSON(http.StatusOK, user)
}

// SuspendUser handles POST /admin/users/:id/suspend
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	user, err := h.Users.Suspend(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondApprovalError(c, err, "suspend")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ReinstateUser handles POST /admin/users/:id/reinstate
func (h *AdminHandler) ReinstateUser(c *gin.Context) {
	user, err := h.Users.Reinstate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondApprovalError(c, err, "reinstate")
		return
	}
	c.JSON(http.StatusOK, user)
}

func respondApprovalError(c *gin.Context, err error, action string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		log.Printf("Failed to %s user: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
	}
}
