package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cargowatch/api/authz"
	"github.com/cargowatch/api/db"
	"github.com/cargowatch/api/services"
)

type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

// UpdateProfile handles PATCH /users/me. Any authenticated user may edit
// their profile, regardless of approval state.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := authz.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req db.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.Service.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
			return
		}
		log.Printf("Failed to update profile for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateNotificationPreferences handles PATCH /users/me/notifications
func (h *UserHandler) UpdateNotificationPreferences(c *gin.Context) {
	user, ok := authz.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req db.UpdateNotificationPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.Service.UpdateNotificationPreferences(c.Request.Context(), user.ID, &req)
	if err != nil {
		log.Printf("Failed to update notification preferences for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateFCMToken handles PUT /users/me/fcm-token for mobile push
func (h *UserHandler) UpdateFCMToken(c *gin.Context) {
	user, ok := authz.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.Service.UpdateFCMToken(c.Request.Context(), user.ID, req.Token); err != nil {
		log.Printf("Failed to update fcm token for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token updated"})
}
