package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cargowatch/api/authz"
	"github.com/cargowatch/api/db"
	"github.com/cargowatch/api/internal/config"
	"github.com/cargowatch/api/services"
)

type AuthHandler struct {
	Supabase *services.SupabaseAuthService
	Users    *services.UserService
}

func NewAuthHandler(supabase *services.SupabaseAuthService, users *services.UserService) *AuthHandler {
	return &AuthHandler{Supabase: supabase, Users: users}
}

// Register handles POST /auth/register. Creates the Supabase auth account
// and the profile row with approval_status=pending.
func (h *AuthHandler) Register(c *gin.Context) {
	var req db.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.Users.Register(c.Request.Context(), &req)
	if err != nil {
		respondRegistrationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func respondRegistrationError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
	case errors.Is(err, services.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Registration is temporarily unavailable"})
	default:
		log.Printf("Registration failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
	}
}

// Login handles POST /auth/login via the Supabase password grant
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	session, err := h.Supabase.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUpstreamUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sign-in is temporarily unavailable"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	user, err := h.Users.GetByAuthID(c.Request.Context(), session.User.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No account found for this login"})
			return
		}
		log.Printf("Failed to load user after login: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sign-in is temporarily unavailable"})
		return
	}

	if err := h.Users.RecordLogin(c.Request.Context(), user.ID); err != nil {
		log.Printf("Failed to record login for user %s: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
	})
}

// Logout handles POST /auth/logout, revoking the Supabase session
func (h *AuthHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	token, err := h.Supabase.ExtractTokenFromHeader(authHeader)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if err := h.Supabase.SignOut(c.Request.Context(), token); err != nil {
		log.Printf("Failed to revoke session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Callback handles GET /auth/callback?code=...&next=... — the redirect
// target for Supabase email-verification and OAuth flows. It always
// answers with a redirect, never an error page.
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	next := c.Query("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/dashboard"
	}
	base := config.App.PublicURL

	if code == "" {
		c.Redirect(http.StatusFound, base+"/login?error=auth_error")
		return
	}

	session, err := h.Supabase.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		log.Printf("Auth code exchange failed: %v", err)
		c.Redirect(http.StatusFound, base+"/login?error=auth_error")
		return
	}

	// Persist the verification flag best-effort: the redirect decision
	// below re-reads current state and must not be blocked by this write.
	if session.User.EmailConfirmedAt != nil {
		if err := h.Users.MarkEmailVerified(c.Request.Context(), session.User.ID); err != nil {
			log.Printf("Failed to persist email verification for %s: %v", session.User.ID, err)
		}
	}

	user, err := h.Users.GetByAuthID(c.Request.Context(), session.User.ID)
	if err != nil {
		// State unreadable: land on the pending-approval page, which
		// re-checks status client-side.
		log.Printf("Failed to load user after callback: %v", err)
		c.Redirect(http.StatusFound, base+"/pending-approval")
		return
	}

	decision := authz.Evaluate(user)
	if decision == authz.DecisionApprovedActive {
		c.Redirect(http.StatusFound, base+next)
		return
	}
	c.Redirect(http.StatusFound, base+authz.StatusPath(decision))
}

// Me handles GET /auth/me, returning the decision-relevant user fields
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := authz.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ApprovalStatus handles GET /auth/approval-status for the status pages
func (h *AuthHandler) ApprovalStatus(c *gin.Context) {
	user, ok := authz.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, db.ApprovalStatusResponse{
		ApprovalStatus:  user.ApprovalStatus,
		EmailVerified:   user.EmailVerified,
		AccountStatus:   user.AccountStatus,
		RejectionReason: user.RejectionReason,
		IsApproved:      user.IsApproved(),
	})
}
