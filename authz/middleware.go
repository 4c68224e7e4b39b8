package authz

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cargowatch/api/db"
	"github.com/cargowatch/api/services"
)

const contextUserKey = "user"

// AuthMiddleware validates Supabase JWTs and loads the matching user row.
// The checks compose in a fixed order: authenticated, then approved, then
// role, mirroring the decision table in Evaluate.
type AuthMiddleware struct {
	Supabase *services.SupabaseAuthService
	Users    *services.UserService
}

func NewAuthMiddleware(supabase *services.SupabaseAuthService, users *services.UserService) *AuthMiddleware {
	return &AuthMiddleware{Supabase: supabase, Users: users}
}

// CurrentUser returns the user loaded by RequireAuth or OptionalAuth
func CurrentUser(c *gin.Context) (*db.User, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*db.User)
	return user, ok
}

// resolveUser validates the bearer token and loads the user row.
// A store failure is never treated as authenticated: it propagates.
func (m *AuthMiddleware) resolveUser(c *gin.Context) (*db.User, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, services.ErrUnauthorized
	}

	token, err := m.Supabase.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return nil, services.ErrUnauthorized
	}

	claims, err := m.Supabase.ValidateToken(token)
	if err != nil {
		return nil, services.ErrUnauthorized
	}

	user, err := m.Users.GetByAuthID(c.Request.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// Valid principal without a profile row: fail closed
			return nil, services.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// RequireAuth rejects requests without a valid session and user row
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolveUser(c)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			} else {
				log.Printf("Auth check failed: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication temporarily unavailable"})
			}
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Set("user_id", user.ID)
		c.Set("user_email", user.Email)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present and continues
// regardless. Public pages use this so they render for everyone.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := m.resolveUser(c); err == nil {
			c.Set(contextUserKey, user)
			c.Set("user_id", user.ID)
			c.Set("user_email", user.Email)
		}
		c.Next()
	}
}

// checkApproved aborts the request unless the context user is approved and
// active, and reports whether the request may proceed. It never advances the
// chain itself so callers can layer further checks before handing off.
func (m *AuthMiddleware) checkApproved(c *gin.Context) bool {
	user, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return false
	}

	decision := Evaluate(user)
	if decision != DecisionApprovedActive {
		payload := gin.H{
			"error":  denialMessage(decision),
			"status": decision,
		}
		if decision == DecisionRejected && user.RejectionReason != "" {
			payload["rejection_reason"] = user.RejectionReason
		}
		c.AbortWithStatusJSON(http.StatusForbidden, payload)
		return false
	}
	return true
}

// RequireApproved allows only approved-active users through. The response
// carries the decision and rejection reason so the client can route to the
// matching status page.
func (m *AuthMiddleware) RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.checkApproved(c) {
			return
		}
		c.Next()
	}
}

// RequireRole allows only users whose role is in the list. Role gating is
// checked after approval; failing it is "unauthorized", distinct from the
// approval-state denials.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		if !m.checkApproved(c) {
			return
		}

		user, _ := CurrentUser(c)
		if !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func denialMessage(d Decision) string {
	switch d {
	case DecisionUnverified:
		return "email not verified"
	case DecisionPendingApproval:
		return "account pending approval"
	case DecisionRejected:
		return "account application rejected"
	case DecisionSuspended:
		return "account is not active"
	default:
		return "access denied"
	}
}
