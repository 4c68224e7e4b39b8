package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cargowatch/api/db"
)

func activeUser(role string) *db.User {
	return &db.User{
		ID:             "user-1",
		Role:           role,
		EmailVerified:  true,
		ApprovalStatus: db.ApprovalApproved,
		AccountStatus:  db.AccountActive,
	}
}

// newGuardedRouter mounts handler behind guard, injecting user into the
// context the way RequireAuth would. handlerRan tracks whether the chain
// reached the handler.
func newGuardedRouter(user *db.User, guard gin.HandlerFunc, handlerRan *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	group := r.Group("/")
	if user != nil {
		group.Use(func(c *gin.Context) {
			c.Set("user", user)
			c.Next()
		})
	}
	group.Use(guard)
	group.POST("/guarded", func(c *gin.Context) {
		*handlerRan = true
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireRole_AdminGate(t *testing.T) {
	pendingAdmin := activeUser("admin")
	pendingAdmin.ApprovalStatus = db.ApprovalPending

	suspendedAdmin := activeUser("admin")
	suspendedAdmin.AccountStatus = db.AccountSuspended

	tests := []struct {
		name       string
		user       *db.User
		wantStatus int
		wantBody   string
	}{
		{"no session", nil, http.StatusUnauthorized, "authentication required"},
		{"approved member", activeUser("member"), http.StatusForbidden, "unauthorized"},
		{"approved driver", activeUser("driver"), http.StatusForbidden, "unauthorized"},
		{"pending admin", pendingAdmin, http.StatusForbidden, "pending approval"},
		{"suspended admin", suspendedAdmin, http.StatusForbidden, "not active"},
		{"approved admin", activeUser("admin"), http.StatusOK, `"ok":true`},
	}

	m := NewAuthMiddleware(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerRan := false
			r := newGuardedRouter(tt.user, m.RequireRole("admin"), &handlerRan)

			req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.Equal(t, tt.wantStatus == http.StatusOK, handlerRan,
				"handler must run only when the gate passes")
		})
	}
}

func TestRequireApproved_DoesNotRunHandlerOnDenial(t *testing.T) {
	user := activeUser("member")
	user.ApprovalStatus = db.ApprovalRejected
	user.RejectionReason = "unverifiable carrier"

	m := NewAuthMiddleware(nil, nil)
	handlerRan := false
	r := newGuardedRouter(user, m.RequireApproved(), &handlerRan)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "unverifiable carrier")
	assert.False(t, handlerRan)
}
