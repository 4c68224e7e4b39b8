package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargowatch/api/internal/config"
	"github.com/cargowatch/api/services"
)

var userTestColumns = []string{
	"id", "auth_id", "full_name", "email",
	"phone_number", "company", "company_role",
	"avatar_url", "bio", "role",
	"mc_number", "dot_number", "badge_number", "department",
	"email_verified", "email_verified_at", "approval_status", "rejection_reason", "account_status",
	"notifications_enabled", "email_alerts_enabled", "fcm_token",
	"terms_accepted_at", "created_at", "updated_at", "last_login_at",
}

func approvedUserRows(authID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userTestColumns).AddRow(
		"user-1", authID, "John Martinez", "john.martinez@example.com",
		"", "Swift Transportation", "",
		"", "", "driver",
		"", "", "", "",
		true, now, "approved", "", "active",
		true, true, "",
		now, now, now, nil,
	)
}

func newAuthTestRouter(t *testing.T, supabaseURL string) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })

	supabase := services.NewSupabaseAuthService(supabaseURL, "anon-key", "jwt-secret")
	users := services.NewUserService(pg, supabase)
	handler := NewAuthHandler(supabase, users)

	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.GET("/auth/callback", handler.Callback)
	return r, mockDB
}

func TestRegister_InvalidBody(t *testing.T) {
	r, _ := newAuthTestRouter(t, "http://supabase.invalid")

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_ShortPasswordRejectedBeforeUpstream(t *testing.T) {
	// Unresolvable Supabase host: validation must fail first, no network call
	r, _ := newAuthTestRouter(t, "http://supabase.invalid")

	body := `{
		"email": "john.martinez@example.com",
		"password": "seven77",
		"confirm_password": "seven77",
		"full_name": "John Martinez",
		"company": "Swift Transportation",
		"terms_accepted": true
	}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password")
}

func TestCallback_MissingCodeRedirectsToLoginError(t *testing.T) {
	config.App.PublicURL = "http://localhost:3000"
	r, _ := newAuthTestRouter(t, "http://supabase.invalid")

	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/login?error=auth_error", w.Header().Get("Location"))
}

func TestCallback_ExchangeFailureRedirectsToLoginError(t *testing.T) {
	config.App.PublicURL = "http://localhost:3000"

	supabase := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_description": "invalid code"}`))
	}))
	defer supabase.Close()

	r, _ := newAuthTestRouter(t, supabase.URL)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=bad-code", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/login?error=auth_error", w.Header().Get("Location"))
}

func TestCallback_ApprovedUserLandsOnNext(t *testing.T) {
	config.App.PublicURL = "http://localhost:3000"

	supabase := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "token",
			"refresh_token": "refresh",
			"expires_in": 3600,
			"user": {"id": "auth-1", "email": "john.martinez@example.com", "email_confirmed_at": "2026-08-01T12:00:00Z"}
		}`))
	}))
	defer supabase.Close()

	r, mockDB := newAuthTestRouter(t, supabase.URL)

	mockDB.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("SELECT (.+) FROM users WHERE auth_id").
		WithArgs("auth-1").
		WillReturnRows(approvedUserRows("auth-1"))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=good-code&next=/map", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/map", w.Header().Get("Location"))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCallback_PendingUserRedirectsToStatusPage(t *testing.T) {
	config.App.PublicURL = "http://localhost:3000"

	supabase := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "token",
			"user": {"id": "auth-2", "email": "new.user@example.com", "email_confirmed_at": "2026-08-01T12:00:00Z"}
		}`))
	}))
	defer supabase.Close()

	r, mockDB := newAuthTestRouter(t, supabase.URL)

	now := time.Now()
	pendingRows := sqlmock.NewRows(userTestColumns).AddRow(
		"user-2", "auth-2", "New User", "new.user@example.com",
		"", "Acme Freight", "",
		"", "", "member",
		"", "", "", "",
		true, now, "pending", "", "active",
		true, true, "",
		now, now, now, nil,
	)
	mockDB.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("SELECT (.+) FROM users WHERE auth_id").
		WithArgs("auth-2").
		WillReturnRows(pendingRows)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=good-code&next=/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/pending-approval", w.Header().Get("Location"))
}

func TestCallback_ExternalNextIsIgnored(t *testing.T) {
	config.App.PublicURL = "http://localhost:3000"
	r, _ := newAuthTestRouter(t, "http://supabase.invalid")

	// No code: the redirect target must stay on our origin either way
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?next=https://evil.example.com", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "http://localhost:3000/"), "got %s", location)
}
