package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargowatch/api/authz"
	"github.com/cargowatch/api/db"
	"github.com/cargowatch/api/services"
)

var incidentTestColumns = []string{
	"id", "reporter_id", "incident_type", "severity_level",
	"cargo_type", "status", "region", "specific_location",
	"latitude", "longitude", "title", "description", "incident_date", "incident_time",
	"has_photos", "has_video", "evidence_count", "estimated_loss",
	"view_count", "comment_count", "share_count",
	"reporter_name", "reporter_company", "reporter_contact",
	"created_at", "updated_at",
}

func incidentRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows(incidentTestColumns)
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(
			id, "user-1", "theft", "high",
			"", "active", "Memphis, TN, USA", "I-40 Pilot Travel Center, Exit 12",
			nil, nil, "Trailer break-in", "Lock cut overnight", now, "",
			false, false, 0, nil,
			0, 0, 0,
			"John Martinez", "Swift Transportation", "john.martinez@example.com",
			now, now,
		)
	}
	return rows
}

func setUser(user *db.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	}
}

func newIncidentTestRouter(t *testing.T, sessionUser *db.User) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pg, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })

	incidentService := services.NewIncidentService(pg, nil, nil)
	commentService := services.NewCommentService(pg)
	evidenceService := services.NewEvidenceService(pg)
	handler := NewIncidentHandler(incidentService, commentService, evidenceService)

	authMiddleware := authz.NewAuthMiddleware(nil, nil)

	r := gin.New()
	r.GET("/incidents", handler.ListIncidents)
	r.GET("/incidents/stats", handler.GetStats)
	r.GET("/incidents/:id", handler.GetIncident)

	approved := r.Group("/")
	if sessionUser != nil {
		approved.Use(setUser(sessionUser))
	}
	approved.Use(authMiddleware.RequireApproved())
	approved.POST("/incidents", handler.CreateIncident)

	return r, mockDB
}

func approvedUser() *db.User {
	return &db.User{
		ID:             "user-1",
		FullName:       "John Martinez",
		Email:          "john.martinez@example.com",
		Company:        "Swift Transportation",
		Role:           "driver",
		EmailVerified:  true,
		ApprovalStatus: db.ApprovalApproved,
		AccountStatus:  db.AccountActive,
	}
}

func TestListIncidents_DegradesToEmptyOnStoreFailure(t *testing.T) {
	r, mockDB := newIncidentTestRouter(t, nil)

	mockDB.ExpectQuery("SELECT (.+) FROM incidents").
		WillReturnError(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/incidents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"incidents":[]`)
	assert.Contains(t, w.Body.String(), `"total":0`)
}

func TestListIncidents_PassesFiltersThrough(t *testing.T) {
	r, mockDB := newIncidentTestRouter(t, nil)

	mockDB.ExpectQuery(`SELECT (.+) FROM incidents WHERE region = \$1 AND severity_level = \$2`).
		WithArgs("Memphis, TN, USA", "critical", 200).
		WillReturnRows(incidentRows("inc-1"))

	req := httptest.NewRequest(http.MethodGet, "/incidents?region=Memphis%2C+TN%2C+USA&severity=critical&type=all", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestGetStats_DegradesToZerosOnStoreFailure(t *testing.T) {
	r, mockDB := newIncidentTestRouter(t, nil)

	mockDB.ExpectQuery("SELECT COUNT").
		WillReturnError(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/incidents/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)
	assert.Contains(t, w.Body.String(), `"critical":0`)
}

func TestGetIncident_NotFound(t *testing.T) {
	r, mockDB := newIncidentTestRouter(t, nil)

	mockDB.ExpectQuery("SELECT (.+) FROM incidents WHERE id").
		WillReturnRows(sqlmock.NewRows(incidentTestColumns))

	req := httptest.NewRequest(http.MethodGet, "/incidents/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetIncident_BumpsViewCount(t *testing.T) {
	r, mockDB := newIncidentTestRouter(t, nil)

	mockDB.ExpectQuery("SELECT (.+) FROM incidents WHERE id").
		WillReturnRows(incidentRows("inc-1"))
	mockDB.ExpectExec("UPDATE incidents SET view_count").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodGet, "/incidents/inc-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateIncident_NoSessionRejected(t *testing.T) {
	r, _ := newIncidentTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/incidents", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateIncident_PendingUserForbidden(t *testing.T) {
	user := approvedUser()
	user.ApprovalStatus = db.ApprovalPending
	r, _ := newIncidentTestRouter(t, user)

	req := httptest.NewRequest(http.MethodPost, "/incidents", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "pending approval")
}

func TestCreateIncident_SuspendedUserForbidden(t *testing.T) {
	user := approvedUser()
	user.AccountStatus = db.AccountSuspended
	r, _ := newIncidentTestRouter(t, user)

	req := httptest.NewRequest(http.MethodPost, "/incidents", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateIncident_ApprovedUserSucceeds(t *testing.T) {
	r, mockDB := newIncidentTestRouter(t, approvedUser())

	mockDB.ExpectQuery("INSERT INTO incidents").
		WillReturnRows(incidentRows("inc-new"))

	body := `{
		"incident_type": "theft",
		"severity_level": "high",
		"title": "Trailer break-in",
		"description": "Lock cut overnight",
		"region": "Memphis, TN, USA",
		"specific_location": "I-40 Pilot Travel Center, Exit 12",
		"incident_date": "2026-08-20T03:00:00Z",
		"latitude": 35.1495,
		"longitude": -90.0489
	}`
	req := httptest.NewRequest(http.MethodPost, "/incidents", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"inc-new"`)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateIncident_MissingFieldsRejected(t *testing.T) {
	r, _ := newIncidentTestRouter(t, approvedUser())

	req := httptest.NewRequest(http.MethodPost, "/incidents", strings.NewReader(`{"title": "only a title"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
