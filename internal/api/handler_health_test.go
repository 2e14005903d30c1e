package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/neil1taylor/demo-3-tier-app/pkg/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

func serveHealth(t *testing.T, router *gin.Engine) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal health body %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestHealth_Up(t *testing.T) {
	router, mock, _ := newTestRouter(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	w, resp := serveHealth(t, router)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if resp.Status != "UP" || resp.Database.Status != "UP" || resp.Application.Status != "UP" {
		t.Errorf("unexpected statuses: %+v", resp)
	}
	if resp.Application.Details != "Application is running normally" {
		t.Errorf("unexpected application details: %q", resp.Application.Details)
	}
	if resp.Database.Details != "Database connection and permissions verified" {
		t.Errorf("unexpected database details: %q", resp.Database.Details)
	}
	if resp.Database.Connection != "appuser@db-primary-service:5432/appdb" {
		t.Errorf("unexpected connection: %q", resp.Database.Connection)
	}
	if resp.Version != "1.0.0" || resp.Environment != "production" {
		t.Errorf("unexpected version/environment: %s/%s", resp.Version, resp.Environment)
	}
	if _, err := time.Parse(time.UnixDate, resp.Timestamp); err != nil {
		t.Errorf("timestamp %q is not in UnixDate form: %v", resp.Timestamp, err)
	}
}

func TestHealth_DegradedWhenTableMissing(t *testing.T) {
	router, mock, _ := newTestRouter(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "users" does not exist`})

	w, resp := serveHealth(t, router)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if resp.Status != "DEGRADED" || resp.Database.Status != "DEGRADED" {
		t.Errorf("unexpected statuses: %+v", resp)
	}
	if resp.Application.Status != "UP" {
		t.Errorf("application should stay UP, got %s", resp.Application.Status)
	}
	if resp.Database.Details != `Users table not found: pq: relation "users" does not exist` {
		t.Errorf("unexpected details: %q", resp.Database.Details)
	}
}

func TestHealth_DegradedWhenUnreachable(t *testing.T) {
	router, mock, _ := newTestRouter(t)

	mock.ExpectQuery("SELECT 1").WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	w, resp := serveHealth(t, router)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if resp.Database.Details != "Database connection failed: pq: connection failure" {
		t.Errorf("unexpected details: %q", resp.Database.Details)
	}
}

// stubChecker lets the handler be exercised without a store.
type stubChecker struct {
	report postgres.HealthReport
}

func (s stubChecker) Probe(_ context.Context) postgres.HealthReport { return s.report }
func (s stubChecker) ConnectionInfo() string                        { return "u@h:1/d" }

func TestHealth_FixedClock(t *testing.T) {
	h := NewHealthHandler(stubChecker{report: postgres.HealthReport{
		Status:  postgres.Healthy,
		Details: "ok",
	}}, testAppConfig, discardLogger())
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	r := gin.New()
	r.GET("/health", h.Health)

	w, resp := serveHealth(t, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if resp.Timestamp != "Sun Oct 18 09:30:00 UTC 2026" {
		t.Errorf("unexpected timestamp: %q", resp.Timestamp)
	}
	if resp.Database.Connection != "u@h:1/d" {
		t.Errorf("unexpected connection: %q", resp.Database.Connection)
	}
}
