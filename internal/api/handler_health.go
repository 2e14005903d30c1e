package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/neil1taylor/demo-3-tier-app/pkg/config"
	"github.com/neil1taylor/demo-3-tier-app/pkg/postgres"

	"github.com/gin-gonic/gin"
)

const (
	statusUp       = "UP"
	statusDegraded = "DEGRADED"
)

// HealthChecker is the store surface the health handler needs.
type HealthChecker interface {
	Probe(ctx context.Context) postgres.HealthReport
	ConnectionInfo() string
}

// HealthHandler reports application and database status.
type HealthHandler struct {
	DB     HealthChecker
	App    config.AppConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db HealthChecker, app config.AppConfig, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{DB: db, App: app, logger: logger, now: time.Now}
}

// ComponentStatus describes the application itself.
type ComponentStatus struct {
	Status  string `json:"status" example:"UP"`
	Details string `json:"details" example:"Application is running normally"`
}

// DatabaseStatus describes the store.
type DatabaseStatus struct {
	Status     string `json:"status" example:"UP"`
	Details    string `json:"details" example:"Database connection and permissions verified"`
	Connection string `json:"connection" example:"appuser@db-primary-service:5432/appdb"`
}

// HealthResponse is the /health document.
type HealthResponse struct {
	Status      string          `json:"status" example:"UP"`
	Timestamp   string          `json:"timestamp"`
	Application ComponentStatus `json:"application"`
	Database    DatabaseStatus  `json:"database"`
	Version     string          `json:"version" example:"1.0.0"`
	Environment string          `json:"environment" example:"production"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports application and database status; 503 when the database is not fully usable
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	report := h.DB.Probe(ctx)

	resp := HealthResponse{
		Status:    statusUp,
		Timestamp: h.now().Format(time.UnixDate),
		Application: ComponentStatus{
			Status:  statusUp,
			Details: "Application is running normally",
		},
		Database: DatabaseStatus{
			Status:     statusUp,
			Details:    report.Details,
			Connection: h.DB.ConnectionInfo(),
		},
		Version:     h.App.Version,
		Environment: h.App.Environment,
	}

	code := http.StatusOK
	if !report.Healthy() {
		resp.Status = statusDegraded
		resp.Database.Status = statusDegraded
		code = http.StatusServiceUnavailable
	}

	h.logger.InfoContext(ctx, "Health check completed", "status", resp.Status, "database", report.Status.String())
	c.JSON(code, resp)
}
