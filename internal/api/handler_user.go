package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/neil1taylor/demo-3-tier-app/pkg/middleware"
	"github.com/neil1taylor/demo-3-tier-app/pkg/models"
	"github.com/neil1taylor/demo-3-tier-app/pkg/postgres"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserStore is the data access the user handler needs.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
}

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte, correlationID string) error
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	Store     UserStore
	Publisher EventPublisher
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler. pub may be nil, in which case
// no events are published.
func NewUserHandler(store UserStore, pub EventPublisher, logger *slog.Logger) *UserHandler {
	return &UserHandler{Store: store, Publisher: pub, logger: logger}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error" example:"Invalid email format"`
	Status int    `json:"status" example:"400"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg, Status: status})
}

// ListUsers godoc
// @Summary      List all users
// @Description  Returns all users ordered by id
// @Tags         users
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      500  {object}  ErrorResponse
// @Router       /api/users/ [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Database error while retrieving users", "error", err,
			"correlation_id", middleware.GetCorrelationID(c))
		writeError(c, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	h.logger.InfoContext(ctx, "Retrieved users", "count", len(users))
	c.IndentedJSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary      Create a new user
// @Description  Creates a user from form fields and publishes a user.created event
// @Tags         users
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        name   formData  string  true  "User name"
// @Param        email  formData  string  true  "User email"
// @Success      201    {object}  models.User
// @Failure      400    {object}  ErrorResponse
// @Failure      409    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /api/users/ [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	correlationID := middleware.GetCorrelationID(c)

	name, nameOK := formParam(c, "name")
	email, emailOK := formParam(c, "email")
	if !nameOK || !emailOK || strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		h.logger.WarnContext(ctx, "Validation failed: name and email are required",
			"name_present", nameOK, "email_present", emailOK, "correlation_id", correlationID)
		writeError(c, http.StatusBadRequest, "Name and email are required")
		return
	}

	user := models.NewUser(name, email)
	if !user.IsValid() {
		h.logger.WarnContext(ctx, "Validation failed: invalid email", "email", user.Email, "correlation_id", correlationID)
		writeError(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	created, err := h.Store.CreateUser(ctx, user)
	if err != nil {
		if postgres.IsKind(err, postgres.UniquenessViolation) {
			h.logger.WarnContext(ctx, "User with email already exists", "email", user.Email, "correlation_id", correlationID)
			writeError(c, http.StatusConflict, "User with this email already exists")
			return
		}
		h.logger.ErrorContext(ctx, "Database error while creating user", "error", err, "correlation_id", correlationID)
		writeError(c, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	h.publishCreated(ctx, created, correlationID)

	h.logger.InfoContext(ctx, "User created", "id", created.ID, "email", created.Email, "correlation_id", correlationID)
	c.IndentedJSON(http.StatusCreated, created)
}

// publishCreated emits user.created. Failures are logged only; the user
// already exists at this point.
func (h *UserHandler) publishCreated(ctx context.Context, user models.User, correlationID string) {
	if h.Publisher == nil {
		return
	}

	event := models.UserEvent{
		EventID:       uuid.New().String(),
		CorrelationID: correlationID,
		EventType:     models.EventUserCreated,
		Timestamp:     time.Now().UTC(),
		Data:          user,
	}
	body, err := json.Marshal(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error encoding event", "error", err, "correlation_id", correlationID)
		return
	}
	if err := h.Publisher.Publish(ctx, string(models.EventUserCreated), body, correlationID); err != nil {
		h.logger.ErrorContext(ctx, "Error publishing event", "error", err, "correlation_id", correlationID)
	}
}

// Options answers CORS preflight requests for the users resource.
func (h *UserHandler) Options(c *gin.Context) {
	c.Header("Allow", "GET, POST, OPTIONS")
	c.Status(http.StatusNoContent)
}

// formParam reads a form field, falling back to the query string.
func formParam(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetPostForm(key); ok {
		return v, true
	}
	return c.GetQuery(key)
}
