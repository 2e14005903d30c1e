package api

import (
	"log/slog"

	"github.com/neil1taylor/demo-3-tier-app/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter creates and configures the Gin router.
func NewRouter(users *UserHandler, health *HealthHandler, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false

	// Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(middleware.PermissiveCORS))

	// Health check
	r.GET("/health", health.Health)

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// User routes
	for _, path := range []string{"/api/users/", "/api/users"} {
		r.GET(path, users.ListUsers)
		r.POST(path, users.CreateUser)
		r.OPTIONS(path, users.Options)
	}

	return r
}
