package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neil1taylor/demo-3-tier-app/internal/api"
	"github.com/neil1taylor/demo-3-tier-app/pkg/config"
	"github.com/neil1taylor/demo-3-tier-app/pkg/postgres"
	"github.com/neil1taylor/demo-3-tier-app/pkg/rabbitmq"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	_ "github.com/neil1taylor/demo-3-tier-app/docs"
)

const shutdownTimeout = 10 * time.Second

// @title           Three-Tier User API
// @version         1.0
// @description     Lists and creates users stored in PostgreSQL and reports application and database health.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
func main() {
	logger, cleanup, err := initLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(logger); err != nil {
		logger.Error("api-service exited with error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Info("Starting api-service", "config", cfg.String())

	store, err := postgres.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	initDatabase(store, cfg.Database, logger)

	var publisher api.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		pub, closeFn := connectPublisher(cfg.RabbitMQ.URL, logger)
		if pub != nil {
			publisher = pub
			defer closeFn()
		}
	} else {
		logger.Info("RABBITMQ_URL not set, event publishing disabled")
	}

	router := api.NewRouter(
		api.NewUserHandler(store, publisher, logger),
		api.NewHealthHandler(store, cfg.App, logger),
		logger,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.API.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("Server exited gracefully")
	return nil
}

// initDatabase runs schema initialization. Failures are logged and the
// server starts anyway so /health can report the problem.
func initDatabase(store *postgres.Store, cfg config.DatabaseConfig, logger *slog.Logger) {
	ctx := context.Background()
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 6*cfg.ConnectTimeout)
		defer cancel()
	}

	report, err := store.Initialize(ctx)
	if err != nil {
		logger.Error("Database initialization failed", "connection", cfg.ConnectionInfo(), "error", err)
		return
	}
	if !report.OK {
		for _, step := range report.Steps {
			if step.Outcome == postgres.OutcomeFatal {
				logger.Error("Database initialization aborted", "step", step.Name,
					"connection", cfg.ConnectionInfo(), "error", step.Err)
			}
		}
		return
	}
	for _, step := range report.Steps {
		if step.Err != nil {
			logger.Warn("Database initialization step did not complete",
				"step", step.Name, "outcome", step.Outcome.String(), "error", step.Err)
		}
	}
}

func connectPublisher(url string, logger *slog.Logger) (*rabbitmq.Publisher, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := rabbitmq.Connect(ctx, url, rabbitmq.DefaultDialOptions, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, event publishing disabled", "error", err)
		return nil, nil
	}
	pub, err := rabbitmq.NewPublisher(conn, logger)
	if err != nil {
		logger.Error("Failed to create publisher, event publishing disabled", "error", err)
		_ = conn.Close()
		return nil, nil
	}

	return pub, func() {
		_ = pub.Close()
		_ = conn.Close()
	}
}

// initLogger sets up slog over the OpenTelemetry stdout log exporter.
func initLogger() (*slog.Logger, func(), error) {
	exporter, err := stdoutlog.New()
	if err != nil {
		return nil, nil, err
	}

	processor := sdklog.NewSimpleProcessor(exporter)
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(processor))
	global.SetLoggerProvider(provider)

	logger := otelslog.NewLogger("api-service")

	cleanup := func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down logger provider: %v", err)
		}
	}

	return logger, cleanup, nil
}
