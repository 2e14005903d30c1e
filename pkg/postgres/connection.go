package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/neil1taylor/demo-3-tier-app/pkg/config"

	_ "github.com/lib/pq"
)

// Store is the data access layer for the users table. Every operation
// acquires its own connection and releases it before returning.
type Store struct {
	db     *sql.DB
	cfg    config.DatabaseConfig
	logger *slog.Logger
}

// Open prepares a Store for the configured PostgreSQL database. No
// connection is made until the first operation runs.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db, cfg, logger), nil
}

// New wraps an existing *sql.DB.
func New(db *sql.DB, cfg config.DatabaseConfig, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, cfg: cfg, logger: logger.With("component", "postgres")}
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ConnectionInfo returns the credential-free connection summary.
func (s *Store) ConnectionInfo() string {
	return s.cfg.ConnectionInfo()
}

// Acquire obtains a dedicated connection. Callers must Close it. Permission
// and connectivity failures are returned as *Error; anything else is
// returned unchanged.
func (s *Store) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, s.wrapAcquireError(err)
	}
	return conn, nil
}

func (s *Store) wrapAcquireError(err error) error {
	info := s.cfg.ConnectionInfo()
	switch Classify(err) {
	case PermissionDenied:
		s.logger.Error("database permission denied", "connection", info, "error", err)
		return &Error{
			Kind: PermissionDenied,
			Msg:  fmt.Sprintf("permission denied connecting to %s; check the database user and its grants", info),
			Err:  err,
		}
	case ConnectivityFailure:
		s.logger.Error("database unreachable", "connection", info, "error", err)
		return &Error{
			Kind: ConnectivityFailure,
			Msg:  fmt.Sprintf("cannot reach database at %s; check host, port and that the server is running", info),
			Err:  err,
		}
	default:
		return err
	}
}
