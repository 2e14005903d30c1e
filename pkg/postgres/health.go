package postgres

import (
	"context"
)

// HealthStatus is the three-way result of Probe.
type HealthStatus int

const (
	// Healthy: connected and the users table is readable.
	Healthy HealthStatus = iota
	// Unreachable: no connection, or the connection cannot run SELECT 1.
	Unreachable
	// Degraded: connected, but the users table cannot be read.
	Degraded
)

func (h HealthStatus) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Unreachable:
		return "unreachable"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// HealthReport is the outcome of Probe. Kind tells a missing table apart
// from a permission problem when Status is Degraded.
type HealthReport struct {
	Status  HealthStatus
	Kind    Kind
	Details string
	Users   int64
	Err     error
}

// Healthy reports whether the store is fully usable.
func (r HealthReport) Healthy() bool {
	return r.Status == Healthy
}

// Probe checks that a connection can be acquired, that it answers SELECT 1
// and that the users table can be counted. It never returns an error; all
// failures are folded into the report. The check is bounded by the
// configured connect timeout.
func (s *Store) Probe(ctx context.Context) HealthReport {
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := s.Acquire(ctx)
	if err != nil {
		return s.unhealthy(Unreachable, "Database connection failed: ", err)
	}
	defer conn.Close()

	var one int
	if err := conn.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return s.unhealthy(Unreachable, "Database connection failed: ", err)
	}

	var count int64
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		switch Classify(err) {
		case SchemaAbsent:
			return s.unhealthy(Degraded, "Users table not found: ", err)
		case PermissionDenied:
			return s.unhealthy(Degraded, "Permission denied on users table: ", err)
		default:
			return s.unhealthy(Degraded, "Database error: ", err)
		}
	}

	return HealthReport{
		Status:  Healthy,
		Details: "Database connection and permissions verified",
		Users:   count,
	}
}

func (s *Store) unhealthy(status HealthStatus, prefix string, err error) HealthReport {
	kind := Classify(err)
	s.logger.Warn("database health check failed", "status", status.String(), "kind", kind.String(), "error", err)
	return HealthReport{
		Status:  status,
		Kind:    kind,
		Details: prefix + err.Error(),
		Err:     err,
	}
}
