package postgres

import (
	"context"
	"fmt"
)

// Outcome is the severity of a single initialization step.
type Outcome int

const (
	// OutcomeOK means the step did what it set out to do.
	OutcomeOK Outcome = iota
	// OutcomeNotice is informational, such as the users table not existing yet.
	OutcomeNotice
	// OutcomeDegraded means the step failed and the app continues without
	// what it provides (sample rows, the email index).
	OutcomeDegraded
	// OutcomeFatal aborts initialization.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotice:
		return "notice"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StepResult records what happened to one initialization step.
type StepResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// InitReport summarizes Initialize. OK is false only when a step was fatal.
type InitReport struct {
	Steps []StepResult
	OK    bool
}

// Step returns the result for the named step, if it ran.
func (r *InitReport) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Step names.
const (
	StepConnect     = "connect"
	StepProbe       = "probe"
	StepCreateTable = "create_table"
	StepSeed        = "seed"
	StepCreateIndex = "create_index"
)

type stepPolicy int

const (
	// permission aborts, anything else is noted and initialization continues
	policyProbe stepPolicy = iota
	// permission aborts, anything else is a hard error
	policyRequired
	// every failure is tolerated
	policyOptional
)

type schemaStep struct {
	name   string
	stmt   string
	args   []any
	policy stepPolicy
}

// sampleUsers are seeded by Initialize; conflicts on email are ignored.
var sampleUsers = [...][2]string{
	{"John Doe", "john.doe@example.com"},
	{"Jane Smith", "jane.smith@example.com"},
	{"Bob Johnson", "bob.johnson@example.com"},
}

func schemaSteps() []schemaStep {
	seed := "INSERT INTO users (name, email) VALUES "
	args := make([]any, 0, 2*len(sampleUsers))
	for i, u := range sampleUsers {
		if i > 0 {
			seed += ", "
		}
		seed += fmt.Sprintf("($%d, $%d)", 2*i+1, 2*i+2)
		args = append(args, u[0], u[1])
	}
	seed += " ON CONFLICT (email) DO NOTHING"

	return []schemaStep{
		{StepProbe, `SELECT 1 FROM users LIMIT 1`, nil, policyProbe},
		{StepCreateTable, `CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, nil, policyRequired},
		{StepSeed, seed, args, policyOptional},
		{StepCreateIndex, `CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`, nil, policyOptional},
	}
}

// Initialize creates the users table, seeds sample rows and creates the
// email index. It is safe to run repeatedly. Failing to obtain a connection,
// or a permission failure on the probe or table creation, makes the report
// not OK with the fatal step recorded; only a non-permission failure
// creating the table is returned as an error.
func (s *Store) Initialize(ctx context.Context) (*InitReport, error) {
	s.logger.Info("initializing database schema", "connection", s.cfg.ConnectionInfo())
	report := &InitReport{OK: true}

	conn, err := s.Acquire(ctx)
	if err != nil {
		report.OK = false
		report.Steps = append(report.Steps, StepResult{Name: StepConnect, Outcome: OutcomeFatal, Err: err})
		s.logger.Error("schema initialization aborted", "step", StepConnect, "kind", Classify(err).String(), "error", err)
		return report, nil
	}
	defer conn.Close()

	for _, step := range schemaSteps() {
		res, err := conn.ExecContext(ctx, step.stmt, step.args...)
		if err == nil {
			report.Steps = append(report.Steps, StepResult{Name: step.name, Outcome: OutcomeOK})
			if step.name == StepSeed {
				if n, err := res.RowsAffected(); err != nil {
					s.logger.Warn("sample data inserted, row count unavailable", "error", err)
				} else {
					s.logger.Info("sample data inserted", "rows", n)
				}
			} else {
				s.logger.Info("schema step completed", "step", step.name)
			}
			continue
		}

		outcome, tolerated := step.outcome(Classify(err))
		report.Steps = append(report.Steps, StepResult{Name: step.name, Outcome: outcome, Err: err})

		switch {
		case !tolerated:
			s.logger.Error("schema initialization failed", "step", step.name, "error", err)
			report.OK = false
			return report, fmt.Errorf("schema step %s: %w", step.name, err)
		case outcome == OutcomeFatal:
			s.logger.Error("schema initialization aborted", "step", step.name, "error", err)
			report.OK = false
			return report, nil
		case outcome == OutcomeDegraded:
			s.logger.Warn("schema step failed, continuing without it", "step", step.name, "error", err)
		default:
			s.logger.Info("schema step noted", "step", step.name, "error", err)
		}
	}

	s.logger.Info("database initialization completed")
	return report, nil
}

// outcome decides the severity of a failed step. tolerated is false when
// the failure must surface as an error from Initialize.
func (st schemaStep) outcome(kind Kind) (o Outcome, tolerated bool) {
	switch st.policy {
	case policyProbe:
		if kind == PermissionDenied {
			return OutcomeFatal, true
		}
		return OutcomeNotice, true
	case policyRequired:
		if kind == PermissionDenied {
			return OutcomeFatal, true
		}
		return OutcomeFatal, false
	default:
		return OutcomeDegraded, true
	}
}
