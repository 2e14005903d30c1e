package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/neil1taylor/demo-3-tier-app/pkg/config"
	"github.com/neil1taylor/demo-3-tier-app/pkg/models"
	"github.com/neil1taylor/demo-3-tier-app/pkg/postgres"

	"github.com/spf13/cobra"
)

// ANSI
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	White  = "\033[97m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
)

// Store is what dbctl needs from the data access layer.
type Store interface {
	Initialize(ctx context.Context) (*postgres.InitReport, error)
	Probe(ctx context.Context) postgres.HealthReport
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	ConnectionInfo() string
	Close() error
}

// Opener builds the store for a command run. Tests swap it for sqlmock.
type Opener func(cfg config.DatabaseConfig, logger *slog.Logger) (Store, error)

// OpenPostgres is the default Opener.
func OpenPostgres(cfg config.DatabaseConfig, logger *slog.Logger) (Store, error) {
	s, err := postgres.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewRootCmd builds the dbctl command tree.
func NewRootCmd(open Opener, logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "dbctl",
		Short:         "Inspect and initialize the users database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	withStore := func(run func(ctx context.Context, s Store, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			s, err := open(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer s.Close()
			return run(cmd.Context(), s, cmd.OutOrStdout(), args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create the users table, seed sample rows and index email",
			Args:  cobra.NoArgs,
			RunE:  withStore(runInit),
		},
		&cobra.Command{
			Use:     "health",
			Aliases: []string{"h"},
			Short:   "Probe the database the way /health does",
			Args:    cobra.NoArgs,
			RunE:    withStore(runHealth),
		},
		&cobra.Command{
			Use:   "users",
			Short: "List users",
			Args:  cobra.NoArgs,
			RunE:  withStore(runUsers),
		},
		&cobra.Command{
			Use:   "create-user <name> <email>",
			Short: "Insert a user directly into the store",
			Args:  cobra.ExactArgs(2),
			RunE:  withStore(runCreateUser),
		},
	)

	return root
}

func runInit(ctx context.Context, s Store, out io.Writer, _ []string) error {
	fmt.Fprintf(out, "  %s%sInitialize%s %s%s%s\n", Bold, White, Reset, Dim, s.ConnectionInfo(), Reset)

	report, err := s.Initialize(ctx)
	if report != nil {
		for _, step := range report.Steps {
			printStep(out, step)
		}
	}
	if err != nil {
		return err
	}
	if !report.OK {
		return fmt.Errorf("initialization aborted")
	}
	fmt.Fprintf(out, "  %s[ok] database ready%s\n", Green, Reset)
	return nil
}

func printStep(out io.Writer, step postgres.StepResult) {
	color, mark := Green, "+"
	switch step.Outcome {
	case postgres.OutcomeNotice:
		color, mark = Cyan, "i"
	case postgres.OutcomeDegraded:
		color, mark = Yellow, "!"
	case postgres.OutcomeFatal:
		color, mark = Red, "x"
	}
	fmt.Fprintf(out, "  %s[%s]%s %-14s %s%s%s", color, mark, Reset, step.Name, color, step.Outcome, Reset)
	if step.Err != nil {
		fmt.Fprintf(out, " %s%v%s", Dim, step.Err, Reset)
	}
	fmt.Fprintln(out)
}

func runHealth(ctx context.Context, s Store, out io.Writer, _ []string) error {
	fmt.Fprintf(out, "  %s%sHealth%s\n", Bold, White, Reset)

	r := s.Probe(ctx)
	if !r.Healthy() {
		fmt.Fprintf(out, "  %s[-]%s %-12s %s%s%s %s\n", Red, Reset, s.ConnectionInfo(), Red, r.Status, Reset, r.Details)
		return fmt.Errorf("database %s", r.Status)
	}
	fmt.Fprintf(out, "  %s[+]%s %-12s %sok%s %d users\n", Green, Reset, s.ConnectionInfo(), Green, Reset, r.Users)
	return nil
}

func runUsers(ctx context.Context, s Store, out io.Writer, _ []string) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s%-6s %-24s %-32s %s%s\n", Dim, "ID", "NAME", "EMAIL", "CREATED", Reset)
	for _, u := range users {
		fmt.Fprintf(out, "  %-6d %-24s %-32s %s%s%s\n", u.ID, u.Name, u.Email, Dim, u.CreatedAt, Reset)
	}
	return nil
}

func runCreateUser(ctx context.Context, s Store, out io.Writer, args []string) error {
	u := models.NewUser(args[0], args[1])
	if !u.IsValid() {
		return fmt.Errorf("invalid user: name and a valid email are required")
	}

	created, err := s.CreateUser(ctx, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %s[ok] created%s %s\n", Green, Reset, created)
	return nil
}
