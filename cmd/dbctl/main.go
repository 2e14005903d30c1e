package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/neil1taylor/demo-3-tier-app/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := cli.NewRootCmd(cli.OpenPostgres, logger).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "  %s[x] %v%s\n", cli.Red, err, cli.Reset)
		stop()
		os.Exit(1)
	}
}
