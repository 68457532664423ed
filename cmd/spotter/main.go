// Command spotter prints the next ISS passes over the machine's public address.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seanssullivan/iss-spotter/internal/config"
	"github.com/seanssullivan/iss-spotter/internal/report"
	"github.com/seanssullivan/iss-spotter/internal/spotter"
)

func main() {
	// Logs go to stderr so stdout holds only the report.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	passes, err := spotter.New(cfg, logger).NextPasses(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "It didn't work!", err)
		os.Exit(1)
	}

	if err := report.Write(os.Stdout, passes, time.Local); err != nil {
		logger.Error("writing report", "error", err)
		os.Exit(1)
	}
}
