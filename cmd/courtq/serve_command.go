package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"courtq/internal/backend"
	"courtq/internal/daemon"
	"courtq/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(cmdCtx context.Context, ctx *commandContext) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := backend.Open(signalCtx, cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	logDaemonStatus(signalCtx, logger, d)

	<-signalCtx.Done()
	logger.Info("courtq daemon shutting down")
	return nil
}

// logDaemonStatus records the listener, backend, and court occupancy once
// serving has begun.
func logDaemonStatus(ctx context.Context, logger *slog.Logger, d *daemon.Daemon) {
	status, err := d.Status(ctx)
	if err != nil {
		logger.Warn("read daemon status", logging.Error(err))
		return
	}
	attrs := []any{
		logging.Bool("running", status.Running),
		logging.Int("pid", status.PID),
		logging.String("address", status.Address),
		logging.String("backend", status.Backend),
		logging.Bool("notify", status.Notify),
	}
	if status.DatabasePath != "" {
		attrs = append(attrs, logging.String("database", status.DatabasePath))
	}
	for _, court := range status.Courts {
		attrs = append(attrs, logging.Int("waiting_"+string(court.Court), court.Waiting))
	}
	logger.Info("courtq daemon ready", attrs...)
}
