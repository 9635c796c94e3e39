package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"courtq/internal/access"
	"courtq/internal/backend"
	"courtq/internal/config"
	"courtq/internal/dispatch"
	"courtq/internal/engine"
	"courtq/internal/line"
	"courtq/internal/logging"
	"courtq/internal/notify"
	"courtq/internal/preflight"
	"courtq/internal/queue"
	"courtq/internal/webhook"
)

// Daemon serves the webhook and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    backend.Store
	engine   *engine.Engine
	server   *webhook.Server
	notifier notify.Notifier
	worker   *notify.Worker

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Backend      string
	Address      string
	DatabasePath string
	LockFilePath string
	Notify       bool
	Courts       []CourtStatus
}

// CourtStatus summarizes one court.
type CourtStatus struct {
	Court   queue.Resource
	Head    string
	Waiting int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store backend.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}
	resources, err := queue.ParseResources(cfg.Courts.Names)
	if err != nil {
		return nil, fmt.Errorf("courts: %w", err)
	}

	eng := engine.New(store, resources, logger)
	dispatcher := dispatch.New(eng, access.NewGate(store), access.NewSessions(store), logger)
	client := line.NewClient(cfg)
	notifier := notify.New(cfg, logger)

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		engine:   eng,
		notifier: notifier,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	if cfg.Notify.Enabled {
		d.worker = notify.NewWorker(cfg, client, logger)
	}
	d.server = webhook.New(cfg, webhook.Deps{
		Dispatcher: dispatcher,
		Line:       client,
		Notifier:   notifier,
		Rosters:    eng,
	}, logger)
	return d, nil
}

func (d *Daemon) usesLock() bool {
	return d.cfg.Store.Backend != config.BackendRedis
}

// Start acquires the daemon lock, runs preflight checks, and starts serving.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}
	if d.usesLock() {
		ok, err := d.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return errors.New("another courtq daemon instance is already running")
		}
	}

	if failed := preflight.Failed(preflight.RunAll(ctx, d.cfg)); len(failed) > 0 {
		d.releaseLock()
		details := make([]string, 0, len(failed))
		for _, r := range failed {
			details = append(details, r.Name+": "+r.Detail)
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(details, "; "))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.server.Start(d.ctx); err != nil {
		d.abortStart()
		return fmt.Errorf("start webhook server: %w", err)
	}
	if d.worker != nil {
		if err := d.worker.Start(); err != nil {
			d.server.Stop()
			d.abortStart()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("courtq daemon started",
		logging.String("address", d.server.Addr()),
		logging.String("backend", d.cfg.Store.Backend),
		logging.Bool("notify", d.worker != nil),
	)
	return nil
}

func (d *Daemon) abortStart() {
	d.releaseLock()
	d.cancel()
	d.ctx = nil
	d.cancel = nil
}

func (d *Daemon) releaseLock() {
	if !d.usesLock() {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}

// Stop stops serving and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	if d.worker != nil {
		d.worker.Shutdown()
	}
	d.releaseLock()
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("courtq daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.notifier != nil {
		errs = append(errs, d.notifier.Close())
	}
	if d.store != nil {
		errs = append(errs, d.store.Close())
	}
	return errors.Join(errs...)
}

// Addr returns the webhook listener address while running.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	status := Status{
		Running: d.running.Load(),
		PID:     os.Getpid(),
		Backend: d.cfg.Store.Backend,
		Address: d.server.Addr(),
		Notify:  d.worker != nil,
	}
	if d.usesLock() {
		status.DatabasePath = d.cfg.DatabasePath()
		status.LockFilePath = d.lockPath
	}
	rosters, err := d.engine.Rosters(ctx)
	if err != nil {
		return status, fmt.Errorf("read rosters: %w", err)
	}
	for _, roster := range rosters {
		court := CourtStatus{Court: roster.Resource, Waiting: roster.Waiting()}
		if head := roster.Head(); head != nil {
			court.Head = head.DisplayName
		}
		status.Courts = append(status.Courts, court)
	}
	return status, nil
}
