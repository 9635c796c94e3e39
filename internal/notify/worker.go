package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"courtq/internal/config"
	"courtq/internal/logging"
)

// Pusher delivers a text message outside a reply context.
type Pusher interface {
	Push(ctx context.Context, to, text, retryKey string) error
}

// Worker processes head notification tasks.
type Worker struct {
	server *asynq.Server
	pusher Pusher
	logger *slog.Logger
}

// NewWorker builds a worker against the notify Redis.
func NewWorker(cfg *config.Config, pusher Pusher, logger *slog.Logger) *Worker {
	logger = logging.NewComponentLogger(logger, "notify-worker")
	server := asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: cfg.Notify.Concurrency,
		Logger:      slogAdapter{logger: logger},
		LogLevel:    asynq.WarnLevel,
	})
	return &Worker{server: server, pusher: pusher, logger: logger}
}

// NewHandler returns a worker with no server, for processing tasks directly.
func NewHandler(pusher Pusher, logger *slog.Logger) *Worker {
	return &Worker{pusher: pusher, logger: logging.NewComponentLogger(logger, "notify-worker")}
}

// Mux routes task types to handlers.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotifyHead, w.HandleNotifyHead)
	return mux
}

// Start begins processing in background goroutines.
func (w *Worker) Start() error {
	if w.server == nil {
		return fmt.Errorf("notify worker has no server")
	}
	if err := w.server.Start(w.Mux()); err != nil {
		return fmt.Errorf("start notify worker: %w", err)
	}
	w.logger.Info("notify worker started")
	return nil
}

// Shutdown stops the server and waits for in-flight tasks.
func (w *Worker) Shutdown() {
	if w.server == nil {
		return
	}
	w.server.Shutdown()
	w.logger.Info("notify worker stopped")
}

// HandleNotifyHead pushes the "your turn" message for one promotion.
func (w *Worker) HandleNotifyHead(ctx context.Context, task *asynq.Task) error {
	payload, err := DecodeHeadPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := w.pusher.Push(ctx, payload.ActorID, payload.Message(), payload.RetryKey()); err != nil {
		w.logger.Warn("head notification failed",
			logging.String(logging.FieldCourt, payload.Court),
			logging.String(logging.FieldActorID, payload.ActorID),
			logging.Error(err),
		)
		return err
	}
	w.logger.Info("head notified",
		logging.String(logging.FieldScopeID, payload.ScopeID),
		logging.String(logging.FieldCourt, payload.Court),
		logging.String(logging.FieldActorID, payload.ActorID),
	)
	return nil
}

type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Debug(args ...any) { a.logger.Debug(fmt.Sprint(args...)) }
func (a slogAdapter) Info(args ...any)  { a.logger.Info(fmt.Sprint(args...)) }
func (a slogAdapter) Warn(args ...any)  { a.logger.Warn(fmt.Sprint(args...)) }
func (a slogAdapter) Error(args ...any) { a.logger.Error(fmt.Sprint(args...)) }

// Fatal honors the asynq.Logger contract of exiting the process.
func (a slogAdapter) Fatal(args ...any) {
	a.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
