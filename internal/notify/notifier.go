package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"courtq/internal/config"
	"courtq/internal/dispatch"
	"courtq/internal/logging"
)

const (
	maxRetry    = 3
	taskTimeout = 30 * time.Second
)

// Notifier accepts promotions produced by the dispatcher.
type Notifier interface {
	NotifyHead(ctx context.Context, promotion dispatch.Promotion) error
	Close() error
}

// RedisOpt returns the asynq connection options for the notify section.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: cfg.Notify.RedisAddr}
	if cfg.Notify.RedisAddr == cfg.Store.RedisAddr {
		opt.Password = cfg.Store.RedisPassword
	}
	return opt
}

// New returns an asynq-backed notifier, or a noop when notifications are disabled.
func New(cfg *config.Config, logger *slog.Logger) Notifier {
	if cfg == nil || !cfg.Notify.Enabled {
		return noopNotifier{}
	}
	return NewWithClient(asynq.NewClient(RedisOpt(cfg)), logger)
}

// NewWithClient wraps an existing asynq client. The notifier owns the client.
func NewWithClient(client *asynq.Client, logger *slog.Logger) Notifier {
	return &asynqNotifier{
		client: client,
		logger: logging.NewComponentLogger(logger, "notify"),
	}
}

type asynqNotifier struct {
	client *asynq.Client
	logger *slog.Logger
}

func (n *asynqNotifier) NotifyHead(ctx context.Context, promotion dispatch.Promotion) error {
	task, err := NewHeadTask(promotion)
	if err != nil {
		return err
	}
	payload := payloadFor(promotion)
	info, err := n.client.EnqueueContext(ctx, task,
		asynq.TaskID(payload.TaskID()),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(taskTimeout),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue head notification: %w", err)
	}
	logging.WithContext(ctx, n.logger).Debug("head notification enqueued",
		logging.String("task_id", info.ID),
		logging.String(logging.FieldCourt, payload.Court),
		logging.String(logging.FieldActorID, payload.ActorID),
	)
	return nil
}

func (n *asynqNotifier) Close() error {
	return n.client.Close()
}

type noopNotifier struct{}

func (noopNotifier) NotifyHead(context.Context, dispatch.Promotion) error { return nil }
func (noopNotifier) Close() error                                         { return nil }
