package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"courtq/internal/access"
	"courtq/internal/engine"
	"courtq/internal/logging"
	"courtq/internal/queue"
)

// Queue is the engine surface the dispatcher routes to.
type Queue interface {
	Resources() []queue.Resource
	Has(resource queue.Resource) bool
	Enroll(ctx context.Context, resource queue.Resource, actorID, displayName string) (engine.Result, error)
	Promote(ctx context.Context, resource queue.Resource, prefix string) (engine.Result, error)
	Cancel(ctx context.Context, actorID, displayName string) (engine.Result, error)
	List(ctx context.Context, resource queue.Resource) (string, error)
	Status(ctx context.Context) (string, error)
	Check(ctx context.Context, actorID string) (engine.Result, error)
	ClearAll(ctx context.Context) (engine.Result, error)
}

// Gate answers administrative capability checks.
type Gate interface {
	Capable(ctx context.Context, actorID, scopeID string, action access.Action) (bool, error)
}

// Sessions reads and toggles per-scope session state.
type Sessions interface {
	IsRegistered(ctx context.Context, scopeID string) (bool, error)
	IsEnabled(ctx context.Context, scopeID string) (bool, error)
	SetEnabled(ctx context.Context, scopeID string, enabled bool) error
}

// Dispatcher routes events to the gate, session state, and queue engine.
type Dispatcher struct {
	queue    Queue
	gate     Gate
	sessions Sessions
	logger   *slog.Logger
}

// New constructs a Dispatcher.
func New(q Queue, gate Gate, sessions Sessions, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:    q,
		gate:     gate,
		sessions: sessions,
		logger:   logging.NewComponentLogger(logger, "dispatch"),
	}
}

// Dispatch handles one event. A nil response means no reply is sent.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (*Response, error) {
	switch ev.Kind {
	case EventFollow:
		return &Response{Text: greeting(ev.DisplayName)}, nil
	case EventJoin:
		return &Response{Text: introduction()}, nil
	case EventMessage:
		return d.handleMessage(ctx, ev)
	default:
		return nil, fmt.Errorf("unsupported event kind %d", ev.Kind)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, ev Event) (*Response, error) {
	if ev.ScopeID == "" {
		return nil, nil
	}
	cmd := classify(Normalize(ev.Text))
	logger := logging.WithContext(ctx, d.logger)

	if cmd.kind == cmdShowGroupID {
		return &Response{Text: adminReply("Group ID: " + ev.ScopeID)}, nil
	}

	registered, err := d.sessions.IsRegistered(ctx, ev.ScopeID)
	if err != nil {
		return nil, err
	}
	if !registered {
		logger.Debug("ignoring message from unregistered scope")
		return nil, nil
	}

	if cmd.kind == cmdAdmin {
		return d.admin(ctx, ev, cmd.action)
	}

	enabled, err := d.sessions.IsEnabled(ctx, ev.ScopeID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		logger.Debug("ignoring message while scope disabled")
		return nil, nil
	}

	text, promotion, err := d.queueCommand(ctx, ev, cmd)
	if err != nil {
		return nil, err
	}
	return &Response{Text: queueReply(text), Promotion: promotion}, nil
}

func (d *Dispatcher) admin(ctx context.Context, ev Event, action access.Action) (*Response, error) {
	allowed, err := d.gate.Capable(ctx, ev.ActorID, ev.ScopeID, action)
	if err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, d.logger)
	if !allowed {
		logger.Info("admin command denied",
			logging.String("action", string(action)),
			logging.String(logging.FieldActorID, ev.ActorID),
		)
		return &Response{Text: adminReply(replyNoPermission)}, nil
	}
	text, err := d.applyAdmin(ctx, ev.ScopeID, action)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	logger.Info("admin command applied",
		logging.String("action", string(action)),
		logging.String(logging.FieldActorID, ev.ActorID),
	)
	return &Response{Text: adminReply(text)}, nil
}

func (d *Dispatcher) applyAdmin(ctx context.Context, scopeID string, action access.Action) (string, error) {
	switch action {
	case access.ActionStart:
		if err := d.sessions.SetEnabled(ctx, scopeID, true); err != nil {
			return "", err
		}
		return helpText(d.queue.Resources()), nil
	case access.ActionEnd:
		if err := d.sessions.SetEnabled(ctx, scopeID, false); err != nil {
			return "", err
		}
		return replyShutdown, nil
	case access.ActionClear:
		result, err := d.queue.ClearAll(ctx)
		if err != nil {
			return "", err
		}
		return result.Reply, nil
	default:
		return "", fmt.Errorf("unsupported action %q", action)
	}
}

func (d *Dispatcher) queueCommand(ctx context.Context, ev Event, cmd command) (string, *Promotion, error) {
	resource := queue.Resource(cmd.resource)
	switch cmd.kind {
	case cmdEnroll, cmdPromote, cmdList:
		if !d.queue.Has(resource) {
			return replyUnknown, nil, nil
		}
	}

	switch cmd.kind {
	case cmdEnroll:
		result, err := d.queue.Enroll(ctx, resource, ev.ActorID, ev.DisplayName)
		return result.Reply, nil, err
	case cmdPromote:
		result, err := d.queue.Promote(ctx, resource, "")
		if err != nil {
			return "", nil, err
		}
		return result.Reply, d.promotion(ev, result), nil
	case cmdList:
		text, err := d.queue.List(ctx, resource)
		return text, nil, err
	case cmdStatus:
		text, err := d.queue.Status(ctx)
		return text, nil, err
	case cmdCancel:
		result, err := d.queue.Cancel(ctx, ev.ActorID, ev.DisplayName)
		if err != nil {
			return "", nil, err
		}
		return result.Reply, d.promotion(ev, result), nil
	case cmdCheck:
		result, err := d.queue.Check(ctx, ev.ActorID)
		return result.Reply, nil, err
	case cmdShowUserID:
		return ev.ActorID, nil, nil
	default:
		return replyUnknown, nil, nil
	}
}

func (d *Dispatcher) promotion(ev Event, result engine.Result) *Promotion {
	if result.Outcome != engine.OutcomePromoted || result.Head == nil {
		return nil
	}
	return &Promotion{ScopeID: ev.ScopeID, Resource: result.Resource, Head: *result.Head}
}
