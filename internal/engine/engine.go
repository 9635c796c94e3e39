package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"courtq/internal/logging"
	"courtq/internal/queue"
)

// Store is the queue persistence the engine drives.
type Store interface {
	Append(ctx context.Context, resource queue.Resource, actorID, displayName string) (*queue.Entry, error)
	Ordered(ctx context.Context, resource queue.Resource) ([]queue.Entry, error)
	PopHeadIfUnlocked(ctx context.Context, resource queue.Resource) (*queue.Entry, error)
	RemoveAt(ctx context.Context, resource queue.Resource, actorID string) (bool, error)
	Clear(ctx context.Context) (int64, error)
}

// Engine applies queue rules over a fixed set of courts.
type Engine struct {
	store     Store
	resources []queue.Resource
	logger    *slog.Logger
}

// New constructs an Engine. An empty resource list falls back to queue.DefaultResources.
func New(store Store, resources []queue.Resource, logger *slog.Logger) *Engine {
	if len(resources) == 0 {
		resources = queue.DefaultResources
	}
	return &Engine{
		store:     store,
		resources: slices.Clone(resources),
		logger:    logging.NewComponentLogger(logger, "engine"),
	}
}

// Resources returns the configured courts in order.
func (e *Engine) Resources() []queue.Resource {
	return slices.Clone(e.resources)
}

// Has reports whether resource is one of the configured courts.
func (e *Engine) Has(resource queue.Resource) bool {
	return slices.Contains(e.resources, resource)
}

func (e *Engine) requireResource(resource queue.Resource) error {
	if !e.Has(resource) {
		return fmt.Errorf("%w: %q", queue.ErrUnknownResource, resource)
	}
	return nil
}

// Roster returns one court's queue, head first.
func (e *Engine) Roster(ctx context.Context, resource queue.Resource) (Roster, error) {
	if err := e.requireResource(resource); err != nil {
		return Roster{}, err
	}
	entries, err := e.store.Ordered(ctx, resource)
	if err != nil {
		return Roster{}, fmt.Errorf("load court %s: %w", resource, err)
	}
	return Roster{Resource: resource, Entries: entries}, nil
}

// Rosters returns every court's queue in configured order.
func (e *Engine) Rosters(ctx context.Context) ([]Roster, error) {
	rosters := make([]Roster, 0, len(e.resources))
	for _, res := range e.resources {
		roster, err := e.Roster(ctx, res)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, roster)
	}
	return rosters, nil
}

// FindResourceOf scans courts in configured order and returns the one holding
// actorID. ok is false when the actor is not enrolled anywhere.
func (e *Engine) FindResourceOf(ctx context.Context, actorID string) (queue.Resource, bool, error) {
	for _, res := range e.resources {
		entries, err := e.store.Ordered(ctx, res)
		if err != nil {
			return "", false, fmt.Errorf("load court %s: %w", res, err)
		}
		for _, entry := range entries {
			if entry.ActorID == actorID {
				return res, true, nil
			}
		}
	}
	return "", false, nil
}

// Position reports where actorID stands in the court's queue. An empty actor
// id yields PositionNotFoundAmong with the queue length.
func (e *Engine) Position(ctx context.Context, actorID string, resource queue.Resource) (Position, error) {
	roster, err := e.Roster(ctx, resource)
	if err != nil {
		return Position{}, err
	}
	return positionOf(roster.Entries, actorID), nil
}

// Enroll adds the actor to the court unless they are already queued somewhere.
func (e *Engine) Enroll(ctx context.Context, resource queue.Resource, actorID, displayName string) (Result, error) {
	if err := e.requireResource(resource); err != nil {
		return Result{}, err
	}

	current, found, err := e.FindResourceOf(ctx, actorID)
	if err != nil {
		return Result{}, err
	}
	if found && current != resource {
		listing, err := e.List(ctx, current)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Outcome:  OutcomeEnrolledElsewhere,
			Resource: current,
			Reply:    msgEnrolledElsewhere(current, listing),
		}, nil
	}

	roster, err := e.Roster(ctx, resource)
	if err != nil {
		return Result{}, err
	}
	pos := positionOf(roster.Entries, actorID)
	switch pos.Kind {
	case PositionCurrentHead:
		return Result{Outcome: OutcomeAlreadyOnCourt, Resource: resource, Reply: msgAlreadyOnCourt(resource)}, nil
	case PositionWaitingAt:
		return Result{
			Outcome:  OutcomeAlreadyWaiting,
			Resource: resource,
			Ahead:    pos.Ahead(),
			Reply:    msgAlreadyWaiting(resource, pos.Ahead(), renderListing(roster)),
		}, nil
	}

	if _, err := e.store.Append(ctx, resource, actorID, displayName); err != nil {
		if errors.Is(err, queue.ErrDuplicateMembership) {
			return e.reportExisting(ctx, resource, actorID)
		}
		return Result{}, fmt.Errorf("enroll on %s: %w", resource, err)
	}

	after, err := e.Roster(ctx, resource)
	if err != nil {
		return Result{}, err
	}
	listing := renderListing(after)
	e.logger.Info("actor enrolled",
		logging.String(logging.FieldCourt, string(resource)),
		logging.String(logging.FieldActorID, actorID),
		logging.Int("queue_length", len(after.Entries)),
	)

	placed := positionOf(after.Entries, actorID)
	if placed.Kind == PositionCurrentHead {
		return Result{
			Outcome:  OutcomeEnrolledFirst,
			Resource: resource,
			Reply:    msgEnrolledFirst(displayName, resource, listing),
		}, nil
	}
	return Result{
		Outcome:  OutcomeEnrolled,
		Resource: resource,
		Ahead:    placed.Ahead(),
		Reply:    msgEnrolled(displayName, resource, placed.Ahead(), listing),
	}, nil
}

// reportExisting answers an enroll that lost a race against the same actor's
// concurrent enroll.
func (e *Engine) reportExisting(ctx context.Context, resource queue.Resource, actorID string) (Result, error) {
	roster, err := e.Roster(ctx, resource)
	if err != nil {
		return Result{}, err
	}
	pos := positionOf(roster.Entries, actorID)
	if pos.Kind == PositionCurrentHead {
		return Result{Outcome: OutcomeAlreadyOnCourt, Resource: resource, Reply: msgAlreadyOnCourt(resource)}, nil
	}
	return Result{
		Outcome:  OutcomeAlreadyWaiting,
		Resource: resource,
		Ahead:    pos.Ahead(),
		Reply:    msgAlreadyWaiting(resource, pos.Ahead(), renderListing(roster)),
	}, nil
}

// Promote removes the court's head and names the next occupant. prefix, when
// set, is placed on its own line before the announcement. A concurrent
// promote on the same court observes OutcomeNothingToPromote.
func (e *Engine) Promote(ctx context.Context, resource queue.Resource, prefix string) (Result, error) {
	if err := e.requireResource(resource); err != nil {
		return Result{}, err
	}
	popped, err := e.store.PopHeadIfUnlocked(ctx, resource)
	if err != nil {
		return Result{}, fmt.Errorf("promote on %s: %w", resource, err)
	}
	if popped == nil {
		return Result{
			Outcome:  OutcomeNothingToPromote,
			Resource: resource,
			Reply:    withPrefix(prefix, msgNothingToPromote(resource)),
		}, nil
	}

	roster, err := e.Roster(ctx, resource)
	if err != nil {
		return Result{}, err
	}
	head := roster.Head()
	e.logger.Info("court head promoted",
		logging.String(logging.FieldCourt, string(resource)),
		logging.String("removed_actor", popped.ActorID),
		logging.Int("waiting", roster.Waiting()),
	)
	if head == nil {
		return Result{
			Outcome:  OutcomeEmptied,
			Resource: resource,
			Reply:    withPrefix(prefix, msgEmptied(resource)),
		}, nil
	}
	next := *head
	return Result{
		Outcome:  OutcomePromoted,
		Resource: resource,
		Head:     &next,
		Reply:    withPrefix(prefix, msgPromoted(next.DisplayName, resource)),
	}, nil
}

// Cancel removes the actor's entry wherever it is. Cancelling the head runs
// Promote right after the removal, and Promote pops the new head too: with
// [u1 u2 u3], u1 cancelling leaves [u3] and calls u3. This is intended.
func (e *Engine) Cancel(ctx context.Context, actorID, displayName string) (Result, error) {
	resource, found, err := e.FindResourceOf(ctx, actorID)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{Outcome: OutcomeNotEnrolled, Reply: msgNoEnrollment()}, nil
	}

	pos, err := e.Position(ctx, actorID, resource)
	if err != nil {
		return Result{}, err
	}
	removed, err := e.store.RemoveAt(ctx, resource, actorID)
	if err != nil {
		return Result{}, fmt.Errorf("cancel on %s: %w", resource, err)
	}
	if !removed {
		return Result{Outcome: OutcomeNotEnrolled, Reply: msgNoEnrollment()}, nil
	}
	e.logger.Info("enrollment cancelled",
		logging.String(logging.FieldCourt, string(resource)),
		logging.String(logging.FieldActorID, actorID),
		logging.Bool("was_head", pos.Kind == PositionCurrentHead),
	)

	if pos.Kind == PositionCurrentHead {
		result, err := e.Promote(ctx, resource, msgCancelNote(displayName, resource))
		if err != nil {
			return Result{}, err
		}
		result.Cancelled = true
		return result, nil
	}

	listing, err := e.List(ctx, resource)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Outcome:  OutcomeCancelled,
		Resource: resource,
		Reply:    msgCancelled(displayName, resource, listing),
	}, nil
}

// List renders the court's roster.
func (e *Engine) List(ctx context.Context, resource queue.Resource) (string, error) {
	roster, err := e.Roster(ctx, resource)
	if err != nil {
		return "", err
	}
	return renderListing(roster), nil
}

// Status renders the waiting count of every court.
func (e *Engine) Status(ctx context.Context) (string, error) {
	rosters, err := e.Rosters(ctx)
	if err != nil {
		return "", err
	}
	return renderStatus(rosters), nil
}

// Check reports the actor's standing in whichever court holds them.
func (e *Engine) Check(ctx context.Context, actorID string) (Result, error) {
	for _, res := range e.resources {
		roster, err := e.Roster(ctx, res)
		if err != nil {
			return Result{}, err
		}
		pos := positionOf(roster.Entries, actorID)
		switch pos.Kind {
		case PositionCurrentHead:
			return Result{Outcome: OutcomeOnCourt, Resource: res, Reply: msgAlreadyOnCourt(res)}, nil
		case PositionWaitingAt:
			return Result{
				Outcome:  OutcomeWaiting,
				Resource: res,
				Ahead:    pos.Ahead(),
				Reply:    msgCheckWaiting(res, pos.Ahead(), renderListing(roster)),
			}, nil
		}
	}
	return Result{Outcome: OutcomeNotEnrolled, Reply: msgCheckNotEnrolled()}, nil
}

// ClearAll removes every entry on every court.
func (e *Engine) ClearAll(ctx context.Context) (Result, error) {
	removed, err := e.store.Clear(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("clear courts: %w", err)
	}
	e.logger.Info("all courts cleared", logging.Int64("removed", removed))
	return Result{Outcome: OutcomeCleared, Reply: msgCleared()}, nil
}
