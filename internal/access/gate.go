package access

import (
	"context"
	"fmt"
	"strings"

	"courtq/internal/queue"
)

// Action names an administrative command guarded by a capability grant.
type Action string

const (
	ActionStart Action = "start"
	ActionEnd   Action = "end"
	ActionClear Action = "clear"
)

// ParseAction maps command text such as "START" to an Action.
func ParseAction(value string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(value))) {
	case ActionStart:
		return ActionStart, true
	case ActionEnd:
		return ActionEnd, true
	case ActionClear:
		return ActionClear, true
	default:
		return "", false
	}
}

// GrantReader looks up a capability grant; (nil, nil) means no grant exists.
type GrantReader interface {
	Grant(ctx context.Context, actorID, scopeID string) (*queue.Grant, error)
}

// Gate checks per-actor, per-scope administrative capabilities.
type Gate struct {
	grants GrantReader
}

// NewGate builds a Gate over the grant store.
func NewGate(grants GrantReader) *Gate {
	return &Gate{grants: grants}
}

// Capable reports whether the actor may perform action in the scope. A missing
// grant or an unknown action yields false.
func (g *Gate) Capable(ctx context.Context, actorID, scopeID string, action Action) (bool, error) {
	grant, err := g.grants.Grant(ctx, actorID, scopeID)
	if err != nil {
		return false, fmt.Errorf("load grant: %w", err)
	}
	if grant == nil {
		return false, nil
	}
	switch action {
	case ActionStart:
		return grant.CanStart, nil
	case ActionEnd:
		return grant.CanEnd, nil
	case ActionClear:
		return grant.CanClear, nil
	default:
		return false, nil
	}
}
