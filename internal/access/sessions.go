package access

import (
	"context"
	"fmt"

	"courtq/internal/queue"
)

// SessionStore persists per-scope registration and enabled flags.
type SessionStore interface {
	ScopeState(ctx context.Context, scopeID string) (*queue.ScopeState, error)
	SetScopeEnabled(ctx context.Context, scopeID string, enabled bool) error
	RegisterScope(ctx context.Context, scopeID string) (bool, error)
}

// Sessions exposes scope session state to the dispatcher and admin CLI.
type Sessions struct {
	store SessionStore
}

// NewSessions wraps a session store.
func NewSessions(store SessionStore) *Sessions {
	return &Sessions{store: store}
}

// IsRegistered reports whether any record exists for the scope.
func (s *Sessions) IsRegistered(ctx context.Context, scopeID string) (bool, error) {
	state, err := s.store.ScopeState(ctx, scopeID)
	if err != nil {
		return false, fmt.Errorf("load scope state: %w", err)
	}
	return state != nil, nil
}

// IsEnabled reports whether the scope is registered and switched on.
func (s *Sessions) IsEnabled(ctx context.Context, scopeID string) (bool, error) {
	state, err := s.store.ScopeState(ctx, scopeID)
	if err != nil {
		return false, fmt.Errorf("load scope state: %w", err)
	}
	return state != nil && state.Enabled, nil
}

// SetEnabled upserts the scope's enabled flag.
func (s *Sessions) SetEnabled(ctx context.Context, scopeID string, enabled bool) error {
	if err := s.store.SetScopeEnabled(ctx, scopeID, enabled); err != nil {
		return fmt.Errorf("set scope state: %w", err)
	}
	return nil
}

// Register creates a disabled record for the scope. It returns false when the
// scope was already registered.
func (s *Sessions) Register(ctx context.Context, scopeID string) (bool, error) {
	created, err := s.store.RegisterScope(ctx, scopeID)
	if err != nil {
		return false, fmt.Errorf("register scope: %w", err)
	}
	return created, nil
}
