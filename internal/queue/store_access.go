package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ScopeState returns the scope record, or (nil, nil) when the scope is unregistered.
func (s *Store) ScopeState(ctx context.Context, scopeID string) (*ScopeState, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT scope_id, enabled, updated_at FROM scope_state WHERE scope_id = ?`, scopeID)
	var (
		state      ScopeState
		enabled    int
		updatedRaw string
	)
	if err := row.Scan(&state.ScopeID, &enabled, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get scope state: %w", err)
	}
	state.Enabled = enabled != 0
	if updated, err := parseTimeString(updatedRaw); err == nil {
		state.UpdatedAt = updated
	}
	return &state, nil
}

// SetScopeEnabled upserts the scope record with the given flag.
func (s *Store) SetScopeEnabled(ctx context.Context, scopeID string, enabled bool) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO scope_state (scope_id, enabled, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(scope_id) DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`,
		scopeID, boolToInt(enabled), nowTimestamp(),
	)
	if err != nil {
		return fmt.Errorf("set scope state: %w", err)
	}
	return nil
}

// RegisterScope creates a disabled scope record. Existing records are left untouched.
func (s *Store) RegisterScope(ctx context.Context, scopeID string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO scope_state (scope_id, enabled, updated_at) VALUES (?, 0, ?)
		 ON CONFLICT(scope_id) DO NOTHING`,
		scopeID, nowTimestamp(),
	)
	if err != nil {
		return false, fmt.Errorf("register scope: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("register scope rows affected: %w", err)
	}
	return affected > 0, nil
}

// Grant returns the actor's capabilities within the scope, or (nil, nil) when none exist.
func (s *Store) Grant(ctx context.Context, actorID, scopeID string) (*Grant, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT actor_id, scope_id, can_start, can_end, can_clear, updated_at
		 FROM capability_grants WHERE actor_id = ? AND scope_id = ?`, actorID, scopeID)
	grant, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grant: %w", err)
	}
	return grant, nil
}

// PutGrant creates or replaces a capability grant.
func (s *Store) PutGrant(ctx context.Context, grant Grant) error {
	if grant.ActorID == "" || grant.ScopeID == "" {
		return errors.New("grant requires actor and scope")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO capability_grants (actor_id, scope_id, can_start, can_end, can_clear, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(actor_id, scope_id) DO UPDATE SET
		   can_start = excluded.can_start,
		   can_end = excluded.can_end,
		   can_clear = excluded.can_clear,
		   updated_at = excluded.updated_at`,
		grant.ActorID, grant.ScopeID,
		boolToInt(grant.CanStart), boolToInt(grant.CanEnd), boolToInt(grant.CanClear),
		nowTimestamp(),
	)
	if err != nil {
		return fmt.Errorf("put grant: %w", err)
	}
	return nil
}

// RevokeGrant deletes the grant record for the actor in the scope.
func (s *Store) RevokeGrant(ctx context.Context, actorID, scopeID string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM capability_grants WHERE actor_id = ? AND scope_id = ?`, actorID, scopeID)
	if err != nil {
		return false, fmt.Errorf("revoke grant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke grant rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListGrants returns every grant in the scope ordered by actor.
func (s *Store) ListGrants(ctx context.Context, scopeID string) ([]Grant, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT actor_id, scope_id, can_start, can_end, can_clear, updated_at
		 FROM capability_grants WHERE scope_id = ? ORDER BY actor_id`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var grants []Grant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, *grant)
	}
	return grants, rows.Err()
}

func scanGrant(scanner interface{ Scan(dest ...any) error }) (*Grant, error) {
	var (
		grant                      Grant
		canStart, canEnd, canClear int
		updatedRaw                 string
	)
	if err := scanner.Scan(&grant.ActorID, &grant.ScopeID, &canStart, &canEnd, &canClear, &updatedRaw); err != nil {
		return nil, err
	}
	grant.CanStart = canStart != 0
	grant.CanEnd = canEnd != 0
	grant.CanClear = canClear != 0
	if updated, err := parseTimeString(updatedRaw); err == nil {
		grant.UpdatedAt = updated
	}
	return &grant, nil
}
