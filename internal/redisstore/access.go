package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"courtq/internal/queue"
)

// ScopeState returns the scope record, or (nil, nil) when unregistered.
func (s *Store) ScopeState(ctx context.Context, scopeID string) (*queue.ScopeState, error) {
	raw, err := s.client.HGet(ctx, s.scopesKey(), scopeID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scope state: %w", err)
	}
	var payload scopePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode scope state: %w", err)
	}
	return &queue.ScopeState{ScopeID: scopeID, Enabled: payload.Enabled, UpdatedAt: payload.UpdatedAt}, nil
}

// SetScopeEnabled upserts the scope record with the given flag.
func (s *Store) SetScopeEnabled(ctx context.Context, scopeID string, enabled bool) error {
	payload, err := json.Marshal(scopePayload{Enabled: enabled, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode scope state: %w", err)
	}
	if err := s.client.HSet(ctx, s.scopesKey(), scopeID, string(payload)).Err(); err != nil {
		return fmt.Errorf("set scope state: %w", err)
	}
	return nil
}

// RegisterScope creates a disabled scope record unless one exists.
func (s *Store) RegisterScope(ctx context.Context, scopeID string) (bool, error) {
	payload, err := json.Marshal(scopePayload{UpdatedAt: time.Now().UTC()})
	if err != nil {
		return false, fmt.Errorf("encode scope state: %w", err)
	}
	created, err := s.client.HSetNX(ctx, s.scopesKey(), scopeID, string(payload)).Result()
	if err != nil {
		return false, fmt.Errorf("register scope: %w", err)
	}
	return created, nil
}

// Grant returns the actor's capabilities in the scope, or (nil, nil) when none exist.
func (s *Store) Grant(ctx context.Context, actorID, scopeID string) (*queue.Grant, error) {
	raw, err := s.client.HGet(ctx, s.grantsKey(scopeID), actorID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grant: %w", err)
	}
	return decodeGrant(actorID, scopeID, raw)
}

// PutGrant creates or replaces a capability grant.
func (s *Store) PutGrant(ctx context.Context, grant queue.Grant) error {
	if grant.ActorID == "" || grant.ScopeID == "" {
		return errors.New("grant requires actor and scope")
	}
	payload, err := json.Marshal(grantPayload{
		CanStart:  grant.CanStart,
		CanEnd:    grant.CanEnd,
		CanClear:  grant.CanClear,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode grant: %w", err)
	}
	if err := s.client.HSet(ctx, s.grantsKey(grant.ScopeID), grant.ActorID, string(payload)).Err(); err != nil {
		return fmt.Errorf("put grant: %w", err)
	}
	return nil
}

// RevokeGrant deletes the actor's grant in the scope.
func (s *Store) RevokeGrant(ctx context.Context, actorID, scopeID string) (bool, error) {
	removed, err := s.client.HDel(ctx, s.grantsKey(scopeID), actorID).Result()
	if err != nil {
		return false, fmt.Errorf("revoke grant: %w", err)
	}
	return removed > 0, nil
}

// ListGrants returns every grant in the scope ordered by actor.
func (s *Store) ListGrants(ctx context.Context, scopeID string) ([]queue.Grant, error) {
	all, err := s.client.HGetAll(ctx, s.grantsKey(scopeID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	grants := make([]queue.Grant, 0, len(all))
	for actorID, raw := range all {
		grant, err := decodeGrant(actorID, scopeID, raw)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *grant)
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].ActorID < grants[j].ActorID })
	return grants, nil
}

func decodeGrant(actorID, scopeID, raw string) (*queue.Grant, error) {
	var payload grantPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode grant: %w", err)
	}
	return &queue.Grant{
		ActorID:   actorID,
		ScopeID:   scopeID,
		CanStart:  payload.CanStart,
		CanEnd:    payload.CanEnd,
		CanClear:  payload.CanClear,
		UpdatedAt: payload.UpdatedAt,
	}, nil
}
