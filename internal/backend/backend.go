// Package backend opens the storage implementation selected by store.backend.
package backend

import (
	"context"
	"fmt"

	"courtq/internal/access"
	"courtq/internal/config"
	"courtq/internal/engine"
	"courtq/internal/queue"
	"courtq/internal/redisstore"
)

// Store is everything the daemon and admin CLI need from persistence.
type Store interface {
	engine.Store
	access.GrantReader
	access.SessionStore
	PutGrant(ctx context.Context, grant queue.Grant) error
	RevokeGrant(ctx context.Context, actorID, scopeID string) (bool, error)
	ListGrants(ctx context.Context, scopeID string) ([]queue.Grant, error)
	Close() error
}

var (
	_ Store = (*queue.Store)(nil)
	_ Store = (*redisstore.Store)(nil)
)

// Open returns the configured backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite, "":
		store, err := queue.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		store, err := redisstore.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
