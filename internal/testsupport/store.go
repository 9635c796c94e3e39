package testsupport

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"courtq/internal/config"
	"courtq/internal/queue"
	"courtq/internal/redisstore"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustEnableScope registers scopeID and switches it on.
func MustEnableScope(t testing.TB, store *queue.Store, scopeID string) {
	t.Helper()

	if err := store.SetScopeEnabled(context.Background(), scopeID, true); err != nil {
		t.Fatalf("store.SetScopeEnabled: %v", err)
	}
}

// MustGrant stores a capability grant for actorID in scopeID.
func MustGrant(t testing.TB, store *queue.Store, grant queue.Grant) {
	t.Helper()

	if err := store.PutGrant(context.Background(), grant); err != nil {
		t.Fatalf("store.PutGrant: %v", err)
	}
}

// StartRedis runs an in-memory Redis server for the duration of the test.
func StartRedis(t testing.TB) *miniredis.Miniredis {
	t.Helper()

	return miniredis.RunT(t)
}

// MustOpenRedisStore opens a redisstore.Store against cfg's Redis and registers cleanup.
func MustOpenRedisStore(t testing.TB, cfg *config.Config) *redisstore.Store {
	t.Helper()

	store, err := redisstore.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("redisstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
