package queue

import (
	"context"
	"time"
)

// ForceSchemaVersion rewrites the recorded schema version.
func (s *Store) ForceSchemaVersion(ctx context.Context, version int) error {
	_, err := s.db.ExecContext(ctx, "UPDATE schema_version SET version = ?", version)
	return err
}

// HoldPopLock takes the court's pop lock as a concurrent promoter would and
// returns the release function.
func (s *Store) HoldPopLock(resource Resource) func() {
	lock := s.popLock(resource)
	lock.Lock()
	return lock.Unlock
}

// ClaimPopLockAs writes the resource's pop_locks row as another process
// holding it since acquired would.
func (s *Store) ClaimPopLockAs(ctx context.Context, resource Resource, token string, acquired time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pop_locks (resource, token, acquired_ms) VALUES (?, ?, ?)`,
		string(resource), token, acquired.UnixMilli())
	return err
}
