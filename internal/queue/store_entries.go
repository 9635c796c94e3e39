package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Append inserts an entry at the tail of the resource queue.
func (s *Store) Append(ctx context.Context, resource Resource, actorID, displayName string) (*Entry, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, errors.New("actor id is required")
	}
	now := nowTimestamp()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO queue_entries (resource, actor_id, display_name, created_at) VALUES (?, ?, ?, ?)`,
		string(resource), actorID, displayName, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("append %s on %s: %w", actorID, resource, ErrDuplicateMembership)
		}
		return nil, fmt.Errorf("append entry: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("append entry id: %w", err)
	}
	entry := &Entry{
		Resource:    resource,
		ActorID:     actorID,
		DisplayName: displayName,
		Sequence:    seq,
	}
	if created, err := parseTimeString(now); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

// Ordered returns every entry for the resource, head first.
func (s *Store) Ordered(ctx context.Context, resource Resource) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM queue_entries WHERE resource = ? ORDER BY sequence`,
		string(resource),
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// PopHeadIfUnlocked removes and returns the head of the resource queue. When
// another caller, in this process or another one sharing the database file,
// is already popping the same resource, or the queue is empty, it returns
// (nil, nil) without popping.
func (s *Store) PopHeadIfUnlocked(ctx context.Context, resource Resource) (*Entry, error) {
	lock := s.popLock(resource)
	if !lock.TryLock() {
		return nil, nil
	}
	defer lock.Unlock()

	token, claimed, err := s.claimPopLock(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("pop head of %s: %w", resource, err)
	}
	if !claimed {
		return nil, nil
	}
	defer s.releasePopLock(resource, token)

	var head *Entry
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		head = nil
		row := tx.QueryRowContext(ctx,
			`SELECT `+entryColumns+` FROM queue_entries WHERE resource = ? ORDER BY sequence LIMIT 1`,
			string(resource),
		)
		entry, err := scanEntry(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue_entries WHERE sequence = ?`, entry.Sequence); err != nil {
			return err
		}
		head = entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pop head of %s: %w", resource, err)
	}
	return head, nil
}

// claimPopLock inserts the resource's row in pop_locks. A row older than
// staleLockAfter belongs to a crashed process and is taken over.
func (s *Store) claimPopLock(ctx context.Context, resource Resource) (string, bool, error) {
	token := uuid.NewString()
	now := time.Now()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO pop_locks (resource, token, acquired_ms) VALUES (?, ?, ?)
		 ON CONFLICT(resource) DO UPDATE SET token = excluded.token, acquired_ms = excluded.acquired_ms
		 WHERE pop_locks.acquired_ms < ?`,
		string(resource), token, now.UnixMilli(), now.Add(-staleLockAfter).UnixMilli(),
	)
	if err != nil {
		return "", false, fmt.Errorf("claim pop lock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("claim pop lock rows affected: %w", err)
	}
	return token, affected > 0, nil
}

func (s *Store) releasePopLock(resource Resource, token string) {
	// A cancelled request must still free the row.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = s.execWithRetry(ctx, `DELETE FROM pop_locks WHERE resource = ? AND token = ?`, string(resource), token)
}

// RemoveAt deletes the actor's entry on the resource regardless of position.
func (s *Store) RemoveAt(ctx context.Context, resource Resource, actorID string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM queue_entries WHERE resource = ? AND actor_id = ?`,
		string(resource), actorID,
	)
	if err != nil {
		return false, fmt.Errorf("remove entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove entry rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes every entry of every resource.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear entries rows affected: %w", err)
	}
	return affected, nil
}
