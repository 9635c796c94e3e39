package queue

import (
	"errors"
	"time"
)

const entryColumns = "sequence, resource, actor_id, display_name, created_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		sequence    int64
		resource    string
		actorID     string
		displayName string
		createdRaw  string
	)
	if err := scanner.Scan(&sequence, &resource, &actorID, &displayName, &createdRaw); err != nil {
		return nil, err
	}
	entry := &Entry{
		Resource:    Resource(resource),
		ActorID:     actorID,
		DisplayName: displayName,
		Sequence:    sequence,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
