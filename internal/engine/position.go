package engine

import "courtq/internal/queue"

// PositionKind classifies where an actor stands in one court's queue.
type PositionKind int

const (
	// PositionCurrentHead means the actor is on court.
	PositionCurrentHead PositionKind = iota
	// PositionEmptyQueue means the court has no entries.
	PositionEmptyQueue
	// PositionWaitingAt means the actor waits at a 1-based index behind the head.
	PositionWaitingAt
	// PositionNotFoundAmong means the actor is absent from a queue of Count entries.
	PositionNotFoundAmong
)

// Position is the actor's standing in a court queue.
type Position struct {
	Kind PositionKind
	// Index is the 1-based waiting index for PositionWaitingAt.
	Index int
	// Count is the queue length for PositionNotFoundAmong.
	Count int
}

// Ahead returns how many waiting entries stand between a waiter and the court.
// The head is on court and not counted.
func (p Position) Ahead() int {
	if p.Kind != PositionWaitingAt || p.Index < 1 {
		return 0
	}
	return p.Index - 1
}

// Legacy encodes the position as the historical integer: 0 for the head, -1
// for an empty queue, n for a waiter, and -count for an absent actor. An
// absent actor in a one-entry queue therefore also encodes as -1.
func (p Position) Legacy() int {
	switch p.Kind {
	case PositionCurrentHead:
		return 0
	case PositionEmptyQueue:
		return -1
	case PositionWaitingAt:
		return p.Index
	default:
		return -p.Count
	}
}

// positionOf locates actorID in entries ordered head first. An empty actor id
// is treated as "no actor" and always reports the queue length.
func positionOf(entries []queue.Entry, actorID string) Position {
	if actorID == "" {
		return Position{Kind: PositionNotFoundAmong, Count: len(entries)}
	}
	if len(entries) == 0 {
		return Position{Kind: PositionEmptyQueue}
	}
	if entries[0].ActorID == actorID {
		return Position{Kind: PositionCurrentHead}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].ActorID == actorID {
			return Position{Kind: PositionWaitingAt, Index: i}
		}
	}
	return Position{Kind: PositionNotFoundAmong, Count: len(entries)}
}
