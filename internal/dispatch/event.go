package dispatch

import (
	"courtq/internal/queue"
)

// EventKind is the closed set of inbound events the bot reacts to.
type EventKind int

const (
	// EventMessage is a text message posted in a chat scope.
	EventMessage EventKind = iota + 1
	// EventFollow is a user adding the bot as a friend.
	EventFollow
	// EventJoin is the bot being added to a group.
	EventJoin
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventFollow:
		return "follow"
	case EventJoin:
		return "join"
	default:
		return "unknown"
	}
}

// Event is the transport-neutral inbound contract.
type Event struct {
	Kind        EventKind
	ScopeID     string
	ActorID     string
	DisplayName string
	Text        string
}

// Promotion describes a new court head produced while handling an event.
type Promotion struct {
	ScopeID  string
	Resource queue.Resource
	Head     queue.Entry
}

// Response is the single reply for an event.
type Response struct {
	Text      string
	Promotion *Promotion
}
