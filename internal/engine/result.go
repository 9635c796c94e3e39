package engine

import "courtq/internal/queue"

// Outcome is the decision an engine operation reached.
type Outcome int

const (
	OutcomeEnrolledFirst Outcome = iota + 1
	OutcomeEnrolled
	OutcomeAlreadyOnCourt
	OutcomeAlreadyWaiting
	OutcomeEnrolledElsewhere
	OutcomePromoted
	OutcomeEmptied
	OutcomeNothingToPromote
	OutcomeCancelled
	OutcomeNotEnrolled
	OutcomeOnCourt
	OutcomeWaiting
	OutcomeCleared
)

var outcomeNames = map[Outcome]string{
	OutcomeEnrolledFirst:     "enrolled_first",
	OutcomeEnrolled:          "enrolled",
	OutcomeAlreadyOnCourt:    "already_on_court",
	OutcomeAlreadyWaiting:    "already_waiting",
	OutcomeEnrolledElsewhere: "enrolled_elsewhere",
	OutcomePromoted:          "promoted",
	OutcomeEmptied:           "emptied",
	OutcomeNothingToPromote:  "nothing_to_promote",
	OutcomeCancelled:         "cancelled",
	OutcomeNotEnrolled:       "not_enrolled",
	OutcomeOnCourt:           "on_court",
	OutcomeWaiting:           "waiting",
	OutcomeCleared:           "cleared",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Mutated reports whether the outcome changed queue contents.
func (o Outcome) Mutated() bool {
	switch o {
	case OutcomeEnrolledFirst, OutcomeEnrolled, OutcomePromoted, OutcomeEmptied, OutcomeCancelled, OutcomeCleared:
		return true
	default:
		return false
	}
}

// Result carries an operation's decision alongside its rendered reply.
type Result struct {
	Outcome  Outcome
	Reply    string
	Resource queue.Resource
	// Ahead is the number of waiters in front of the actor for enroll and check outcomes.
	Ahead int
	// Head is the new occupant after OutcomePromoted.
	Head *queue.Entry
	// Cancelled is set when a promotion was triggered by the head cancelling.
	Cancelled bool
}

// Roster is one court's queue, head first.
type Roster struct {
	Resource queue.Resource
	Entries  []queue.Entry
}

// Waiting returns the number of entries behind the head.
func (r Roster) Waiting() int {
	return max(len(r.Entries)-1, 0)
}

// Head returns the current occupant, or nil when the court is empty.
func (r Roster) Head() *queue.Entry {
	if len(r.Entries) == 0 {
		return nil
	}
	return &r.Entries[0]
}
