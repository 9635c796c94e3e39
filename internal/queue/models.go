package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Resource identifies one court. The set of courts is fixed at startup.
type Resource string

// DefaultResources is the court set used when the configuration names none.
var DefaultResources = []Resource{"A", "B", "C", "D"}

var (
	// ErrDuplicateMembership reports an append for an actor already queued on the court.
	ErrDuplicateMembership = errors.New("actor already enrolled on resource")
	// ErrUnknownResource reports a court name outside the configured set.
	ErrUnknownResource = errors.New("unknown resource")
)

// ParseResources validates configured court names. Each name must be a single
// uppercase ASCII letter and appear once.
func ParseResources(names []string) ([]Resource, error) {
	if len(names) == 0 {
		out := make([]Resource, len(DefaultResources))
		copy(out, DefaultResources)
		return out, nil
	}
	seen := make(map[Resource]struct{}, len(names))
	out := make([]Resource, 0, len(names))
	for _, name := range names {
		normalized := strings.ToUpper(strings.TrimSpace(name))
		if len(normalized) != 1 || normalized[0] < 'A' || normalized[0] > 'Z' {
			return nil, fmt.Errorf("%w: %q must be a single letter", ErrUnknownResource, name)
		}
		res := Resource(normalized)
		if _, dup := seen[res]; dup {
			return nil, fmt.Errorf("duplicate resource %q", normalized)
		}
		seen[res] = struct{}{}
		out = append(out, res)
	}
	return out, nil
}

// Entry is one actor's place in a court queue. Entries are never updated in place.
type Entry struct {
	Resource    Resource
	ActorID     string
	DisplayName string
	Sequence    int64
	CreatedAt   time.Time
}

// ScopeState is the registration record of a chat scope.
type ScopeState struct {
	ScopeID   string
	Enabled   bool
	UpdatedAt time.Time
}

// Grant holds the administrative capabilities of one actor within one scope.
type Grant struct {
	ActorID   string
	ScopeID   string
	CanStart  bool
	CanEnd    bool
	CanClear  bool
	UpdatedAt time.Time
}
