package access_test

import (
	"context"
	"errors"
	"testing"

	"courtq/internal/access"
	"courtq/internal/queue"
	"courtq/internal/testsupport"
)

func TestGatePermissionIndependence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MustGrant(t, store, queue.Grant{ActorID: "clearer", ScopeID: "G1", CanClear: true})

	gate := access.NewGate(store)
	ctx := context.Background()
	cases := []struct {
		actor  string
		scope  string
		action access.Action
		want   bool
	}{
		{"clearer", "G1", access.ActionClear, true},
		{"clearer", "G1", access.ActionStart, false},
		{"clearer", "G1", access.ActionEnd, false},
		{"clearer", "G2", access.ActionClear, false},
		{"nobody", "G1", access.ActionClear, false},
		{"clearer", "G1", access.Action("delete"), false},
	}
	for _, tc := range cases {
		got, err := gate.Capable(ctx, tc.actor, tc.scope, tc.action)
		if err != nil {
			t.Fatalf("Capable(%s,%s,%s) error: %v", tc.actor, tc.scope, tc.action, err)
		}
		if got != tc.want {
			t.Fatalf("Capable(%s,%s,%s) = %v, want %v", tc.actor, tc.scope, tc.action, got, tc.want)
		}
	}
}

type failingGrants struct{}

func (failingGrants) Grant(context.Context, string, string) (*queue.Grant, error) {
	return nil, errors.New("disk gone")
}

func TestGatePropagatesStorageErrors(t *testing.T) {
	gate := access.NewGate(failingGrants{})
	if _, err := gate.Capable(context.Background(), "a", "g", access.ActionStart); err == nil {
		t.Fatal("expected storage error")
	}
}

func TestParseAction(t *testing.T) {
	if action, ok := access.ParseAction(" Clear "); !ok || action != access.ActionClear {
		t.Fatalf("ParseAction = %q, %v", action, ok)
	}
	if _, ok := access.ParseAction("status"); ok {
		t.Fatal("expected status to be rejected")
	}
}

func TestSessionsDistinguishUnregisteredFromDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sessions := access.NewSessions(store)
	ctx := context.Background()

	registered, err := sessions.IsRegistered(ctx, "G1")
	if err != nil || registered {
		t.Fatalf("IsRegistered = %v, %v", registered, err)
	}
	enabled, err := sessions.IsEnabled(ctx, "G1")
	if err != nil || enabled {
		t.Fatalf("IsEnabled = %v, %v", enabled, err)
	}

	created, err := sessions.Register(ctx, "G1")
	if err != nil || !created {
		t.Fatalf("Register = %v, %v", created, err)
	}
	registered, _ = sessions.IsRegistered(ctx, "G1")
	enabled, _ = sessions.IsEnabled(ctx, "G1")
	if !registered || enabled {
		t.Fatalf("expected registered and disabled, got registered=%v enabled=%v", registered, enabled)
	}

	if err := sessions.SetEnabled(ctx, "G1", true); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	enabled, _ = sessions.IsEnabled(ctx, "G1")
	if !enabled {
		t.Fatal("expected enabled scope")
	}

	if err := sessions.SetEnabled(ctx, "G2", false); err != nil {
		t.Fatalf("SetEnabled upsert failed: %v", err)
	}
	registered, _ = sessions.IsRegistered(ctx, "G2")
	if !registered {
		t.Fatal("expected SetEnabled to create the record")
	}
}
