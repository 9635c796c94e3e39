package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"courtq/internal/engine"
	"courtq/internal/logging"
	"courtq/internal/queue"
	"courtq/internal/testsupport"
)

func newEngine(t *testing.T) (*engine.Engine, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return engine.New(store, queue.DefaultResources, logging.NewNop()), store
}

func mustEnroll(t *testing.T, eng *engine.Engine, res queue.Resource, actor, name string) engine.Result {
	t.Helper()
	result, err := eng.Enroll(context.Background(), res, actor, name)
	if err != nil {
		t.Fatalf("Enroll(%s, %s) failed: %v", res, actor, err)
	}
	return result
}

func rosterNames(t *testing.T, eng *engine.Engine, res queue.Resource) []string {
	t.Helper()
	roster, err := eng.Roster(context.Background(), res)
	if err != nil {
		t.Fatalf("Roster failed: %v", err)
	}
	out := make([]string, 0, len(roster.Entries))
	for _, e := range roster.Entries {
		out = append(out, e.ActorID)
	}
	return out
}

func assertRoster(t *testing.T, eng *engine.Engine, res queue.Resource, want ...string) {
	t.Helper()
	got := rosterNames(t, eng, res)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("court %s roster = %v, want %v", res, got, want)
	}
}

func TestScenarioEnrollEnrollPromote(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	first := mustEnroll(t, eng, "A", "u1", "Una")
	if first.Outcome != engine.OutcomeEnrolledFirst || first.Ahead != 0 {
		t.Fatalf("unexpected first enroll %+v", first)
	}
	if !strings.Contains(first.Reply, "No one on court, go ahead") || !strings.Contains(first.Reply, "[On court]\n  Una") {
		t.Fatalf("unexpected reply %q", first.Reply)
	}
	assertRoster(t, eng, "A", "u1")

	second := mustEnroll(t, eng, "A", "u2", "Dos")
	if second.Outcome != engine.OutcomeEnrolled || second.Ahead != 0 {
		t.Fatalf("unexpected second enroll %+v", second)
	}
	if !strings.Contains(second.Reply, "0 ahead of you") || !strings.Contains(second.Reply, "[Waiting]\n  1. Dos") {
		t.Fatalf("unexpected reply %q", second.Reply)
	}
	assertRoster(t, eng, "A", "u1", "u2")

	promoted, err := eng.Promote(ctx, "A", "")
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if promoted.Outcome != engine.OutcomePromoted || promoted.Head == nil || promoted.Head.ActorID != "u2" {
		t.Fatalf("unexpected promotion %+v", promoted)
	}
	if promoted.Reply != "Please Dos take court A" {
		t.Fatalf("unexpected reply %q", promoted.Reply)
	}
	assertRoster(t, eng, "A", "u2")
}

func TestEnrollIntoLongerQueueCountsWaitersAhead(t *testing.T) {
	eng, _ := newEngine(t)
	mustEnroll(t, eng, "B", "u1", "Una")
	mustEnroll(t, eng, "B", "u2", "Dos")
	third := mustEnroll(t, eng, "B", "u3", "Tres")
	if third.Outcome != engine.OutcomeEnrolled || third.Ahead != 1 {
		t.Fatalf("unexpected third enroll %+v", third)
	}

	again := mustEnroll(t, eng, "B", "u3", "Tres")
	if again.Outcome != engine.OutcomeAlreadyWaiting || again.Ahead != 1 {
		t.Fatalf("unexpected re-enroll %+v", again)
	}
	head := mustEnroll(t, eng, "B", "u1", "Una")
	if head.Outcome != engine.OutcomeAlreadyOnCourt {
		t.Fatalf("unexpected head re-enroll %+v", head)
	}
	assertRoster(t, eng, "B", "u1", "u2", "u3")
}

func TestFIFOPreservation(t *testing.T) {
	eng, _ := newEngine(t)
	for _, actor := range []string{"u1", "u2", "u3"} {
		mustEnroll(t, eng, "C", actor, strings.ToUpper(actor))
	}
	list, err := eng.List(context.Background(), "C")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := "Court C roster:\n\n[On court]\n  U1\n\n[Waiting]\n  1. U2\n  2. U3"
	if list != want {
		t.Fatalf("listing = %q, want %q", list, want)
	}

	if _, err := eng.Promote(context.Background(), "C", ""); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	assertRoster(t, eng, "C", "u2", "u3")
}

func TestCrossResourceExclusivity(t *testing.T) {
	eng, _ := newEngine(t)
	mustEnroll(t, eng, "A", "u1", "Una")
	mustEnroll(t, eng, "B", "u2", "Dos")

	result := mustEnroll(t, eng, "B", "u1", "Una")
	if result.Outcome != engine.OutcomeEnrolledElsewhere || result.Resource != "A" {
		t.Fatalf("unexpected outcome %+v", result)
	}
	if result.Outcome.Mutated() {
		t.Fatal("rejection must not mutate")
	}
	if !strings.Contains(result.Reply, "court A") || !strings.Contains(result.Reply, "Court A roster") {
		t.Fatalf("unexpected reply %q", result.Reply)
	}
	assertRoster(t, eng, "A", "u1")
	assertRoster(t, eng, "B", "u2")
}

func TestPromoteEdgeCases(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	empty, err := eng.Promote(ctx, "D", "")
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if empty.Outcome != engine.OutcomeNothingToPromote || empty.Reply != "No one has enrolled on court D yet" {
		t.Fatalf("unexpected empty promote %+v", empty)
	}

	mustEnroll(t, eng, "D", "u1", "Una")
	last, err := eng.Promote(ctx, "D", "note")
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if last.Outcome != engine.OutcomeEmptied || last.Reply != "note\nCourt D is now empty" || last.Head != nil {
		t.Fatalf("unexpected last promote %+v", last)
	}

	if _, err := eng.Promote(ctx, "Z", ""); !errors.Is(err, queue.ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
}

func TestSurvivingHeadHasSmallestSequence(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	for _, actor := range []string{"u1", "u2", "u3", "u4"} {
		mustEnroll(t, eng, "A", actor, actor)
	}
	if _, err := eng.Cancel(ctx, "u3", "u3"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := eng.Promote(ctx, "A", ""); err != nil {
			t.Fatalf("Promote failed: %v", err)
		}
		entries, err := store.Ordered(ctx, "A")
		if err != nil {
			t.Fatalf("Ordered failed: %v", err)
		}
		for _, entry := range entries[1:] {
			if entry.Sequence <= entries[0].Sequence {
				t.Fatalf("head %#v is not the smallest sequence in %#v", entries[0], entries)
			}
		}
	}
}

func TestCancelWaiterPreservesOrder(t *testing.T) {
	eng, _ := newEngine(t)
	for _, actor := range []string{"u1", "u2", "u3", "u4"} {
		mustEnroll(t, eng, "A", actor, strings.ToUpper(actor))
	}
	result, err := eng.Cancel(context.Background(), "u3", "U3")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if result.Outcome != engine.OutcomeCancelled || result.Cancelled {
		t.Fatalf("unexpected cancel %+v", result)
	}
	if !strings.HasPrefix(result.Reply, "Cancelled U3's enrollment on court A\n\nCourt A roster") {
		t.Fatalf("unexpected reply %q", result.Reply)
	}
	assertRoster(t, eng, "A", "u1", "u2", "u4")
}

func TestCancelHeadPromotesOnce(t *testing.T) {
	eng, _ := newEngine(t)
	for _, actor := range []string{"u1", "u2", "u3"} {
		mustEnroll(t, eng, "A", actor, strings.ToUpper(actor))
	}
	result, err := eng.Cancel(context.Background(), "u1", "U1")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !result.Cancelled || result.Outcome != engine.OutcomePromoted {
		t.Fatalf("unexpected cancel %+v", result)
	}
	if result.Reply != "Cancelled U1's enrollment on court A\nPlease U3 take court A" {
		t.Fatalf("unexpected reply %q", result.Reply)
	}
	// u1 is removed, then the promotion pops u2 as well and calls u3.
	assertRoster(t, eng, "A", "u3")
}

func TestCancelWithoutEnrollment(t *testing.T) {
	eng, _ := newEngine(t)
	result, err := eng.Cancel(context.Background(), "ghost", "Ghost")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if result.Outcome != engine.OutcomeNotEnrolled || result.Reply != "No enrollment found for you" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPositionVariants(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	mustEnroll(t, eng, "B", "solo", "Solo")
	for _, actor := range []string{"h", "w1", "w2"} {
		mustEnroll(t, eng, "C", actor, actor)
	}

	cases := []struct {
		name   string
		actor  string
		res    queue.Resource
		kind   engine.PositionKind
		legacy int
	}{
		{"head", "h", "C", engine.PositionCurrentHead, 0},
		{"empty queue", "h", "A", engine.PositionEmptyQueue, -1},
		{"first waiter", "w1", "C", engine.PositionWaitingAt, 1},
		{"second waiter", "w2", "C", engine.PositionWaitingAt, 2},
		{"absent from three", "ghost", "C", engine.PositionNotFoundAmong, -3},
		{"absent from one collides with empty", "ghost", "B", engine.PositionNotFoundAmong, -1},
		{"no actor", "", "C", engine.PositionNotFoundAmong, -3},
		{"no actor empty queue", "", "A", engine.PositionNotFoundAmong, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := eng.Position(ctx, tc.actor, tc.res)
			if err != nil {
				t.Fatalf("Position failed: %v", err)
			}
			if pos.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v", pos.Kind, tc.kind)
			}
			if pos.Legacy() != tc.legacy {
				t.Fatalf("legacy = %d, want %d", pos.Legacy(), tc.legacy)
			}
		})
	}
}

func TestStatusAndCheck(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	for _, actor := range []string{"a1", "a2", "a3"} {
		mustEnroll(t, eng, "A", actor, actor)
	}
	mustEnroll(t, eng, "C", "c1", "c1")

	status, err := eng.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != "A. 2 waiting\nB. 0 waiting\nC. 0 waiting\nD. 0 waiting" {
		t.Fatalf("unexpected status %q", status)
	}

	cases := []struct {
		actor   string
		outcome engine.Outcome
		ahead   int
	}{
		{"a1", engine.OutcomeOnCourt, 0},
		{"a3", engine.OutcomeWaiting, 1},
		{"c1", engine.OutcomeOnCourt, 0},
		{"nobody", engine.OutcomeNotEnrolled, 0},
	}
	for _, tc := range cases {
		result, err := eng.Check(ctx, tc.actor)
		if err != nil {
			t.Fatalf("Check(%s) failed: %v", tc.actor, err)
		}
		if result.Outcome != tc.outcome || result.Ahead != tc.ahead {
			t.Fatalf("Check(%s) = %+v", tc.actor, result)
		}
	}
}

func TestClearAll(t *testing.T) {
	eng, _ := newEngine(t)
	mustEnroll(t, eng, "A", "u1", "u1")
	mustEnroll(t, eng, "D", "u2", "u2")
	result, err := eng.ClearAll(context.Background())
	if err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if result.Outcome != engine.OutcomeCleared {
		t.Fatalf("unexpected result %+v", result)
	}
	for _, res := range eng.Resources() {
		assertRoster(t, eng, res)
	}
}

// busyStore reports every court's pop lock as held.
type busyStore struct {
	*queue.Store
}

func (busyStore) PopHeadIfUnlocked(context.Context, queue.Resource) (*queue.Entry, error) {
	return nil, nil
}

func TestPromoteWhileLockedReportsNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	eng := engine.New(busyStore{store}, nil, logging.NewNop())

	mustEnroll(t, eng, "A", "u1", "Una")
	result, err := eng.Promote(context.Background(), "A", "")
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if result.Outcome != engine.OutcomeNothingToPromote {
		t.Fatalf("unexpected outcome %v", result.Outcome)
	}
	assertRoster(t, eng, "A", "u1")
}

type failingStore struct {
	*queue.Store
}

func (failingStore) Append(context.Context, queue.Resource, string, string) (*queue.Entry, error) {
	return nil, errors.New("disk full")
}

func TestEnrollStorageFailureIsReturned(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	eng := engine.New(failingStore{store}, nil, logging.NewNop())

	if _, err := eng.Enroll(context.Background(), "A", "u1", "Una"); err == nil {
		t.Fatal("expected storage error")
	}
	assertRoster(t, eng, "A")
}
