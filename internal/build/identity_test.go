package build

import (
	"math/rand"
	"testing"

	"github.com/yungbote/sessiongraph/internal/domain"
)

func event(session, item, next string) domain.RawEvent {
	e := domain.RawEvent{ItemID: domain.NumericID(item)}
	if session != "" {
		e.SessionID = domain.NumericID(session)
	}
	if next != "" {
		e.NextItemID = domain.NumericID(next)
	}
	return e
}

func TestAssignIdentitiesScenario(t *testing.T) {
	events := []domain.RawEvent{
		event("1", "10", "20"),
		event("1", "20", ""),
		event("2", "10", "30"),
	}
	items, sessions := AssignIdentities(events)

	if items.Len() != 3 {
		t.Fatalf("want 3 items, got %d", items.Len())
	}
	for value, want := range map[string]int64{"10": 0, "20": 1, "30": 2} {
		got, ok := items.ID(domain.NumericID(value))
		if !ok || got != want {
			t.Fatalf("item %s: want id %d, got %d (ok=%v)", value, want, got, ok)
		}
	}

	if sessions.Len() != 2 {
		t.Fatalf("want 2 sessions, got %d", sessions.Len())
	}
	for value, want := range map[string]int64{"1": 0, "2": 1} {
		got, ok := sessions.ID(domain.NumericID(value))
		if !ok || got != want {
			t.Fatalf("session %s: want id %d, got %d (ok=%v)", value, want, got, ok)
		}
	}
}

func TestAssignIdentitiesNumericOrder(t *testing.T) {
	events := []domain.RawEvent{
		event("", "2", ""),
		event("", "10", ""),
	}
	items, _ := AssignIdentities(events)
	id2, _ := items.ID(domain.NumericID("2"))
	id10, _ := items.ID(domain.NumericID("10"))
	if id2 != 0 || id10 != 1 {
		t.Fatalf("numeric ordering violated: 2->%d, 10->%d", id2, id10)
	}
}

func TestAssignIdentitiesCountsUnion(t *testing.T) {
	events := []domain.RawEvent{
		event("1", "10", "20"),
		event("2", "20", "10"),
		event("", "30", ""),
	}
	items, sessions := AssignIdentities(events)
	if items.Len() != 3 {
		t.Fatalf("item table must cover item_id union next_item_id: got %d", items.Len())
	}
	if sessions.Len() != 2 {
		t.Fatalf("session table must only hold present session ids: got %d", sessions.Len())
	}
}

func TestAssignIdentitiesOrderIndependent(t *testing.T) {
	events := []domain.RawEvent{
		event("5", "100", "7"),
		event("3", "7", "42"),
		event("9", "42", ""),
		event("5", "7", "100"),
	}
	items, sessions := AssignIdentities(events)

	shuffled := make([]domain.RawEvent, len(events))
	copy(shuffled, events)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		items2, sessions2 := AssignIdentities(shuffled)
		if items2.Len() != items.Len() || sessions2.Len() != sessions.Len() {
			t.Fatalf("table sizes changed under permutation")
		}
		for dense := int64(0); dense < int64(items.Len()); dense++ {
			a, _ := items.Identifier(dense)
			b, _ := items2.Identifier(dense)
			if a.Value != b.Value {
				t.Fatalf("item id %d maps to %s and %s under permutation", dense, a, b)
			}
		}
	}
}

func TestAssignIdentitiesMixedSetDeterministic(t *testing.T) {
	// Integral and non-integral identifiers in one set: the assignment must
	// be a pure function of the set, independent of map iteration order.
	events := []domain.RawEvent{
		event("", "9", ""),
		event("", "10", ""),
		{ItemID: domain.StringID("5a")},
		{ItemID: domain.StringID("abc")},
	}
	first, _ := AssignIdentities(events)

	shuffled := make([]domain.RawEvent, len(events))
	copy(shuffled, events)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 25; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		items, _ := AssignIdentities(shuffled)
		for dense := int64(0); dense < int64(first.Len()); dense++ {
			a, _ := first.Identifier(dense)
			b, _ := items.Identifier(dense)
			if a.Value != b.Value {
				t.Fatalf("same input, different assignment: id %d got %q, first run got %q",
					dense, b.Value, a.Value)
			}
		}
	}

	// Integral tokens rank numerically and ahead of the rest.
	for value, want := range map[string]int64{"9": 0, "10": 1, "5a": 2, "abc": 3} {
		got, ok := first.ID(domain.Identifier{Value: value})
		if !ok || got != want {
			t.Fatalf("item %q: want id %d, got %d (ok=%v)", value, want, got, ok)
		}
	}
}

func TestAssignIdentitiesEmptyInput(t *testing.T) {
	items, sessions := AssignIdentities(nil)
	if items.Len() != 0 || sessions.Len() != 0 {
		t.Fatalf("empty input must yield empty tables")
	}
}

func TestIdentityTableFromMapRoundTrip(t *testing.T) {
	events := []domain.RawEvent{
		event("1", "10", "20"),
		event("2", "30", ""),
	}
	items, _ := AssignIdentities(events)
	rebuilt, err := IdentityTableFromMap(items.ToMap())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuilt.Len() != items.Len() {
		t.Fatalf("rebuilt table size mismatch")
	}
	for value, dense := range items.ToMap() {
		got, ok := rebuilt.ID(domain.Identifier{Value: value})
		if !ok || got != dense {
			t.Fatalf("rebuilt mapping for %s: want %d, got %d", value, dense, got)
		}
	}
}

func TestIdentityTableFromMapRejectsCorruptMapping(t *testing.T) {
	// IDs outside [0, N) or assigned twice mean the lookup index is corrupt;
	// the rebuild must fail instead of panicking.
	cases := map[string]map[string]int64{
		"out of range": {"a": 5},
		"negative":     {"a": -1},
		"duplicate":    {"a": 0, "b": 0},
	}
	for name, m := range cases {
		if _, err := IdentityTableFromMap(m); err == nil {
			t.Fatalf("%s mapping accepted, want error", name)
		}
	}
}
