package domain

import (
	"encoding/json"
	"testing"
)

func TestIdentifierJSONRoundTrip(t *testing.T) {
	var e RawEvent
	if err := json.Unmarshal([]byte(`{"session_id":1,"item_id":10,"next_item_id":null}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.SessionID.Value != "1" || !e.SessionID.Numeric {
		t.Fatalf("session id parsed wrong: %+v", e.SessionID)
	}
	if e.ItemID.Value != "10" {
		t.Fatalf("item id parsed wrong: %+v", e.ItemID)
	}
	if !e.NextItemID.IsZero() {
		t.Fatalf("expected zero next item, got %+v", e.NextItemID)
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"session_id":1,"item_id":10,"next_item_id":null}`
	if string(out) != want {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", out, want)
	}
}

func TestIdentifierStringForm(t *testing.T) {
	var e RawEvent
	if err := json.Unmarshal([]byte(`{"session_id":"abc","item_id":"x-1","next_item_id":"x-2"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.SessionID.Numeric {
		t.Fatalf("string id flagged numeric")
	}
	out, _ := json.Marshal(e)
	if string(out) != `{"session_id":"abc","item_id":"x-1","next_item_id":"x-2"}` {
		t.Fatalf("unexpected marshal: %s", out)
	}
}

func TestIdentifierOrdering(t *testing.T) {
	// Integral tokens compare numerically, so "2" sorts before "10".
	if !NumericID("2").Less(NumericID("10")) {
		t.Fatalf("expected 2 < 10 numerically")
	}
	if NumericID("10").Less(NumericID("2")) {
		t.Fatalf("expected 10 > 2 numerically")
	}
	// Non-integral tokens fall back to lexicographic order.
	if !StringID("a").Less(StringID("b")) {
		t.Fatalf("expected a < b")
	}
	if !StringID("10x").Less(StringID("2x")) {
		t.Fatalf("expected lexicographic order for non-integral tokens")
	}
	// Integral tokens always sort before non-integral ones.
	if !NumericID("9").Less(StringID("5a")) {
		t.Fatalf("expected integral 9 before non-integral 5a")
	}
	if StringID("5a").Less(NumericID("10")) {
		t.Fatalf("expected non-integral 5a after integral 10")
	}
}

func TestIdentifierOrderingIsTransitive(t *testing.T) {
	// Mixed integral and non-integral tokens must not form comparison
	// cycles, or sorting would depend on input order.
	tokens := []Identifier{
		NumericID("9"), NumericID("10"), NumericID("2"),
		StringID("5a"), StringID("abc"), StringID(""),
	}
	for _, a := range tokens {
		for _, b := range tokens {
			if a.Value != b.Value && a.Less(b) == b.Less(a) {
				t.Fatalf("order not antisymmetric for %q vs %q", a.Value, b.Value)
			}
			for _, c := range tokens {
				if a.Less(b) && b.Less(c) && !a.Less(c) {
					t.Fatalf("order not transitive: %q < %q < %q but not %q < %q",
						a.Value, b.Value, c.Value, a.Value, c.Value)
				}
			}
		}
	}
}
