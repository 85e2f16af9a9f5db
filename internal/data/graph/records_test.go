package graph

import (
	"reflect"
	"testing"

	"github.com/yungbote/sessiongraph/internal/build"
	"github.com/yungbote/sessiongraph/internal/domain"
)

func sampleAggregate(t *testing.T) (*build.IdentityTable, *build.IdentityTable, *build.Aggregate) {
	t.Helper()
	events := []domain.RawEvent{
		{SessionID: domain.NumericID("1"), ItemID: domain.NumericID("10"), NextItemID: domain.NumericID("20")},
		{SessionID: domain.NumericID("1"), ItemID: domain.NumericID("20")},
		{SessionID: domain.NumericID("2"), ItemID: domain.NumericID("10"), NextItemID: domain.NumericID("30")},
	}
	items, sessions := build.AssignIdentities(events)
	agg, err := build.AggregateEdges(events, items, sessions)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return items, sessions, agg
}

func TestNodeRecords(t *testing.T) {
	items, sessions, _ := sampleAggregate(t)

	itemRecords := ItemNodeRecords(items)
	if len(itemRecords) != 3 {
		t.Fatalf("want 3 item records, got %d", len(itemRecords))
	}
	for i, r := range itemRecords {
		if r["item_id"] != int64(i) {
			t.Fatalf("item record %d: %v", i, r)
		}
	}

	sessionRecords := SessionNodeRecords(sessions)
	if len(sessionRecords) != 2 || sessionRecords[1]["session_id"] != int64(1) {
		t.Fatalf("session records: %v", sessionRecords)
	}
}

func TestTransitionRecordsDeterministic(t *testing.T) {
	_, _, agg := sampleAggregate(t)

	records := TransitionRecords(agg)
	if len(records) != 2 {
		t.Fatalf("want 2 transition records, got %d", len(records))
	}
	want := []Record{
		{"src": int64(0), "dst": int64(1), "weight": int64(1), "sessions": []string{"1"}},
		{"src": int64(0), "dst": int64(2), "weight": int64(1), "sessions": []string{"2"}},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("transition records:\n got %v\nwant %v", records, want)
	}
}

func TestContainmentRecordsDeterministic(t *testing.T) {
	_, _, agg := sampleAggregate(t)

	records := ContainmentRecords(agg)
	want := []Record{
		{"session_id": int64(0), "item_id": int64(0)},
		{"session_id": int64(0), "item_id": int64(1)},
		{"session_id": int64(1), "item_id": int64(0)},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("containment records:\n got %v\nwant %v", records, want)
	}
}
