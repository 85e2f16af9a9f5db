package build

import (
	"fmt"
	"sort"

	"github.com/yungbote/sessiongraph/internal/domain"
)

// IdentityTable is a bijection between raw identifiers and the dense range
// [0, N). IDs are the ranks of the sorted identifier set, so the mapping is a
// pure function of the set.
type IdentityTable struct {
	ids    map[string]int64
	values []domain.Identifier
}

func NewIdentityTable(set map[string]domain.Identifier) *IdentityTable {
	values := make([]domain.Identifier, 0, len(set))
	for _, id := range set {
		values = append(values, id)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Less(values[j]) })

	ids := make(map[string]int64, len(values))
	for i, id := range values {
		ids[id.Value] = int64(i)
	}
	return &IdentityTable{ids: ids, values: values}
}

// IdentityTableFromMap rebuilds a table from an already assigned mapping, as
// read back from a lookup index. The ids must form the dense range [0, N)
// without gaps or duplicates; anything else means the index is corrupt.
func IdentityTableFromMap(m map[string]int64) (*IdentityTable, error) {
	values := make([]domain.Identifier, len(m))
	ids := make(map[string]int64, len(m))
	seen := make([]bool, len(m))
	for v, id := range m {
		if id < 0 || id >= int64(len(m)) {
			return nil, fmt.Errorf("identity table: id %d for %q outside dense range [0,%d)", id, v, len(m))
		}
		if seen[id] {
			return nil, fmt.Errorf("identity table: id %d assigned to %q and %q", id, values[id].Value, v)
		}
		seen[id] = true
		values[id] = domain.Identifier{Value: v}
		ids[v] = id
	}
	return &IdentityTable{ids: ids, values: values}, nil
}

func (t *IdentityTable) Len() int { return len(t.values) }

func (t *IdentityTable) ID(id domain.Identifier) (int64, bool) {
	dense, ok := t.ids[id.Value]
	return dense, ok
}

func (t *IdentityTable) Identifier(dense int64) (domain.Identifier, bool) {
	if dense < 0 || dense >= int64(len(t.values)) {
		return domain.Identifier{}, false
	}
	return t.values[dense], true
}

// ToMap returns identifier value -> dense id, for serialization.
func (t *IdentityTable) ToMap() map[string]int64 {
	out := make(map[string]int64, len(t.ids))
	for v, id := range t.ids {
		out[v] = id
	}
	return out
}

// AssignIdentities builds the item and session tables from raw events. The
// item set is the union of item_id and next_item_id; the session set is every
// present session_id. Empty input yields empty tables.
func AssignIdentities(events []domain.RawEvent) (items, sessions *IdentityTable) {
	itemSet := make(map[string]domain.Identifier)
	sessionSet := make(map[string]domain.Identifier)
	for _, e := range events {
		if !e.ItemID.IsZero() {
			itemSet[e.ItemID.Value] = e.ItemID
		}
		if !e.NextItemID.IsZero() {
			itemSet[e.NextItemID.Value] = e.NextItemID
		}
		if !e.SessionID.IsZero() {
			sessionSet[e.SessionID.Value] = e.SessionID
		}
	}
	return NewIdentityTable(itemSet), NewIdentityTable(sessionSet)
}
