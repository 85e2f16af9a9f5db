package build

import (
	"errors"
	"fmt"

	"github.com/yungbote/sessiongraph/internal/domain"
)

// ErrMissingRequiredField reports a raw event without its mandatory item_id.
// Upstream validation should make this unreachable; it is surfaced rather
// than skipped so no partial graph is built from bad input.
var ErrMissingRequiredField = errors.New("missing required field")

// EdgeKey is an ordered (source, destination) pair of dense item ids.
type EdgeKey struct {
	Src int64
	Dst int64
}

// TransitionEdge accumulates one ordered item transition: how often it was
// observed and under which sessions (stringified, deduplicated).
type TransitionEdge struct {
	Weight   int64
	Sessions map[string]struct{}
}

// ContainmentKey is a (session, item) membership pair of dense ids.
type ContainmentKey struct {
	Session int64
	Item    int64
}

// Aggregate holds the fully aggregated graph for one pipeline run.
type Aggregate struct {
	Transitions map[EdgeKey]*TransitionEdge
	Contains    map[ContainmentKey]struct{}
}

// AggregateEdges folds raw events into transition and containment edges using
// the given identity tables. Accumulation is commutative, so input order does
// not affect the result.
func AggregateEdges(events []domain.RawEvent, items, sessions *IdentityTable) (*Aggregate, error) {
	agg := &Aggregate{
		Transitions: make(map[EdgeKey]*TransitionEdge),
		Contains:    make(map[ContainmentKey]struct{}),
	}

	for i, e := range events {
		if e.ItemID.IsZero() {
			return nil, fmt.Errorf("event %d: item_id: %w", i, ErrMissingRequiredField)
		}
		itemID, ok := items.ID(e.ItemID)
		if !ok {
			return nil, fmt.Errorf("event %d: item %q not in identity table", i, e.ItemID)
		}

		if !e.NextItemID.IsZero() {
			nextID, ok := items.ID(e.NextItemID)
			if !ok {
				return nil, fmt.Errorf("event %d: item %q not in identity table", i, e.NextItemID)
			}
			key := EdgeKey{Src: itemID, Dst: nextID}
			edge := agg.Transitions[key]
			if edge == nil {
				edge = &TransitionEdge{Sessions: make(map[string]struct{})}
				agg.Transitions[key] = edge
			}
			edge.Weight++
			if !e.SessionID.IsZero() {
				edge.Sessions[e.SessionID.String()] = struct{}{}
			}
		}

		if !e.SessionID.IsZero() {
			sessionID, ok := sessions.ID(e.SessionID)
			if !ok {
				return nil, fmt.Errorf("event %d: session %q not in identity table", i, e.SessionID)
			}
			agg.Contains[ContainmentKey{Session: sessionID, Item: itemID}] = struct{}{}
		}
	}
	return agg, nil
}
