package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Identifier is an externally sourced item or session token. The textual form
// is kept as-is; Numeric records whether it arrived as a JSON number so it
// round-trips in its original shape.
type Identifier struct {
	Value   string
	Numeric bool
}

func NumericID(v string) Identifier { return Identifier{Value: v, Numeric: true} }
func StringID(v string) Identifier  { return Identifier{Value: v} }

func (id Identifier) String() string { return id.Value }
func (id Identifier) IsZero() bool   { return id.Value == "" }

// Less is a total order over identifiers: integral tokens sort before
// non-integral ones, numerically among themselves; everything else compares
// lexicographically. The class split keeps the order transitive when a feed
// mixes the two shapes.
func (id Identifier) Less(other Identifier) bool {
	a, aErr := strconv.ParseInt(id.Value, 10, 64)
	b, bErr := strconv.ParseInt(other.Value, 10, 64)
	aInt, bInt := aErr == nil, bErr == nil
	if aInt != bInt {
		return aInt
	}
	if aInt {
		return a < b
	}
	return id.Value < other.Value
}

func (id *Identifier) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = Identifier{}
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("identifier: %w", err)
		}
		*id = Identifier{Value: s}
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("identifier: invalid token %q", string(b))
	}
	*id = Identifier{Value: string(b), Numeric: true}
	return nil
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.Numeric {
		return []byte(id.Value), nil
	}
	return []byte(strconv.Quote(id.Value)), nil
}

// RawEvent is one (session, item, next-item) record. SessionID and NextItemID
// are optional; ItemID is mandatory.
type RawEvent struct {
	SessionID  Identifier `json:"session_id"`
	ItemID     Identifier `json:"item_id"`
	NextItemID Identifier `json:"next_item_id"`
}

// ClickEvent is one sessionized click, ordered within its session by Position.
type ClickEvent struct {
	SessionID Identifier `json:"session_id"`
	ItemID    Identifier `json:"item_id"`
	Timestamp time.Time  `json:"timestamp"`
	Position  int        `json:"position"`
}
