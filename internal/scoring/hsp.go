package scoring

import "context"

// HSP scores next-item probabilities from the outgoing transition weights of
// the last item in the session.
type HSP struct {
	db    Reader
	limit int
}

func NewHSP(db Reader) *HSP {
	return &HSP{db: db, limit: 200}
}

func (m *HSP) Name() string { return "hsp" }

const hspQuery = `
MATCH (i:Item {item_id: $item})-[r:NEXT]->(n:Item)
RETURN n.item_id AS item, r.weight AS w
ORDER BY r.weight DESC
LIMIT $limit`

func (m *HSP) Score(ctx context.Context, sessionItems []int64) (map[int64]float64, error) {
	if len(sessionItems) == 0 {
		return map[int64]float64{}, nil
	}
	last := sessionItems[len(sessionItems)-1]

	rows, err := m.db.ReadQuery(ctx, hspQuery, map[string]any{"item": last, "limit": m.limit})
	if err != nil {
		return nil, err
	}

	scores := make(map[int64]float64, len(rows))
	for _, row := range rows {
		item, ok := toInt64(row["item"])
		if !ok {
			continue
		}
		if w, ok := toFloat64(row["w"]); ok {
			scores[item] = w
		}
	}
	return scores, nil
}
