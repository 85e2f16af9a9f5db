package scoring

import "context"

// RIC aggregates undirected transition weights over every item in the
// session, favoring candidates that co-occur with the session as a whole.
type RIC struct {
	db    Reader
	limit int
}

func NewRIC(db Reader) *RIC {
	return &RIC{db: db, limit: 200}
}

func (m *RIC) Name() string { return "ric" }

const ricQuery = `
MATCH (i:Item {item_id: $item})-[c:NEXT]-(n:Item)
RETURN n.item_id AS item, c.weight AS w
ORDER BY c.weight DESC
LIMIT $limit`

func (m *RIC) Score(ctx context.Context, sessionItems []int64) (map[int64]float64, error) {
	scores := make(map[int64]float64)
	for _, item := range sessionItems {
		rows, err := m.db.ReadQuery(ctx, ricQuery, map[string]any{"item": item, "limit": m.limit})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			candidate, ok := toInt64(row["item"])
			if !ok {
				continue
			}
			if w, ok := toFloat64(row["w"]); ok {
				scores[candidate] += w
			}
		}
	}
	return scores, nil
}
