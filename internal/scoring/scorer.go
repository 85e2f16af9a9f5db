package scoring

import (
	"context"
	"sort"
)

// Reader is the read-only slice of the graph store the scorers depend on.
type Reader interface {
	ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Scorer maps the items of an active session to raw candidate scores.
// Normalization and ranking are shared, strategy-agnostic logic.
type Scorer interface {
	Name() string
	Score(ctx context.Context, sessionItems []int64) (map[int64]float64, error)
}

// Normalize scales scores to sum to one. A zero sum is returned unchanged.
func Normalize(scores map[int64]float64) map[int64]float64 {
	var sum float64
	for _, v := range scores {
		sum += v
	}
	if sum == 0 {
		return scores
	}
	out := make(map[int64]float64, len(scores))
	for k, v := range scores {
		out[k] = v / sum
	}
	return out
}

type Recommendation struct {
	ItemID int64
	Score  float64
}

// Recommend scores, normalizes, drops items already in the session and
// returns the top k candidates by descending score.
func Recommend(ctx context.Context, s Scorer, sessionItems []int64, k int) ([]Recommendation, error) {
	if len(sessionItems) == 0 {
		return nil, nil
	}
	raw, err := s.Score(ctx, sessionItems)
	if err != nil {
		return nil, err
	}
	scores := Normalize(raw)
	for _, item := range sessionItems {
		delete(scores, item)
	}

	out := make([]Recommendation, 0, len(scores))
	for item, score := range scores {
		out = append(out, Recommendation{ItemID: item, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ItemID < out[j].ItemID
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}
