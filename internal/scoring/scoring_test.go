package scoring

import (
	"context"
	"math"
	"testing"
)

// fakeReader serves canned adjacency rows keyed by the $item parameter.
type fakeReader struct {
	rows    map[int64][]map[string]any
	queries int
}

func (f *fakeReader) ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.queries++
	item := params["item"].(int64)
	return f.rows[item], nil
}

func row(item int64, w float64) map[string]any {
	return map[string]any{"item": item, "w": w}
}

func TestNormalize(t *testing.T) {
	out := Normalize(map[int64]float64{1: 3, 2: 1})
	if math.Abs(out[1]-0.75) > 1e-9 || math.Abs(out[2]-0.25) > 1e-9 {
		t.Fatalf("normalize: %v", out)
	}

	zero := map[int64]float64{1: 0, 2: 0}
	if got := Normalize(zero); got[1] != 0 || got[2] != 0 {
		t.Fatalf("zero-sum scores must pass through: %v", got)
	}
}

func TestHSPScoresFromLastItem(t *testing.T) {
	db := &fakeReader{rows: map[int64][]map[string]any{
		7: {row(8, 5), row(9, 1)},
	}}
	scores, err := NewHSP(db).Score(context.Background(), []int64{3, 7})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if db.queries != 1 {
		t.Fatalf("hsp must query only the last item, did %d queries", db.queries)
	}
	if scores[8] != 5 || scores[9] != 1 {
		t.Fatalf("scores: %v", scores)
	}
}

func TestRICAggregatesOverSession(t *testing.T) {
	db := &fakeReader{rows: map[int64][]map[string]any{
		1: {row(5, 2), row(6, 1)},
		2: {row(5, 3)},
	}}
	scores, err := NewRIC(db).Score(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if scores[5] != 5 || scores[6] != 1 {
		t.Fatalf("ric must sum weights across session items: %v", scores)
	}
}

func TestRecommendExcludesSessionItemsAndRanks(t *testing.T) {
	db := &fakeReader{rows: map[int64][]map[string]any{
		1: {row(1, 10), row(2, 6), row(3, 3), row(4, 1)},
	}}
	recs, err := Recommend(context.Background(), NewHSP(db), []int64{1}, 2)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want top 2, got %d", len(recs))
	}
	if recs[0].ItemID != 2 || recs[1].ItemID != 3 {
		t.Fatalf("ranking wrong: %+v", recs)
	}
	for _, r := range recs {
		if r.ItemID == 1 {
			t.Fatalf("session item must not be re-recommended")
		}
	}
	if recs[0].Score <= recs[1].Score {
		t.Fatalf("scores not descending: %+v", recs)
	}
}

func TestRecommendEmptySession(t *testing.T) {
	recs, err := Recommend(context.Background(), NewHSP(&fakeReader{}), nil, 10)
	if err != nil || recs != nil {
		t.Fatalf("empty session: recs=%v err=%v", recs, err)
	}
}
