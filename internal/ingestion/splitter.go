package ingestion

import (
	"sort"
	"time"

	"github.com/yungbote/sessiongraph/internal/domain"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
)

// Splitter partitions sessions into train and test sets by time: sessions
// are ordered by their last event and the most recent test_ratio share goes
// to test. The two session sets are disjoint by construction.
type Splitter struct {
	testRatio float64
	log       *logger.Logger
}

func NewSplitter(testRatio float64, log *logger.Logger) *Splitter {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	return &Splitter{testRatio: testRatio, log: log.With("component", "Splitter")}
}

func (sp *Splitter) TemporalSplit(events []domain.ClickEvent) (train, test []domain.ClickEvent) {
	lastSeen := make(map[string]time.Time)
	ids := make(map[string]domain.Identifier)
	for _, e := range events {
		if ts, ok := lastSeen[e.SessionID.Value]; !ok || e.Timestamp.After(ts) {
			lastSeen[e.SessionID.Value] = e.Timestamp
		}
		ids[e.SessionID.Value] = e.SessionID
	}

	ordered := make([]domain.Identifier, 0, len(lastSeen))
	for v := range lastSeen {
		ordered = append(ordered, ids[v])
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := lastSeen[ordered[i].Value], lastSeen[ordered[j].Value]
		if !a.Equal(b) {
			return a.Before(b)
		}
		return ordered[i].Less(ordered[j])
	})

	cutoff := int(float64(len(ordered)) * (1 - sp.testRatio))
	testSessions := make(map[string]struct{}, len(ordered)-cutoff)
	for _, id := range ordered[cutoff:] {
		testSessions[id.Value] = struct{}{}
	}

	for _, e := range events {
		if _, ok := testSessions[e.SessionID.Value]; ok {
			test = append(test, e)
		} else {
			train = append(train, e)
		}
	}

	sp.log.Info("temporal split",
		"sessions", len(ordered),
		"train_sessions", cutoff,
		"test_sessions", len(ordered)-cutoff,
		"train_events", len(train),
		"test_events", len(test),
	)
	return train, test
}
