package ingestion

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/sessiongraph/internal/domain"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
)

// SessionizerConfig controls raw click filtering. Zero values fall back to
// the defaults the downstream graph was tuned for.
type SessionizerConfig struct {
	MinSessionLength int `yaml:"min_session_length"`
	MinItemFreq      int `yaml:"min_item_freq"`
	ChunkRows        int `yaml:"chunk_rows"`
	MaxRows          int `yaml:"max_rows"`
}

func (c SessionizerConfig) withDefaults() SessionizerConfig {
	if c.MinSessionLength <= 0 {
		c.MinSessionLength = 2
	}
	if c.MinItemFreq <= 0 {
		c.MinItemFreq = 5
	}
	if c.ChunkRows <= 0 {
		c.ChunkRows = 500000
	}
	return c
}

// Sessionizer turns raw click logs into ordered, filtered session events.
type Sessionizer struct {
	cfg SessionizerConfig
	log *logger.Logger
}

func NewSessionizer(cfg SessionizerConfig, log *logger.Logger) *Sessionizer {
	return &Sessionizer{cfg: cfg.withDefaults(), log: log.With("component", "Sessionizer")}
}

// LoadRaw streams a comma-separated click log (session_id, timestamp,
// item_id, category). Rows with missing fields, non-numeric ids or
// unparseable timestamps are dropped, not fatal.
func (s *Sessionizer) LoadRaw(path string) ([]domain.ClickEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sessionizer: open %s: %w", path, err)
	}
	defer f.Close()

	var (
		events  []domain.ClickEvent
		total   int
		dropped int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		total++
		event, ok := parseClickRow(scanner.Text())
		if !ok {
			dropped++
		} else {
			events = append(events, event)
		}
		if total%s.cfg.ChunkRows == 0 {
			s.log.Info("loaded chunk", "rows", total, "kept", len(events))
		}
		if s.cfg.MaxRows > 0 && len(events) >= s.cfg.MaxRows {
			s.log.Warn("row cap reached, stopping early", "max_rows", s.cfg.MaxRows)
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sessionizer: read %s: %w", path, err)
	}

	s.log.Info("raw load complete", "rows", total, "kept", len(events), "dropped", dropped)
	return events, nil
}

func parseClickRow(line string) (domain.ClickEvent, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return domain.ClickEvent{}, false
	}
	sessionID := strings.TrimSpace(parts[0])
	timestamp := strings.TrimSpace(parts[1])
	itemID := strings.TrimSpace(parts[2])
	if !isNumeric(sessionID) || !isNumeric(itemID) {
		return domain.ClickEvent{}, false
	}
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return domain.ClickEvent{}, false
	}
	return domain.ClickEvent{
		SessionID: domain.NumericID(sessionID),
		ItemID:    domain.NumericID(itemID),
		Timestamp: ts,
	}, true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Sessionize orders clicks within sessions, removes short sessions and
// infrequent items, re-checks session lengths after item pruning, and
// assigns per-session positions.
func (s *Sessionizer) Sessionize(events []domain.ClickEvent) []domain.ClickEvent {
	sorted := make([]domain.ClickEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SessionID.Value != sorted[j].SessionID.Value {
			return sorted[i].SessionID.Less(sorted[j].SessionID)
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	sorted = filterShortSessions(sorted, s.cfg.MinSessionLength)
	s.log.Info("after session length filter", "events", len(sorted))

	itemCounts := make(map[string]int)
	for _, e := range sorted {
		itemCounts[e.ItemID.Value]++
	}
	kept := sorted[:0]
	for _, e := range sorted {
		if itemCounts[e.ItemID.Value] >= s.cfg.MinItemFreq {
			kept = append(kept, e)
		}
	}

	// Item pruning can leave sessions below the minimum again.
	kept = filterShortSessions(kept, s.cfg.MinSessionLength)
	s.log.Info("after item frequency filter", "events", len(kept))

	position := 0
	for i := range kept {
		if i > 0 && kept[i].SessionID.Value != kept[i-1].SessionID.Value {
			position = 0
		}
		kept[i].Position = position
		position++
	}
	return kept
}

func filterShortSessions(events []domain.ClickEvent, minLen int) []domain.ClickEvent {
	lengths := make(map[string]int)
	for _, e := range events {
		lengths[e.SessionID.Value]++
	}
	out := events[:0]
	for _, e := range events {
		if lengths[e.SessionID.Value] >= minLen {
			out = append(out, e)
		}
	}
	return out
}

// Run executes the full sessionizing pipeline for one raw file.
func (s *Sessionizer) Run(rawPath string) ([]domain.ClickEvent, error) {
	events, err := s.LoadRaw(rawPath)
	if err != nil {
		return nil, err
	}
	return s.Sessionize(events), nil
}
