package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/yungbote/sessiongraph/internal/domain"
)

// GenerateEvents turns sessionized clicks into (session, item, next-item)
// records: within each session, ordered by position, every click points at
// the following click's item; the last click has no next item.
func GenerateEvents(clicks []domain.ClickEvent) []domain.RawEvent {
	bySession := make(map[string][]domain.ClickEvent)
	sessionIDs := make(map[string]domain.Identifier)
	for _, c := range clicks {
		bySession[c.SessionID.Value] = append(bySession[c.SessionID.Value], c)
		sessionIDs[c.SessionID.Value] = c.SessionID
	}

	ordered := make([]domain.Identifier, 0, len(bySession))
	for v := range bySession {
		ordered = append(ordered, sessionIDs[v])
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Less(ordered[j]) })

	var events []domain.RawEvent
	for _, sid := range ordered {
		group := bySession[sid.Value]
		sort.Slice(group, func(i, j int) bool { return group[i].Position < group[j].Position })
		for i, click := range group {
			event := domain.RawEvent{SessionID: sid, ItemID: click.ItemID}
			if i+1 < len(group) {
				event.NextItemID = group[i+1].ItemID
			}
			events = append(events, event)
		}
	}
	return events
}

func WriteEvents(path string, events []domain.RawEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("ingestion: encode events: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ingestion: write %s: %w", path, err)
	}
	return nil
}

func ReadEvents(path string) ([]domain.RawEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: read %s: %w", path, err)
	}
	var events []domain.RawEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("ingestion: parse %s: %w", path, err)
	}
	return events, nil
}

func WriteClicks(path string, clicks []domain.ClickEvent) error {
	data, err := json.Marshal(clicks)
	if err != nil {
		return fmt.Errorf("ingestion: encode clicks: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ingestion: write %s: %w", path, err)
	}
	return nil
}

func ReadClicks(path string) ([]domain.ClickEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: read %s: %w", path, err)
	}
	var clicks []domain.ClickEvent
	if err := json.Unmarshal(data, &clicks); err != nil {
		return nil, fmt.Errorf("ingestion: parse %s: %w", path, err)
	}
	return clicks, nil
}
