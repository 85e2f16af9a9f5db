package graph

import (
	"context"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/sessiongraph/internal/build"
	"github.com/yungbote/sessiongraph/internal/domain"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
	"github.com/yungbote/sessiongraph/internal/platform/neo4jdb"
)

// Live-load materialization of the aggregated graph. MERGE keeps replays of
// a record list convergent for nodes and relationships; weights are SET, not
// incremented, so a retried chunk does not double-count.
const (
	itemNodesCypher = `
UNWIND $batch AS row
MERGE (:Item {item_id: row.item_id})`

	sessionNodesCypher = `
UNWIND $batch AS row
MERGE (:Session {session_id: row.session_id})`

	transitionsCypher = `
UNWIND $batch AS row
MATCH (a:Item {item_id: row.src})
MATCH (b:Item {item_id: row.dst})
MERGE (a)-[r:NEXT]->(b)
SET r.weight = row.weight,
    r.sessions = row.sessions`

	containmentsCypher = `
UNWIND $batch AS row
MATCH (s:Session {session_id: row.session_id})
MATCH (i:Item {item_id: row.item_id})
MERGE (s)-[:CONTAINS]->(i)`
)

func ItemNodeRecords(items *build.IdentityTable) []Record {
	out := make([]Record, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		out = append(out, Record{"item_id": int64(i)})
	}
	return out
}

func SessionNodeRecords(sessions *build.IdentityTable) []Record {
	out := make([]Record, 0, sessions.Len())
	for i := 0; i < sessions.Len(); i++ {
		out = append(out, Record{"session_id": int64(i)})
	}
	return out
}

func TransitionRecords(agg *build.Aggregate) []Record {
	keys := make([]build.EdgeKey, 0, len(agg.Transitions))
	for key := range agg.Transitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Src != keys[j].Src {
			return keys[i].Src < keys[j].Src
		}
		return keys[i].Dst < keys[j].Dst
	})

	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		edge := agg.Transitions[key]
		evidence := make([]string, 0, len(edge.Sessions))
		for s := range edge.Sessions {
			evidence = append(evidence, s)
		}
		sort.Strings(evidence)
		out = append(out, Record{
			"src":      key.Src,
			"dst":      key.Dst,
			"weight":   edge.Weight,
			"sessions": evidence,
		})
	}
	return out
}

func ContainmentRecords(agg *build.Aggregate) []Record {
	keys := make([]build.ContainmentKey, 0, len(agg.Contains))
	for key := range agg.Contains {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Session != keys[j].Session {
			return keys[i].Session < keys[j].Session
		}
		return keys[i].Item < keys[j].Item
	})

	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, Record{"session_id": key.Session, "item_id": key.Item})
	}
	return out
}

// LoadGraph applies the full aggregated graph against a live store: nodes
// first, then relationships, each phase through the chunked loader. A single
// session spans the whole call.
func LoadGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, cfg Config, items, sessions *build.IdentityTable, agg *build.Aggregate) (domain.EffectCounters, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	loader := NewLoader(cfg, log)
	phases := []struct {
		name    string
		cypher  string
		records []Record
	}{
		{"item nodes", itemNodesCypher, ItemNodeRecords(items)},
		{"session nodes", sessionNodesCypher, SessionNodeRecords(sessions)},
		{"transition edges", transitionsCypher, TransitionRecords(agg)},
		{"containment edges", containmentsCypher, ContainmentRecords(agg)},
	}

	var total domain.EffectCounters
	for _, phase := range phases {
		log.Info("loading phase", "phase", phase.name, "rows", len(phase.records))
		counters, err := loader.Load(ctx, UnwindWriter(session, phase.cypher, log), phase.records)
		if err != nil {
			return domain.EffectCounters{}, err
		}
		total.Add(counters)
	}
	return total, nil
}
