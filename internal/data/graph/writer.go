package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/sessiongraph/internal/domain"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
)

// UnwindWriter binds a parameterized write query to a driver session. Each
// chunk is passed as the $batch parameter of one managed write transaction.
func UnwindWriter(session neo4j.SessionWithContext, cypher string, log *logger.Logger) WriteFunc {
	return func(ctx context.Context, chunk []Record) (domain.EffectCounters, error) {
		out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, cypher, map[string]any{"batch": chunk})
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return domain.EffectCounters{}, err
		}

		summary := out.(neo4j.ResultSummary)
		for _, n := range summary.Notifications() {
			log.Warn("cypher notification", "title", n.Title(), "description", n.Description())
		}
		c := summary.Counters()
		return domain.EffectCounters{
			Nodes:         int64(c.NodesCreated()),
			Relationships: int64(c.RelationshipsCreated()),
			Properties:    int64(c.PropertiesSet()),
		}, nil
	}
}
