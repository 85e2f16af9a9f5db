package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yungbote/sessiongraph/internal/config"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
	"github.com/yungbote/sessiongraph/internal/platform/neo4jdb"
	"github.com/yungbote/sessiongraph/internal/scoring"
)

func main() {
	model := flag.String("model", "hsp", "scoring strategy: hsp or ric")
	items := flag.String("items", "", "comma-separated dense item ids of the active session")
	k := flag.Int("k", 20, "number of recommendations")
	flag.Parse()

	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sessionItems, err := parseItems(*items)
	if err != nil {
		log.Fatal("Invalid -items", "error", err)
	}
	if len(sessionItems) == 0 {
		log.Fatal("At least one session item is required")
	}

	cfg := config.FromEnv()
	if err := cfg.ValidateStore(); err != nil {
		log.Fatal("Store config incomplete", "error", err)
	}

	ctx := context.Background()
	client, err := neo4jdb.New(cfg.Neo4j, log)
	if err != nil {
		log.Fatal("Could not connect", "uri", cfg.Neo4j.URI, "error", err)
	}
	defer client.Close(ctx)

	var scorer scoring.Scorer
	switch *model {
	case "hsp":
		scorer = scoring.NewHSP(client)
	case "ric":
		scorer = scoring.NewRIC(client)
	default:
		log.Fatal("Unknown model", "model", *model)
	}

	recs, err := scoring.Recommend(ctx, scorer, sessionItems, *k)
	if err != nil {
		log.Fatal("Scoring failed", "model", scorer.Name(), "error", err)
	}

	fmt.Printf("%-12s %s\n", "item_id", "score")
	for _, r := range recs {
		fmt.Printf("%-12d %.6f\n", r.ItemID, r.Score)
	}
}

func parseItems(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
