package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/sessiongraph/internal/config"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
	"github.com/yungbote/sessiongraph/internal/platform/neo4jdb"
)

func main() {
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

	if err := client.Preflight(ctx); err != nil {
		log.Fatal("Preflight query failed", "error", err)
	}
	log.Info("Neo4j reachable", "uri", cfg.Neo4j.URI, "database", cfg.Neo4j.Database)
}
