package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/yungbote/sessiongraph/internal/build"
	"github.com/yungbote/sessiongraph/internal/bulk"
	"github.com/yungbote/sessiongraph/internal/config"
	"github.com/yungbote/sessiongraph/internal/data/graph"
	"github.com/yungbote/sessiongraph/internal/ingestion"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
	"github.com/yungbote/sessiongraph/internal/platform/neo4jdb"
)

const usage = `usage: sessiongraph <command> [flags]

commands:
  sessionize   raw click log -> filtered session clicks
  split        session clicks -> temporal train/test sets
  events       session clicks -> (session, item, next-item) records
  bulk         event records -> neo4j-admin bulk-import files
  load         event records -> live graph store
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

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
	if path := os.Getenv("PREPROCESS_CONFIG"); path != "" {
		if err := cfg.ApplyPreprocessFile(path); err != nil {
			log.Fatal("Failed to load preprocessing config", "path", path, "error", err)
		}
	}

	var cmdErr error
	switch os.Args[1] {
	case "sessionize":
		cmdErr = runSessionize(cfg, log, os.Args[2:])
	case "split":
		cmdErr = runSplit(cfg, log, os.Args[2:])
	case "events":
		cmdErr = runEvents(log, os.Args[2:])
	case "bulk":
		cmdErr = runBulk(log, os.Args[2:])
	case "load":
		cmdErr = runLoad(cfg, log, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if cmdErr != nil {
		log.Error("command failed", "command", os.Args[1], "error", cmdErr)
		os.Exit(1)
	}
}

func runSessionize(cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("sessionize", flag.ExitOnError)
	input := fs.String("input", "", "raw click log (comma-separated)")
	output := fs.String("output", "data/processed/clicks.json", "output clicks file")
	_ = fs.Parse(args)
	if *input == "" {
		return fmt.Errorf("sessionize: -input is required")
	}

	sessionizer := ingestion.NewSessionizer(cfg.Preprocess.Sessionizer, log)
	clicks, err := sessionizer.Run(*input)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return err
	}
	if err := ingestion.WriteClicks(*output, clicks); err != nil {
		return err
	}
	log.Info("sessionized clicks saved", "path", *output, "events", len(clicks))
	return nil
}

func runSplit(cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	input := fs.String("input", "", "sessionized clicks file")
	outdir := fs.String("outdir", "data/processed", "output directory")
	_ = fs.Parse(args)
	if *input == "" {
		return fmt.Errorf("split: -input is required")
	}

	clicks, err := ingestion.ReadClicks(*input)
	if err != nil {
		return err
	}
	splitter := ingestion.NewSplitter(cfg.Preprocess.TestRatio, log)
	train, test := splitter.TemporalSplit(clicks)

	if err := os.MkdirAll(*outdir, 0o755); err != nil {
		return err
	}
	trainPath := filepath.Join(*outdir, "train_clicks.json")
	testPath := filepath.Join(*outdir, "test_clicks.json")
	if err := ingestion.WriteClicks(trainPath, train); err != nil {
		return err
	}
	if err := ingestion.WriteClicks(testPath, test); err != nil {
		return err
	}
	log.Info("split saved", "train", trainPath, "test", testPath)
	return nil
}

func runEvents(log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	input := fs.String("input", "", "sessionized clicks file")
	output := fs.String("output", "data/batch.json", "output event records file")
	_ = fs.Parse(args)
	if *input == "" {
		return fmt.Errorf("events: -input is required")
	}

	clicks, err := ingestion.ReadClicks(*input)
	if err != nil {
		return err
	}
	events := ingestion.GenerateEvents(clicks)
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return err
	}
	if err := ingestion.WriteEvents(*output, events); err != nil {
		return err
	}
	log.Info("event records saved", "path", *output, "rows", len(events))
	return nil
}

func runBulk(log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("bulk", flag.ExitOnError)
	input := fs.String("input", "", "event records file")
	outdir := fs.String("outdir", "import", "bulk-import output directory")
	_ = fs.Parse(args)
	if *input == "" {
		return fmt.Errorf("bulk: -input is required")
	}

	events, err := ingestion.ReadEvents(*input)
	if err != nil {
		return err
	}
	items, sessions := build.AssignIdentities(events)
	log.Info("identities assigned", "items", items.Len(), "sessions", sessions.Len())

	agg, err := build.AggregateEdges(events, items, sessions)
	if err != nil {
		return err
	}
	log.Info("edges aggregated", "transitions", len(agg.Transitions), "containments", len(agg.Contains))

	_, err = bulk.NewExporter(*outdir, log).Export(items, sessions, agg)
	return err
}

func runLoad(cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	input := fs.String("input", "", "event records file")
	_ = fs.Parse(args)
	if *input == "" {
		return fmt.Errorf("load: -input is required")
	}
	if err := cfg.ValidateStore(); err != nil {
		return err
	}

	events, err := ingestion.ReadEvents(*input)
	if err != nil {
		return err
	}
	items, sessions := build.AssignIdentities(events)
	agg, err := build.AggregateEdges(events, items, sessions)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := neo4jdb.New(cfg.Neo4j, log)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	counters, err := graph.LoadGraph(ctx, client, log, cfg.Loader, items, sessions, agg)
	if err != nil {
		return err
	}
	log.Info("graph loaded",
		"nodes_created", counters.Nodes,
		"relationships_created", counters.Relationships,
		"properties_set", counters.Properties,
	)
	return nil
}
