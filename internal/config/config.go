package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/sessiongraph/internal/data/graph"
	"github.com/yungbote/sessiongraph/internal/ingestion"
	"github.com/yungbote/sessiongraph/internal/platform/envutil"
	"github.com/yungbote/sessiongraph/internal/platform/neo4jdb"
)

// Config carries everything the pipeline binaries need; it is built once at
// process start and passed by reference. No component reads the environment
// on its own.
type Config struct {
	Env        string
	Neo4j      neo4jdb.Config
	Loader     graph.Config
	Preprocess PreprocessConfig
}

type PreprocessConfig struct {
	Sessionizer ingestion.SessionizerConfig `yaml:"sessionizer"`
	TestRatio   float64                     `yaml:"test_ratio"`
}

// FromEnv assembles the config from environment variables, with the same
// defaults the target store tooling assumes.
func FromEnv() *Config {
	return &Config{
		Env: envutil.String("APP_ENV", "development"),
		Neo4j: neo4jdb.Config{
			URI:         envutil.String("NEO4J_URI", ""),
			Username:    envutil.String("NEO4J_USER", "neo4j"),
			Password:    envutil.String("NEO4J_PASSWORD", ""),
			Database:    envutil.String("NEO4J_DATABASE", ""),
			Timeout:     time.Duration(envutil.Int("NEO4J_TIMEOUT_SECONDS", 10)) * time.Second,
			MaxPoolSize: envutil.Int("NEO4J_MAX_POOL_SIZE", 50),
		},
		Loader: graph.Config{
			ChunkSize:   envutil.Int("LOADER_CHUNK_SIZE", 10000),
			MaxRetries:  envutil.Int("LOADER_MAX_RETRIES", 3),
			BackoffUnit: time.Duration(envutil.Int("LOADER_BACKOFF_SECONDS", 1)) * time.Second,
		},
		Preprocess: PreprocessConfig{
			Sessionizer: ingestion.SessionizerConfig{
				MinSessionLength: envutil.Int("MIN_SESSION_LENGTH", 2),
				MinItemFreq:      envutil.Int("MIN_ITEM_FREQ", 5),
				ChunkRows:        envutil.Int("CHUNK_ROWS", 500000),
				MaxRows:          envutil.Int("MAX_ROWS", 0),
			},
			TestRatio: envutil.Float("TEST_RATIO", 0.2),
		},
	}
}

// ApplyPreprocessFile overlays preprocessing knobs from a YAML file, when one
// is configured.
func (c *Config) ApplyPreprocessFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c.Preprocess); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// ValidateStore checks the fields a live-store command cannot run without.
func (c *Config) ValidateStore() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("config: NEO4J_URI is required")
	}
	if c.Neo4j.Password == "" {
		return fmt.Errorf("config: NEO4J_PASSWORD is required")
	}
	return nil
}
