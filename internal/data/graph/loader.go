package graph

import (
	"context"
	"time"

	"github.com/yungbote/sessiongraph/internal/domain"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
)

// Record is one uninterpreted write row; the paired write operation owns its
// shape, the loader only slices records into chunks.
type Record = map[string]any

// WriteFunc applies one chunk against the target store and reports the write
// effects. Errors for which IsTransient holds are retried; everything else
// aborts the load.
type WriteFunc func(ctx context.Context, chunk []Record) (domain.EffectCounters, error)

type Config struct {
	ChunkSize   int
	MaxRetries  int
	BackoffUnit time.Duration
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 10000
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffUnit <= 0 {
		c.BackoffUnit = time.Second
	}
	return c
}

type chunkState int

const (
	chunkPending chunkState = iota
	chunkAttempting
	chunkRetrying
	chunkCommitted
	chunkFailed
)

// Loader drives a flat record list into the store chunk by chunk, in list
// order, with bounded exponential backoff per chunk.
type Loader struct {
	cfg   Config
	log   *logger.Logger
	sleep func(time.Duration)
}

func NewLoader(cfg Config, log *logger.Logger) *Loader {
	return &Loader{
		cfg:   cfg.withDefaults(),
		log:   log.With("component", "BatchLoader"),
		sleep: time.Sleep,
	}
}

// Load applies all records through write. On any chunk's terminal failure the
// remaining chunks are not attempted and the partial counters are discarded
// from the return value; partial application may still be visible in the
// store itself.
func (l *Loader) Load(ctx context.Context, write WriteFunc, records []Record) (domain.EffectCounters, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var total domain.EffectCounters
	l.log.Info("batch start", "rows", len(records), "chunk_size", l.cfg.ChunkSize)

	chunk := 0
	for offset := 0; offset < len(records); offset += l.cfg.ChunkSize {
		end := min(offset+l.cfg.ChunkSize, len(records))
		counters, err := l.loadChunk(ctx, write, records[offset:end], chunk)
		if err != nil {
			l.log.Error("batch aborted",
				"chunk", chunk,
				"rows_committed", offset,
				"nodes_created", total.Nodes,
				"relationships_created", total.Relationships,
				"properties_set", total.Properties,
				"error", err,
			)
			return domain.EffectCounters{}, err
		}
		total.Add(counters)
		l.log.Info("chunk committed",
			"progress", end,
			"total", len(records),
			"nodes_created", counters.Nodes,
			"relationships_created", counters.Relationships,
		)
		chunk++
	}

	l.log.Info("batch success",
		"nodes_created", total.Nodes,
		"relationships_created", total.Relationships,
		"properties_set", total.Properties,
	)
	return total, nil
}

// loadChunk runs the per-chunk state machine:
// Pending -> Attempting -> (Committed | Retrying -> Attempting | Failed).
func (l *Loader) loadChunk(ctx context.Context, write WriteFunc, chunk []Record, index int) (domain.EffectCounters, error) {
	var (
		state    = chunkPending
		counters domain.EffectCounters
		lastErr  error
		failures int
	)

	for {
		switch state {
		case chunkPending:
			state = chunkAttempting

		case chunkAttempting:
			c, err := write(ctx, chunk)
			if err == nil {
				counters = c
				state = chunkCommitted
				break
			}
			lastErr = err
			failures++
			switch {
			case !IsTransient(err):
				state = chunkFailed
			case failures >= l.cfg.MaxRetries:
				state = chunkFailed
			default:
				state = chunkRetrying
			}

		case chunkRetrying:
			// failures is 1-based here; the first retry waits one unit.
			wait := time.Duration(1<<(failures-1)) * l.cfg.BackoffUnit
			l.log.Warn("chunk failed, retrying",
				"chunk", index,
				"attempt", failures,
				"max_retries", l.cfg.MaxRetries,
				"wait", wait.String(),
				"error", lastErr,
			)
			l.sleep(wait)
			state = chunkAttempting

		case chunkCommitted:
			return counters, nil

		case chunkFailed:
			return domain.EffectCounters{}, &LoadError{Chunk: index, Attempts: failures, Err: lastErr}
		}
	}
}
