package bulk

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/sessiongraph/internal/build"
	"github.com/yungbote/sessiongraph/internal/platform/logger"
)

// ErrFormatViolation reports an evidence value containing the list separator.
// The format has no escaping, so such a value cannot be represented; it is
// rejected before any relationship row is written.
var ErrFormatViolation = errors.New("list value contains separator")

// Bulk-import file set. Tab-separated, UTF-8, no quoting; headers are the
// exact forms neo4j-admin expects. This layout is a fixed external contract.
const (
	ItemsFile    = "items.csv"
	SessionsFile = "sessions.csv"
	NextFile     = "next.csv"
	ContainsFile = "contains.csv"
	LookupFile   = "lookup.json"
	ManifestFile = "manifest.json"

	listSeparator = ";"
)

// Manifest is the completion marker written after every other file has been
// flushed. A directory without one must be treated as inconsistent.
type Manifest struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Counts    Counts    `json:"counts"`
	Files     []string  `json:"files"`
}

type Counts struct {
	Items        int `json:"items"`
	Sessions     int `json:"sessions"`
	Transitions  int `json:"transitions"`
	Containments int `json:"containments"`
}

type lookup struct {
	ItemToID    map[string]int64 `json:"item_to_id"`
	SessionToID map[string]int64 `json:"session_to_id"`
}

type Exporter struct {
	dir string
	log *logger.Logger
}

func NewExporter(dir string, log *logger.Logger) *Exporter {
	return &Exporter{dir: dir, log: log.With("component", "BulkExporter")}
}

// Export serializes the identity tables and aggregated edge sets. The data
// files are independent of each other and written concurrently; the manifest
// is written only after all of them succeed.
func (e *Exporter) Export(items, sessions *build.IdentityTable, agg *build.Aggregate) (*Manifest, error) {
	for key, edge := range agg.Transitions {
		for s := range edge.Sessions {
			if strings.Contains(s, listSeparator) {
				return nil, fmt.Errorf("transition (%d,%d): session %q: %w",
					key.Src, key.Dst, s, ErrFormatViolation)
			}
		}
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("bulk: create output dir: %w", err)
	}

	var g errgroup.Group
	g.Go(func() error { return e.writeNodes(ItemsFile, "Item", items.Len()) })
	g.Go(func() error { return e.writeNodes(SessionsFile, "Session", sessions.Len()) })
	g.Go(func() error { return e.writeTransitions(agg) })
	g.Go(func() error { return e.writeContainments(agg) })
	g.Go(func() error { return e.writeLookup(items, sessions) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Counts: Counts{
			Items:        items.Len(),
			Sessions:     sessions.Len(),
			Transitions:  len(agg.Transitions),
			Containments: len(agg.Contains),
		},
		Files: []string{ItemsFile, SessionsFile, NextFile, ContainsFile, LookupFile},
	}
	if err := e.writeJSON(ManifestFile, manifest); err != nil {
		return nil, err
	}

	e.log.Info("bulk files ready",
		"dir", e.dir,
		"run_id", manifest.RunID,
		"items", manifest.Counts.Items,
		"sessions", manifest.Counts.Sessions,
		"transitions", manifest.Counts.Transitions,
		"containments", manifest.Counts.Containments,
	)
	return manifest, nil
}

func (e *Exporter) writeNodes(name, label string, n int) error {
	return e.writeFile(name, func(w *bufio.Writer) error {
		if _, err := fmt.Fprintf(w, ":ID(%s)\t:LABEL\n", label); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if _, err := fmt.Fprintf(w, "%d\t%s\n", i, label); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Exporter) writeTransitions(agg *build.Aggregate) error {
	return e.writeFile(NextFile, func(w *bufio.Writer) error {
		if _, err := fmt.Fprint(w, ":START_ID(Item)\t:END_ID(Item)\tweight:int\tsessions:string[]\n"); err != nil {
			return err
		}
		for key, edge := range agg.Transitions {
			evidence := make([]string, 0, len(edge.Sessions))
			for s := range edge.Sessions {
				evidence = append(evidence, s)
			}
			sort.Strings(evidence)
			if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%s\n",
				key.Src, key.Dst, edge.Weight, strings.Join(evidence, listSeparator)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Exporter) writeContainments(agg *build.Aggregate) error {
	return e.writeFile(ContainsFile, func(w *bufio.Writer) error {
		if _, err := fmt.Fprint(w, ":START_ID(Session)\t:END_ID(Item)\n"); err != nil {
			return err
		}
		for key := range agg.Contains {
			if _, err := fmt.Fprintf(w, "%d\t%d\n", key.Session, key.Item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Exporter) writeLookup(items, sessions *build.IdentityTable) error {
	return e.writeJSON(LookupFile, lookup{
		ItemToID:    items.ToMap(),
		SessionToID: sessions.ToMap(),
	})
}

func (e *Exporter) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("bulk: encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(e.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("bulk: write %s: %w", name, err)
	}
	return nil
}

func (e *Exporter) writeFile(name string, fill func(*bufio.Writer) error) error {
	f, err := os.Create(filepath.Join(e.dir, name))
	if err != nil {
		return fmt.Errorf("bulk: create %s: %w", name, err)
	}
	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("bulk: write %s: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("bulk: flush %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("bulk: close %s: %w", name, err)
	}
	return nil
}
