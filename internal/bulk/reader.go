package bulk

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yungbote/sessiongraph/internal/build"
)

// Snapshot is a bulk directory read back into memory. It mirrors what the
// exporter was given, up to the identifier type hints JSON keys cannot carry.
type Snapshot struct {
	Items    *build.IdentityTable
	Sessions *build.IdentityTable
	Agg      *build.Aggregate
	Manifest *Manifest
}

// Read parses a bulk output directory. It refuses directories without a
// manifest since those may hold a partial export.
func Read(dir string) (*Snapshot, error) {
	var manifest Manifest
	if err := readJSON(filepath.Join(dir, ManifestFile), &manifest); err != nil {
		return nil, fmt.Errorf("bulk: no completion marker, output inconsistent: %w", err)
	}

	var lk lookup
	if err := readJSON(filepath.Join(dir, LookupFile), &lk); err != nil {
		return nil, err
	}

	agg := &build.Aggregate{
		Transitions: make(map[build.EdgeKey]*build.TransitionEdge),
		Contains:    make(map[build.ContainmentKey]struct{}),
	}

	err := readRows(filepath.Join(dir, NextFile), 4, func(fields []string) error {
		src, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return err
		}
		dst, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return err
		}
		weight, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return err
		}
		edge := &build.TransitionEdge{Weight: weight, Sessions: make(map[string]struct{})}
		if fields[3] != "" {
			for _, s := range strings.Split(fields[3], listSeparator) {
				edge.Sessions[s] = struct{}{}
			}
		}
		agg.Transitions[build.EdgeKey{Src: src, Dst: dst}] = edge
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readRows(filepath.Join(dir, ContainsFile), 2, func(fields []string) error {
		session, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return err
		}
		item, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return err
		}
		agg.Contains[build.ContainmentKey{Session: session, Item: item}] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := build.IdentityTableFromMap(lk.ItemToID)
	if err != nil {
		return nil, fmt.Errorf("bulk: lookup item_to_id: %w", err)
	}
	sessions, err := build.IdentityTableFromMap(lk.SessionToID)
	if err != nil {
		return nil, fmt.Errorf("bulk: lookup session_to_id: %w", err)
	}

	return &Snapshot{
		Items:    items,
		Sessions: sessions,
		Agg:      agg,
		Manifest: &manifest,
	}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("bulk: parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readRows(path string, fields int, row func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue // header
		}
		text := scanner.Text()
		if text == "" {
			continue
		}
		parts := strings.Split(text, "\t")
		if len(parts) != fields {
			return fmt.Errorf("bulk: %s line %d: want %d fields, got %d",
				filepath.Base(path), line, fields, len(parts))
		}
		if err := row(parts); err != nil {
			return fmt.Errorf("bulk: %s line %d: %w", filepath.Base(path), line, err)
		}
	}
	return scanner.Err()
}
