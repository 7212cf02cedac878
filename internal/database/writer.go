package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"examples-db/internal/catalog"
	"examples-db/internal/compare"
	"examples-db/internal/hash"
)

// Catalog is everything written to the database directory.
type Catalog struct {
	Examples []*catalog.Example
	Filters  *catalog.Filters
}

type Writer struct {
	dir         string
	concurrency int
	log         *zap.Logger
}

func NewWriter(dir string, concurrency int, log *zap.Logger) *Writer {
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{dir: dir, concurrency: concurrency, log: log}
}

// Render serializes the catalog into artifacts keyed by their path in the
// database directory.
func (w *Writer) Render(ctx context.Context, c *Catalog) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(c.Examples)+2)
	var mu sync.Mutex

	put := func(name string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		mu.Lock()
		artifacts[name] = data
		mu.Unlock()
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, example := range c.Examples {
		g.Go(func() error {
			return put(path.Join(ExamplesDir, example.ID+".json"), example)
		})
	}
	g.Go(func() error {
		return put(ShortHeadersFile, catalog.ShortHeaders(c.Examples))
	})
	g.Go(func() error {
		return put(FiltersFile, c.Filters)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// Diff reports how the database on disk would change if c were written.
func (w *Writer) Diff(ctx context.Context, c *Catalog) (*compare.Result, error) {
	artifacts, err := w.Render(ctx, c)
	if err != nil {
		return nil, err
	}
	next, err := newManifest(artifacts)
	if err != nil {
		return nil, err
	}
	prev, err := LoadManifest(w.dir)
	if err != nil {
		return nil, err
	}
	return compare.Compare(prev.Artifacts, next.Artifacts), nil
}

// Write brings the database directory in line with c. Artifacts whose
// content did not change are left alone, records that are no longer
// generated are removed, and the manifest is rewritten last.
func (w *Writer) Write(ctx context.Context, c *Catalog) (*compare.Result, error) {
	artifacts, err := w.Render(ctx, c)
	if err != nil {
		return nil, err
	}
	next, err := newManifest(artifacts)
	if err != nil {
		return nil, err
	}
	prev, err := LoadManifest(w.dir)
	if err != nil {
		return nil, err
	}
	diff := compare.Compare(prev.Artifacts, next.Artifacts)

	if err := os.MkdirAll(filepath.Join(w.dir, ExamplesDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for name, data := range artifacts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			target := filepath.Join(w.dir, filepath.FromSlash(name))
			if w.upToDate(target, prev.Artifacts[name], next.Artifacts[name]) {
				return nil
			}
			if err := os.WriteFile(target, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, change := range diff.Deleted {
		target := filepath.Join(w.dir, filepath.FromSlash(change.Path))
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale %s: %w", change.Path, err)
		}
		w.log.Debug("stale artifact removed", zap.String("path", change.Path))
	}

	if err := saveManifest(w.dir, next); err != nil {
		return nil, err
	}

	w.log.Info("database written",
		zap.String("dir", w.dir),
		zap.String("root", next.Root),
		zap.Int("added", len(diff.Added)),
		zap.Int("modified", len(diff.Modified)),
		zap.Int("deleted", len(diff.Deleted)))

	return diff, nil
}

// upToDate reports whether target already holds the artifact. The manifest
// is trusted only when the file on disk still hashes to the recorded value.
func (w *Writer) upToDate(target string, prev, next compare.Artifact) bool {
	if prev.Hash == "" || prev.Hash != next.Hash {
		return false
	}
	current, err := hash.HashFile(target)
	return err == nil && current == next.Hash
}
