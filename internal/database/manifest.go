package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"examples-db/internal/compare"
	"examples-db/internal/hash"
)

const (
	ExamplesDir      = "examples"
	ShortHeadersFile = "exampleShortHeaders.json"
	FiltersFile      = "filters.json"
	ManifestFile     = "manifest.json"

	generator = "examples-db"
)

// Manifest records every artifact of a generated database, keyed by its
// forward-slash path inside the database directory.
type Manifest struct {
	Generator string                      `json:"generator"`
	Created   time.Time                   `json:"created"`
	Root      string                      `json:"root"`
	Artifacts map[string]compare.Artifact `json:"artifacts"`
}

func newManifest(artifacts map[string][]byte) (*Manifest, error) {
	m := &Manifest{
		Generator: generator,
		Created:   time.Now().UTC(),
		Artifacts: make(map[string]compare.Artifact, len(artifacts)),
	}

	paths := make([]string, 0, len(artifacts))
	for path, data := range artifacts {
		m.Artifacts[path] = compare.Artifact{Hash: hash.HashBytes(data), Size: int64(len(data))}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hashes := make([]string, 0, len(paths))
	for _, path := range paths {
		hashes = append(hashes, m.Artifacts[path].Hash)
	}
	root, err := hash.RootHash(hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to compute database root: %w", err)
	}
	m.Root = root
	return m, nil
}

// LoadManifest reads the manifest of a database directory. A database that
// was never generated has an empty manifest.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{Artifacts: map[string]compare.Artifact{}}, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	if m.Artifacts == nil {
		m.Artifacts = map[string]compare.Artifact{}
	}
	return &m, nil
}

func saveManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
