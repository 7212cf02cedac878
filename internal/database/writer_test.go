package database

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examples-db/internal/catalog"
	"examples-db/internal/metadata"
)

func testCatalog(ids ...string) *Catalog {
	examples := make([]*catalog.Example, 0, len(ids))
	for _, id := range ids {
		examples = append(examples, &catalog.Example{
			ID:               id,
			Slug:             id,
			Name:             "Example " + id,
			ShortDescription: "Short " + id,
			Tags:             []string{"tag-" + id},
			Authors:          []string{},
			PreviewImageURLs: []string{},
		})
	}
	return &Catalog{
		Examples: examples,
		Filters: &catalog.Filters{
			AllTags:     []string{"a"},
			TagsTree:    []*metadata.TagNode{},
			DefaultTags: []string{},
		},
	}
}

func TestWriter_WritesArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "database")
	w := NewWriter(dir, 4, nil)

	diff, err := w.Write(context.Background(), testCatalog("one", "two"))
	require.NoError(t, err)
	assert.Len(t, diff.Added, 4)

	for _, name := range []string{"examples/one.json", "examples/two.json", ShortHeadersFile, FiltersFile, ManifestFile} {
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(name)))
	}

	data, err := os.ReadFile(filepath.Join(dir, ShortHeadersFile))
	require.NoError(t, err)
	var headers []catalog.ShortHeader
	require.NoError(t, json.Unmarshal(data, &headers))
	require.Len(t, headers, 2)
	assert.Equal(t, "one", headers[0].ID)

	data, err = os.ReadFile(filepath.Join(dir, "examples", "one.json"))
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "Example one", record["name"])
	assert.NotContains(t, record, "SourcePath")

	manifest, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Len(t, manifest.Artifacts, 4)
	assert.NotEmpty(t, manifest.Root)
}

func TestWriter_IncrementalRewrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 2, nil)
	ctx := context.Background()

	_, err := w.Write(ctx, testCatalog("one", "two"))
	require.NoError(t, err)
	first, err := LoadManifest(dir)
	require.NoError(t, err)

	diff, err := w.Write(ctx, testCatalog("one", "two"))
	require.NoError(t, err)
	assert.False(t, diff.HasChanges())

	second, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, first.Root, second.Root)

	diff, err = w.Write(ctx, testCatalog("one", "three"))
	require.NoError(t, err)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "examples/three.json", diff.Added[0].Path)
	require.Len(t, diff.Deleted, 1)
	assert.Equal(t, "examples/two.json", diff.Deleted[0].Path)
	assert.NoFileExists(t, filepath.Join(dir, "examples", "two.json"))
	assert.FileExists(t, filepath.Join(dir, "examples", "three.json"))

	third, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.NotEqual(t, first.Root, third.Root)
}

func TestWriter_RestoresTamperedArtifact(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 1, nil)
	ctx := context.Background()

	_, err := w.Write(ctx, testCatalog("one"))
	require.NoError(t, err)

	target := filepath.Join(dir, "examples", "one.json")
	original, err := os.ReadFile(target)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0644))

	_, err = w.Write(ctx, testCatalog("one"))
	require.NoError(t, err)

	restored, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestWriter_DiffDoesNotWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "database")
	w := NewWriter(dir, 1, nil)

	diff, err := w.Diff(context.Background(), testCatalog("one"))
	require.NoError(t, err)
	assert.Len(t, diff.Added, 3)
	assert.NoDirExists(t, dir)
}

func TestLoadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("{"), 0644))

	_, err := LoadManifest(dir)
	assert.Error(t, err)
}
