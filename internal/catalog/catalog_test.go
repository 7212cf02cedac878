package catalog

import (
	"errors"
	"path"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examples-db/internal/metadata"
	"examples-db/internal/tree"
)

const baseURL = "https://resources.example.org/examples"

func file(rel string, ctx metadata.Context, content *metadata.Content) *metadata.Node {
	return &metadata.Node{
		Kind:         tree.KindFile,
		Name:         path.Base(rel),
		Path:         "/root/examples/" + rel,
		RelativePath: rel,
		Context:      ctx,
		Content:      content,
	}
}

func jsonContent(v any) *metadata.Content {
	return &metadata.Content{Kind: metadata.ContentJSON, JSON: v}
}

func markdown(text string) *metadata.Content {
	return &metadata.Content{Kind: metadata.ContentMarkdown, Text: text}
}

func index(nodes ...*metadata.Node) map[string]*metadata.Node {
	files := make(map[string]*metadata.Node, len(nodes))
	for _, n := range nodes {
		files[n.Path] = n
	}
	return files
}

func defaultOptions() Options {
	return Options{
		ResourcesBaseURL: baseURL,
		ReadmeFile:       "README.md",
		PreviewImages:    []string{"thumbnail.png", "preview.png"},
		ExtensionTags:    map[string]string{"PlatformBehavior": "Platform behavior"},
	}
}

func platformerProject() map[string]any {
	return map[string]any{
		"properties": map[string]any{"name": "Platformer"},
		"layouts": []any{
			map[string]any{
				"objects": []any{
					map[string]any{
						"behaviors": []any{
							map[string]any{"type": "PlatformBehavior::PlatformerObjectBehavior"},
						},
					},
				},
				"events": []any{
					map[string]any{
						"conditions": []any{map[string]any{}, map[string]any{}},
						"actions":    []any{map[string]any{}},
						"events": []any{
							map[string]any{"actions": []any{map[string]any{}}},
						},
					},
				},
			},
		},
		"eventsFunctionsExtensions": []any{
			map[string]any{"name": "Gamepads"},
		},
	}
}

func TestIsProjectFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"platformer/game.json", true},
		{"game.json", true},
		{"MyGame/MyGame.json", true},
		{"Some Tag/MyGame/MyGame.json", true},
		{"MyGame/other.json", false},
		{"MyGame/MyGame.md", false},
		{"MyGame.json", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsProjectFile(tt.path), tt.path)
	}
}

func TestSplitReadme(t *testing.T) {
	short, desc := SplitReadme("First line.\r\n\r\nSecond.\n\nThird.")
	assert.Equal(t, "First line.", short)
	assert.Equal(t, "Second.\n\nThird.", desc)

	short, desc = SplitReadme("Only one paragraph")
	assert.Equal(t, "Only one paragraph", short)
	assert.Equal(t, "", desc)
}

func TestExampleID(t *testing.T) {
	id := ExampleID("Platformer", []string{"platformer", "Starter"})
	assert.Len(t, id, 64)
	assert.Equal(t, id, ExampleID("Platformer", []string{"platformer", "Starter"}))
	assert.NotEqual(t, id, ExampleID("Platformer", []string{"Starter", "platformer"}))

	// sha256 of "game.json" + "platformer-Starter".
	assert.Equal(t,
		"5a797c3f852eee2f54e8a7f3fd564dc3a642c69d3587a93dde8e19a6c3fc452a",
		ExampleID("game.json", []string{"platformer", "Starter"}))
}

func TestExtract(t *testing.T) {
	ctx := metadata.Context{Tags: []string{"platformer"}, License: "MIT", Authors: []string{"Kenney"}}
	files := index(
		file("platformer/game.json", ctx, jsonContent(platformerProject())),
		file("platformer/README.md", ctx, markdown("A basic platformer.\n\nJump around.")),
		file("platformer/preview.png", ctx, nil),
		file("platformer/assets/hero.png", ctx, nil),
	)

	result := Extract(files, defaultOptions())
	require.Empty(t, result.Errors)
	require.Len(t, result.Examples, 1)

	got := result.Examples[0]
	want := &Example{
		ID:                ExampleID("game.json", []string{"platformer"}),
		Slug:              "platformer",
		Name:              "Platformer",
		ShortDescription:  "A basic platformer.",
		Description:       "Jump around.",
		ProjectFileURL:    baseURL + "/platformer/game.json",
		License:           "MIT",
		Authors:           []string{"Kenney"},
		Tags:              []string{"platformer", "Platform behavior"},
		PreviewImageURLs:  []string{baseURL + "/platformer/preview.png"},
		GDevelopVersion:   "",
		InstructionsCount: 4,
		UsedExtensions:    []string{"Gamepads", "PlatformBehavior"},
		ExtensionTags:     []string{"Platform behavior"},
		SourcePath:        "/root/examples/platformer/game.json",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}

	headers := ShortHeaders(result.Examples)
	require.Len(t, headers, 1)
	assert.Equal(t, got.ID, headers[0].ID)
	assert.Equal(t, "platformer", headers[0].Slug)
	assert.Equal(t, got.PreviewImageURLs, headers[0].PreviewImageURLs)
}

func TestExtract_FallsBackToFolderName(t *testing.T) {
	files := index(
		file("Some Tag/MyGame/MyGame.json", metadata.Context{}, jsonContent(map[string]any{})),
		file("Some Tag/MyGame/README.md", metadata.Context{}, markdown("Short")),
	)

	result := Extract(files, defaultOptions())
	require.Empty(t, result.Errors)
	require.Len(t, result.Examples, 1)
	assert.Equal(t, "MyGame", result.Examples[0].Name)
	assert.Equal(t, "mygame", result.Examples[0].Slug)
	assert.Equal(t, []string{}, result.Examples[0].PreviewImageURLs)
}

func assertKind(t *testing.T, err error, kind metadata.ErrorKind) {
	t.Helper()
	var metaErr *metadata.Error
	require.True(t, errors.As(err, &metaErr), "unexpected error type %T", err)
	assert.Equal(t, kind, metaErr.Kind)
}

func TestExtract_Errors(t *testing.T) {
	t.Run("missing readme", func(t *testing.T) {
		result := Extract(index(file("a/game.json", metadata.Context{}, jsonContent(map[string]any{}))), defaultOptions())
		require.Len(t, result.Errors, 1)
		assertKind(t, result.Errors[0], metadata.MissingExpectedFile)
		assert.Empty(t, result.Examples)
	})

	t.Run("empty readme", func(t *testing.T) {
		result := Extract(index(
			file("a/game.json", metadata.Context{}, jsonContent(map[string]any{})),
			file("a/README.md", metadata.Context{}, markdown("  \n")),
		), defaultOptions())
		require.Len(t, result.Errors, 1)
		assertKind(t, result.Errors[0], metadata.MissingExpectedFile)
	})

	t.Run("unparsed project", func(t *testing.T) {
		result := Extract(index(
			file("a/game.json", metadata.Context{}, nil),
			file("a/README.md", metadata.Context{}, markdown("Short")),
		), defaultOptions())
		require.Len(t, result.Errors, 1)
		assertKind(t, result.Errors[0], metadata.InvalidJSON)
	})

	t.Run("rejected project", func(t *testing.T) {
		result := Extract(index(
			file("a/game.json", metadata.Context{}, jsonContent([]any{})),
			file("a/README.md", metadata.Context{}, markdown("Short")),
		), defaultOptions())
		require.Len(t, result.Errors, 1)
		assertKind(t, result.Errors[0], metadata.InvalidProject)
	})

	t.Run("duplicate id", func(t *testing.T) {
		project := jsonContent(map[string]any{"properties": map[string]any{"name": "Same"}})
		ctx := metadata.Context{Tags: []string{"x"}}
		result := Extract(index(
			file("a/game.json", ctx, project),
			file("a/README.md", ctx, markdown("Short")),
			file("b/game.json", ctx, project),
			file("b/README.md", ctx, markdown("Short")),
		), defaultOptions())
		require.Len(t, result.Examples, 1)
		assert.Equal(t, "/root/examples/a/game.json", result.Examples[0].SourcePath)
		require.Len(t, result.Errors, 1)
		assertKind(t, result.Errors[0], metadata.DuplicateExample)
	})
}

func TestExtract_OrderedByPath(t *testing.T) {
	files := map[string]*metadata.Node{}
	for _, dir := range []string{"c", "a", "b"} {
		ctx := metadata.Context{Tags: []string{dir}}
		for _, n := range []*metadata.Node{
			file(dir+"/game.json", ctx, jsonContent(map[string]any{})),
			file(dir+"/README.md", ctx, markdown("Short")),
		} {
			files[n.Path] = n
		}
	}

	result := Extract(files, defaultOptions())
	require.Len(t, result.Examples, 3)
	assert.Equal(t, "a", result.Examples[0].Slug)
	assert.Equal(t, "b", result.Examples[1].Slug)
	assert.Equal(t, "c", result.Examples[2].Slug)
}

func TestJSONEngine_Parse(t *testing.T) {
	project, err := JSONEngine{}.Parse(platformerProject())
	require.NoError(t, err)
	assert.Equal(t, "Platformer", project.Name())
	assert.Equal(t, []string{"Gamepads", "PlatformBehavior"}, project.UsedExtensions())
	assert.Equal(t, 4, project.InstructionsCount())

	_, err = JSONEngine{}.Parse("not an object")
	assert.Error(t, err)
}

func TestBuildFilters(t *testing.T) {
	enhanced := &metadata.Result{
		AllTags: metadata.NewTagSet("zombie", "Arcade", "platformer"),
		TagsTree: []*metadata.TagNode{
			{Name: "Zeta", Children: []*metadata.TagNode{}, AllChildrenTags: metadata.NewTagSet()},
			{Name: "Alpha", Children: []*metadata.TagNode{}, AllChildrenTags: metadata.NewTagSet("b", "a")},
		},
	}
	examples := []*Example{
		{ExtensionTags: []string{"Top-down movement"}},
		{ExtensionTags: []string{"Draggable Behavior", "Top-down movement"}},
	}

	filters := BuildFilters(enhanced, examples, []string{"Starter", "Top-down movement"})

	assert.Equal(t, []string{"Arcade", "platformer", "zombie"}, filters.AllTags)
	require.Len(t, filters.TagsTree, 2)
	assert.Equal(t, "Alpha", filters.TagsTree[0].Name)
	assert.Equal(t, []string{"a", "b"}, filters.TagsTree[0].AllChildrenTags.Values())
	assert.Equal(t, []string{"Starter", "Top-down movement", "Draggable Behavior"}, filters.DefaultTags)
}
