package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"examples-db/internal/metadata"
)

// Example is the full database record of one example project.
type Example struct {
	ID                string   `json:"id"`
	Slug              string   `json:"slug"`
	Name              string   `json:"name"`
	ShortDescription  string   `json:"shortDescription"`
	Description       string   `json:"description"`
	ProjectFileURL    string   `json:"projectFileUrl"`
	License           string   `json:"license"`
	Authors           []string `json:"authors"`
	Tags              []string `json:"tags"`
	PreviewImageURLs  []string `json:"previewImageUrls"`
	GDevelopVersion   string   `json:"gdevelopVersion"`
	InstructionsCount int      `json:"instructionsCount"`
	UsedExtensions    []string `json:"usedExtensions"`

	// ExtensionTags are the display tags derived from UsedExtensions.
	ExtensionTags []string `json:"-"`
	// SourcePath is the absolute path of the project file.
	SourcePath string `json:"-"`
}

// ShortHeader is the subset of an Example needed to list it.
type ShortHeader struct {
	ID               string   `json:"id"`
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	ShortDescription string   `json:"shortDescription"`
	License          string   `json:"license"`
	Authors          []string `json:"authors"`
	Tags             []string `json:"tags"`
	PreviewImageURLs []string `json:"previewImageUrls"`
	GDevelopVersion  string   `json:"gdevelopVersion"`
}

type Options struct {
	ResourcesBaseURL string
	ReadmeFile       string
	PreviewImages    []string
	// ExtensionTags maps extension identifiers to the tag shown to users.
	// Extensions without an entry add no tag.
	ExtensionTags map[string]string
	Engine        ProjectEngine
	Logger        *zap.Logger
}

type Result struct {
	Examples []*Example
	Errors   []error
}

// Extract builds an Example for every project file of a flattened,
// enhanced tree. Examples come out ordered by project path.
func Extract(files map[string]*metadata.Node, opts Options) *Result {
	if opts.Engine == nil {
		opts.Engine = JSONEngine{}
	}
	if opts.ReadmeFile == "" {
		opts.ReadmeFile = "README.md"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	paths := make([]string, 0, len(files))
	for p, node := range files {
		if IsProjectFile(node.RelativePath) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	result := &Result{Examples: []*Example{}, Errors: []error{}}
	seen := make(map[string]string)
	for _, p := range paths {
		example, err := extractExample(files, files[p], opts)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		if first, dup := seen[example.ID]; dup {
			result.Errors = append(result.Errors, metadata.NewError(metadata.DuplicateExample, p,
				"same id %s as %s", example.ID, first))
			continue
		}
		seen[example.ID] = p
		log.Debug("example extracted", zap.String("name", example.Name), zap.String("id", example.ID))
		result.Examples = append(result.Examples, example)
	}
	return result
}

// IsProjectFile reports whether a forward-slash relative path names a
// project: game.json, or a JSON file named after its folder.
func IsProjectFile(relPath string) bool {
	name := path.Base(relPath)
	if name == "game.json" {
		return true
	}
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	dir := path.Dir(relPath)
	return dir != "." && path.Base(dir) == strings.TrimSuffix(name, ".json")
}

func extractExample(files map[string]*metadata.Node, node *metadata.Node, opts Options) (*Example, error) {
	content, ok := node.JSONContent()
	if !ok {
		return nil, metadata.NewError(metadata.InvalidJSON, node.Path, "expected valid JSON content")
	}

	folder := filepath.Dir(node.Path)
	readmePath := filepath.Join(folder, opts.ReadmeFile)
	readme, ok := files[readmePath]
	if !ok {
		return nil, metadata.NewError(metadata.MissingExpectedFile, readmePath, "expected a game README")
	}
	text, _ := readme.MarkdownContent()
	if strings.TrimSpace(text) == "" {
		return nil, metadata.NewError(metadata.MissingExpectedFile, readmePath, "expected a game README that is not empty")
	}

	project, err := opts.Engine.Parse(content)
	if err != nil {
		return nil, metadata.NewError(metadata.InvalidProject, node.Path, "%w", err)
	}

	folderName := filepath.Base(folder)
	name := project.Name()
	if name == "" {
		name = folderName
	}
	shortDescription, description := SplitReadme(text)

	extensions := project.UsedExtensions()
	extensionTags := make([]string, 0, len(extensions))
	tags := append([]string{}, node.Tags...)
	for _, ext := range extensions {
		tag, ok := opts.ExtensionTags[ext]
		if !ok {
			continue
		}
		extensionTags = append(extensionTags, tag)
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}

	previews := []string{}
	for _, image := range opts.PreviewImages {
		if preview, ok := files[filepath.Join(folder, image)]; ok {
			previews = append(previews, ResourceURL(opts.ResourcesBaseURL, preview.RelativePath))
		}
	}

	return &Example{
		ID:                ExampleID(node.Name, node.Tags),
		Slug:              strings.ToLower(folderName),
		Name:              name,
		ShortDescription:  shortDescription,
		Description:       description,
		ProjectFileURL:    ResourceURL(opts.ResourcesBaseURL, node.RelativePath),
		License:           node.License,
		Authors:           append([]string{}, node.Authors...),
		Tags:              tags,
		PreviewImageURLs:  previews,
		GDevelopVersion:   "",
		InstructionsCount: project.InstructionsCount(),
		UsedExtensions:    extensions,
		ExtensionTags:     extensionTags,
		SourcePath:        node.Path,
	}, nil
}

// ExampleID is the hex SHA-256 of the project file name followed by the
// tags joined with "-". It only changes when the project file is renamed or
// moved.
func ExampleID(fileName string, tags []string) string {
	sum := sha256.Sum256([]byte(fileName + strings.Join(tags, "-")))
	return hex.EncodeToString(sum[:])
}

// ResourceURL returns the deployed URL of a file given its path relative
// to the examples root.
func ResourceURL(baseURL, relPath string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(relPath, "/")
}

// SplitReadme returns the first paragraph of a README and the rest of it.
func SplitReadme(text string) (short, description string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")
	return parts[0], strings.Join(parts[1:], "\n\n")
}

func ShortHeaders(examples []*Example) []ShortHeader {
	headers := make([]ShortHeader, 0, len(examples))
	for _, e := range examples {
		headers = append(headers, ShortHeader{
			ID:               e.ID,
			Slug:             e.Slug,
			Name:             e.Name,
			ShortDescription: e.ShortDescription,
			License:          e.License,
			Authors:          e.Authors,
			Tags:             e.Tags,
			PreviewImageURLs: e.PreviewImageURLs,
			GDevelopVersion:  e.GDevelopVersion,
		})
	}
	return headers
}
