package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TokenEntry pairs a display name with the text searched for in license files.
type TokenEntry struct {
	Name        string `yaml:"name"`
	SearchToken string `yaml:"search_token"`
}

type Config struct {
	ExamplesDir      string            `yaml:"examples_dir"`
	DatabaseDir      string            `yaml:"database_dir"`
	ResourcesBaseURL string            `yaml:"resources_base_url"`
	DefaultLicense   string            `yaml:"default_license"`
	Extensions       []string          `yaml:"extensions"`
	Exclude          []string          `yaml:"exclude"`
	IgnoreFile       string            `yaml:"ignore_file"`
	MagicIgnoreFiles []string          `yaml:"magic_ignore_files"`
	IgnoredTagNames  []string          `yaml:"ignored_tag_names"`
	TagFile          string            `yaml:"tag_file"`
	LicenseFile      string            `yaml:"license_file"`
	SampleImage      string            `yaml:"sample_image"`
	ReadmeFile       string            `yaml:"readme_file"`
	PreviewImages    []string          `yaml:"preview_images"`
	Licenses         []TokenEntry      `yaml:"licenses"`
	Authors          []TokenEntry      `yaml:"authors"`
	DefaultTags      []string          `yaml:"default_tags"`
	ExtensionTags    map[string]string `yaml:"extension_tags"`
	Concurrency      int               `yaml:"concurrency"`
}

func DefaultConfig() *Config {
	return &Config{
		ExamplesDir:      "examples",
		DatabaseDir:      "database",
		ResourcesBaseURL: "https://resources.gdevelop-app.com/examples",
		DefaultLicense:   "MIT",
		Extensions: []string{
			"png", "md", "txt", "json", "ttf", "otf", "wav", "aac", "svg",
		},
		Exclude: []string{
			`Default size`,
			`Spritesheet`,
			`Tilesheet`,
			`Vector`,
			`(?i)Unimplemented`,
			`(?i)TODO`,
			`Preview\.png`,
		},
		IgnoreFile:       ".examplesignore",
		MagicIgnoreFiles: []string{"IGNORED.md"},
		IgnoredTagNames: []string{
			"Retina",
			"PNG",
			"SVG",
			"Master",
			"Default size",
			"Sprites",
			"Sprites X2",
		},
		TagFile:       "TAGS.md",
		LicenseFile:   "license.txt",
		SampleImage:   "Sample.png",
		ReadmeFile:    "README.md",
		PreviewImages: []string{"thumbnail.png", "preview.png", "square-icon.png"},
		Licenses: []TokenEntry{
			{Name: "CC0 (public domain)", SearchToken: "Creative Commons Zero"},
			{Name: "CC0 (public domain)", SearchToken: "creativecommons.org/publicdomain/zero/1.0"},
			{Name: "CC-BY 3.0", SearchToken: "creativecommons.org/licenses/by/3.0"},
			{Name: "CC-BY 4.0", SearchToken: "creativecommons.org/licenses/by/4.0"},
			{Name: "CC-BY-SA 3.0", SearchToken: "creativecommons.org/licenses/by-sa/3.0"},
			{Name: "CC-BY-SA 4.0", SearchToken: "creativecommons.org/licenses/by-sa/4.0"},
			{Name: "MIT", SearchToken: "MIT License"},
			{Name: "OFL", SearchToken: "SIL Open Font License"},
		},
		Authors:     []TokenEntry{},
		DefaultTags: []string{},
		ExtensionTags: map[string]string{
			"PlatformBehavior":        "Platform behavior",
			"TopDownMovementBehavior": "Top-down movement",
			"DraggableBehavior":       "Draggable Behavior",
			"Physics2":                "Physics Engine 2.0",
			"PhysicsBehavior":         "Physics Engine (deprecated)",
			"Gamepads":                "Gamepads (controllers)",
			"MathematicalTools":       "Mathematical tools",
			"PathfindingBehavior":     "Pathfinding behavior",
			"TextInput":               "Text entry object",
			"Tween":                   "Tween animation",
		},
		Concurrency: 16,
	}
}

// LoadConfig reads a YAML config over DefaultConfig. A missing file yields
// the defaults. Lists in the file replace the default lists; extension_tags
// entries are added to the default mapping.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize replaces nil collections with empty ones so callers can range
// and index without checks.
func (c *Config) normalize() {
	if c.Extensions == nil {
		c.Extensions = []string{}
	}
	if c.Exclude == nil {
		c.Exclude = []string{}
	}
	if c.MagicIgnoreFiles == nil {
		c.MagicIgnoreFiles = []string{}
	}
	if c.IgnoredTagNames == nil {
		c.IgnoredTagNames = []string{}
	}
	if c.PreviewImages == nil {
		c.PreviewImages = []string{}
	}
	if c.Licenses == nil {
		c.Licenses = []TokenEntry{}
	}
	if c.Authors == nil {
		c.Authors = []TokenEntry{}
	}
	if c.DefaultTags == nil {
		c.DefaultTags = []string{}
	}
	if c.ExtensionTags == nil {
		c.ExtensionTags = map[string]string{}
	}
}
