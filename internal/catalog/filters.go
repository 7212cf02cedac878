package catalog

import "examples-db/internal/metadata"

// Filters is the content of filters.json.
type Filters struct {
	AllTags     []string            `json:"allTags"`
	TagsTree    []*metadata.TagNode `json:"tagsTree"`
	DefaultTags []string            `json:"defaultTags"`
}

// BuildFilters sorts the tags found by the enhancer. Default tags are the
// configured ones followed by the extension tags of at least one example.
func BuildFilters(enhanced *metadata.Result, examples []*Example, defaultTags []string) *Filters {
	defaults := metadata.NewTagSet(defaultTags...)
	used := metadata.NewTagSet()
	for _, e := range examples {
		for _, tag := range e.ExtensionTags {
			used.Add(tag)
		}
	}
	defaults.Union(metadata.NewTagSet(metadata.SortTags(used.Values())...))

	return &Filters{
		AllTags:     metadata.SortTags(enhanced.AllTags.Values()),
		TagsTree:    metadata.SortTagsTree(enhanced.TagsTree),
		DefaultTags: defaults.Values(),
	}
}
