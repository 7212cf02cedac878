package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Project is the engine's view of a parsed example project.
type Project interface {
	Name() string
	// UsedExtensions returns the extension identifiers the project relies
	// on, sorted and without duplicates.
	UsedExtensions() []string
	InstructionsCount() int
}

// ProjectEngine turns the decoded JSON of a project file into a Project.
type ProjectEngine interface {
	Parse(content any) (Project, error)
}

// JSONEngine reads projects straight from their JSON structure, without a
// game engine runtime.
type JSONEngine struct{}

type jsonProject struct {
	name         string
	extensions   []string
	instructions int
}

func (p *jsonProject) Name() string             { return p.name }
func (p *jsonProject) UsedExtensions() []string { return append([]string{}, p.extensions...) }
func (p *jsonProject) InstructionsCount() int   { return p.instructions }

func (JSONEngine) Parse(content any) (Project, error) {
	root, ok := content.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("project must be a JSON object, got %T", content)
	}

	p := &jsonProject{}
	if props, ok := root["properties"].(map[string]any); ok {
		if name, ok := props["name"].(string); ok {
			p.name = strings.TrimSpace(name)
		}
	}

	used := make(map[string]struct{})
	for _, ext := range objects(root["eventsFunctionsExtensions"]) {
		if name, ok := ext["name"].(string); ok && name != "" {
			used[name] = struct{}{}
		}
	}
	collectBehaviors(root, used)

	p.extensions = make([]string, 0, len(used))
	for name := range used {
		p.extensions = append(p.extensions, name)
	}
	sort.Strings(p.extensions)

	p.instructions = countInstructions(root)
	return p, nil
}

// collectBehaviors records the extension part of every behavior type
// ("Extension::Behavior") found on global or scene objects.
func collectBehaviors(root map[string]any, used map[string]struct{}) {
	all := objects(root["objects"])
	for _, layout := range objects(root["layouts"]) {
		all = append(all, objects(layout["objects"])...)
	}
	for _, obj := range all {
		for _, behavior := range objects(obj["behaviors"]) {
			kind, _ := behavior["type"].(string)
			if ext, _, found := strings.Cut(kind, "::"); found && ext != "" {
				used[ext] = struct{}{}
			}
		}
	}
}

// countInstructions counts the entries of every "conditions" and "actions"
// array in the document.
func countInstructions(v any) int {
	count := 0
	switch value := v.(type) {
	case map[string]any:
		for key, child := range value {
			if list, ok := child.([]any); ok && (key == "conditions" || key == "actions") {
				count += len(list)
			}
			count += countInstructions(child)
		}
	case []any:
		for _, child := range value {
			count += countInstructions(child)
		}
	}
	return count
}

func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
