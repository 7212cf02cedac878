package compare

import (
	"fmt"
	"sort"
	"strings"
)

type ChangeType string

const (
	Added    ChangeType = "ADDED"
	Modified ChangeType = "MODIFIED"
	Deleted  ChangeType = "DELETED"
)

// Artifact is one generated database file as recorded in a manifest.
type Artifact struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

type Change struct {
	Type    ChangeType
	Path    string
	OldData *Artifact
	NewData *Artifact
}

type Result struct {
	Added    []Change
	Modified []Change
	Deleted  []Change
}

func (r *Result) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Modified) > 0 || len(r.Deleted) > 0
}

// Compare diffs two artifact sets keyed by database-relative path.
func Compare(oldSet, newSet map[string]Artifact) *Result {
	result := &Result{
		Added:    make([]Change, 0),
		Modified: make([]Change, 0),
		Deleted:  make([]Change, 0),
	}

	for path, newData := range newSet {
		newCopy := newData
		oldData, exists := oldSet[path]
		if !exists {
			result.Added = append(result.Added, Change{Type: Added, Path: path, NewData: &newCopy})
			continue
		}
		if oldData.Hash != newData.Hash {
			oldCopy := oldData
			result.Modified = append(result.Modified, Change{
				Type:    Modified,
				Path:    path,
				OldData: &oldCopy,
				NewData: &newCopy,
			})
		}
	}

	for path, oldData := range oldSet {
		if _, exists := newSet[path]; !exists {
			oldCopy := oldData
			result.Deleted = append(result.Deleted, Change{Type: Deleted, Path: path, OldData: &oldCopy})
		}
	}

	for _, changes := range [][]Change{result.Added, result.Modified, result.Deleted} {
		sort.Slice(changes, func(i, j int) bool {
			return changes[i].Path < changes[j].Path
		})
	}

	return result
}

func FormatReport(result *Result) string {
	if !result.HasChanges() {
		return "Database is up to date."
	}

	var b strings.Builder
	b.WriteString("Database changes:\n\n")

	if len(result.Added) > 0 {
		fmt.Fprintf(&b, "ADDED (%d artifacts):\n", len(result.Added))
		for _, change := range result.Added {
			fmt.Fprintf(&b, "  + %s (hash: %s, size: %d bytes)\n",
				change.Path, change.NewData.Hash, change.NewData.Size)
		}
		b.WriteString("\n")
	}

	if len(result.Modified) > 0 {
		fmt.Fprintf(&b, "MODIFIED (%d artifacts):\n", len(result.Modified))
		for _, change := range result.Modified {
			fmt.Fprintf(&b, "  ~ %s (hash: %s -> %s)\n",
				change.Path, change.OldData.Hash, change.NewData.Hash)
		}
		b.WriteString("\n")
	}

	if len(result.Deleted) > 0 {
		fmt.Fprintf(&b, "DELETED (%d artifacts):\n", len(result.Deleted))
		for _, change := range result.Deleted {
			fmt.Fprintf(&b, "  - %s (hash: %s)\n", change.Path, change.OldData.Hash)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Summary: %d added, %d modified, %d deleted\n",
		len(result.Added), len(result.Modified), len(result.Deleted))

	return b.String()
}
