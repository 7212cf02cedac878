package tree

import "slices"

const (
	defaultSizeDir = "Default size"
	spritesDir     = "Sprites"
	spritesX2Dir   = "Sprites X2"
)

// FilterOptions configures FilterIgnored.
type FilterOptions struct {
	// MagicIgnoreFiles are file names whose presence as a direct child marks
	// the whole directory as ignored.
	MagicIgnoreFiles []string
}

func DefaultFilterOptions() FilterOptions {
	return FilterOptions{MagicIgnoreFiles: []string{"IGNORED.md"}}
}

// Filter prunes ignored and empty directories from root. It returns nil
// when nothing is left. The input tree is not modified.
func Filter(root *Node, opts FilterOptions) *Node {
	return FilterIgnored(root, nil, opts)
}

// FilterIgnored filters n given the names of its siblings (including its own
// name). Directories are dropped when they are named "Default size", when they
// are a "Sprites" folder superseded by a "Sprites X2" sibling, when a direct
// child file is a magic ignore file, or when no child survives filtering.
func FilterIgnored(n *Node, siblingNames []string, opts FilterOptions) *Node {
	if n == nil {
		return nil
	}
	if !n.IsDir() {
		return n
	}

	if n.Name == defaultSizeDir {
		return nil
	}
	if n.Name == spritesDir && slices.Contains(siblingNames, spritesX2Dir) {
		return nil
	}
	for _, child := range n.Children {
		if !child.IsDir() && slices.Contains(opts.MagicIgnoreFiles, child.Name) {
			return nil
		}
	}

	childNames := make([]string, len(n.Children))
	for i, child := range n.Children {
		childNames[i] = child.Name
	}

	children := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		if filtered := FilterIgnored(child, childNames, opts); filtered != nil {
			children = append(children, filtered)
		}
	}
	if len(children) == 0 {
		return nil
	}

	filtered := *n
	filtered.Children = children
	return &filtered
}
