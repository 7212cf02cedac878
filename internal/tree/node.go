package tree

// Kind distinguishes files from directories.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Node is one entry of a scanned file tree. Children keep filesystem
// enumeration order and are always empty for files.
type Node struct {
	Kind         Kind    `json:"type"`
	Name         string  `json:"name"`
	Path         string  `json:"path"`
	RelativePath string  `json:"relativePath"`
	Children     []*Node `json:"children,omitempty"`
}

func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

// CountDirectories returns the number of directory nodes in the tree,
// including n itself.
func CountDirectories(n *Node) int {
	if n == nil || !n.IsDir() {
		return 0
	}
	count := 1
	for _, child := range n.Children {
		count += CountDirectories(child)
	}
	return count
}

// CountFiles returns the number of file nodes in the tree.
func CountFiles(n *Node) int {
	if n == nil {
		return 0
	}
	if !n.IsDir() {
		return 1
	}
	count := 0
	for _, child := range n.Children {
		count += CountFiles(child)
	}
	return count
}
