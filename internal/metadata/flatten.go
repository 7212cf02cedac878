package metadata

// Flatten indexes every file of an enhanced tree by its absolute path.
// Directories are traversed but never indexed.
func Flatten(root *Node) map[string]*Node {
	files := make(map[string]*Node)
	flattenInto(root, files)
	return files
}

func flattenInto(n *Node, files map[string]*Node) {
	if n == nil {
		return
	}
	if !n.IsDir() {
		files[n.Path] = n
		return
	}
	for _, child := range n.Children {
		flattenInto(child, files)
	}
}
