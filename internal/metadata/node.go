package metadata

import (
	"encoding/json"

	"examples-db/internal/tree"
)

// ContentKind tells which kind of parsed content a file carries.
type ContentKind string

const (
	ContentJSON     ContentKind = "json"
	ContentMarkdown ContentKind = "markdown"
)

// Content is the parsed body of a recognized file. JSON holds the decoded
// value for ContentJSON, Text the BOM-stripped text for ContentMarkdown.
type Content struct {
	Kind ContentKind
	JSON any
	Text string
}

func (c *Content) MarshalJSON() ([]byte, error) {
	if c.Kind == ContentMarkdown {
		return json.Marshal(c.Text)
	}
	return json.Marshal(c.JSON)
}

// Node is a file tree node with the metadata active at its position.
type Node struct {
	Kind         tree.Kind `json:"type"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	RelativePath string    `json:"relativePath"`
	Context
	Content  *Content `json:"parsedContent,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

func (n *Node) IsDir() bool {
	return n.Kind == tree.KindDirectory
}

// JSONContent returns the decoded JSON of a .json file.
func (n *Node) JSONContent() (any, bool) {
	if n.Content == nil || n.Content.Kind != ContentJSON {
		return nil, false
	}
	return n.Content.JSON, true
}

// MarkdownContent returns the text of a .md file.
func (n *Node) MarkdownContent() (string, bool) {
	if n.Content == nil || n.Content.Kind != ContentMarkdown {
		return "", false
	}
	return n.Content.Text, true
}

func newNode(src *tree.Node, ctx Context, content *Content) *Node {
	return &Node{
		Kind:         src.Kind,
		Name:         src.Name,
		Path:         src.Path,
		RelativePath: src.RelativePath,
		Context:      ctx,
		Content:      content,
	}
}
