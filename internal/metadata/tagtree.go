package metadata

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TagNode is a directory that contributes a tag, with the tag nodes of its
// sub-directories and every tag found below it.
type TagNode struct {
	Name            string     `json:"name"`
	Children        []*TagNode `json:"children"`
	AllChildrenTags *TagSet    `json:"allChildrenTags"`
}

// SortTagsTree returns a copy of nodes where every level, and every
// AllChildrenTags set, is in locale-aware lexicographic order.
func SortTagsTree(nodes []*TagNode) []*TagNode {
	return sortTagNodes(newCollator(), nodes)
}

func sortTagNodes(c *collate.Collator, nodes []*TagNode) []*TagNode {
	sorted := make([]*TagNode, 0, len(nodes))
	for _, node := range nodes {
		sorted = append(sorted, &TagNode{
			Name:            node.Name,
			Children:        sortTagNodes(c, node.Children),
			AllChildrenTags: NewTagSet(sortStrings(c, node.AllChildrenTags.Values())...),
		})
	}
	slices.SortStableFunc(sorted, func(a, b *TagNode) int {
		return compareStrings(c, a.Name, b.Name)
	})
	return sorted
}

// SortTags returns tags in the same order SortTagsTree uses.
func SortTags(tags []string) []string {
	return sortStrings(newCollator(), append([]string{}, tags...))
}

func sortStrings(c *collate.Collator, tags []string) []string {
	slices.SortStableFunc(tags, func(a, b string) int {
		return compareStrings(c, a, b)
	})
	return tags
}

// compareStrings falls back to byte order when the collator sees two
// distinct strings as equal, so the order stays total.
func compareStrings(c *collate.Collator, a, b string) int {
	if r := c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// A Collator keeps scratch buffers and must not be shared across goroutines.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}
