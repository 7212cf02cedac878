package metadata

import (
	"encoding/json"
	"slices"
)

// Entry pairs a display name with the token searched for in license files.
type Entry struct {
	Name        string `json:"name"`
	SearchToken string `json:"searchToken"`
}

// Context is the metadata inherited by every node below a directory. A
// Context is a value: each level works on its own clone and never writes to
// its parent's slices.
type Context struct {
	Tags    []string `json:"tags"`
	License string   `json:"license"`
	Authors []string `json:"authors"`

	AllAuthors  []Entry `json:"-"`
	AllLicenses []Entry `json:"-"`
}

func (c Context) clone() Context {
	c.Tags = append([]string(nil), c.Tags...)
	c.Authors = append([]string(nil), c.Authors...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Authors == nil {
		c.Authors = []string{}
	}
	return c
}

func (c Context) withTag(tag string) Context {
	next := c.clone()
	next.addTag(tag)
	return next
}

func (c *Context) addTag(tag string) {
	if !slices.Contains(c.Tags, tag) {
		c.Tags = append(c.Tags, tag)
	}
}

func (c *Context) addAuthor(author string) {
	if !slices.Contains(c.Authors, author) {
		c.Authors = append(c.Authors, author)
	}
}

// TagSet is a set of tags that remembers insertion order.
type TagSet struct {
	order []string
	index map[string]struct{}
}

func NewTagSet(tags ...string) *TagSet {
	s := &TagSet{index: make(map[string]struct{}, len(tags))}
	for _, tag := range tags {
		s.Add(tag)
	}
	return s
}

func (s *TagSet) Add(tag string) {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[tag]; ok {
		return
	}
	s.index[tag] = struct{}{}
	s.order = append(s.order, tag)
}

// Union adds every tag of other, in other's order.
func (s *TagSet) Union(other *TagSet) {
	if other == nil {
		return
	}
	for _, tag := range other.order {
		s.Add(tag)
	}
}

func (s *TagSet) Contains(tag string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[tag]
	return ok
}

func (s *TagSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Values returns a copy of the tags in insertion order.
func (s *TagSet) Values() []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s.order...)
}

func (s *TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = TagSet{}
	for _, tag := range tags {
		s.Add(tag)
	}
	return nil
}
