package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"examples-db/internal/tree"
)

var utf8BOM = []byte("\ufeff")

type Options struct {
	TagFile     string
	LicenseFile string // compared case-insensitively
	SampleImage string
	// IgnoredTagNames are folder names that never become tags. Their content
	// is attached to the enclosing tag.
	IgnoredTagNames []string
	// Concurrency bounds the number of metadata files read at once.
	Concurrency int
	// OnDirectory, when set, is called once per finished directory. It may be
	// called from several goroutines.
	OnDirectory func(path string)
	Logger      *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		TagFile:     "TAGS.md",
		LicenseFile: "license.txt",
		SampleImage: "Sample.png",
		IgnoredTagNames: []string{
			"Retina", "PNG", "SVG", "Master", "Default size", "Sprites", "Sprites X2",
		},
		Concurrency: 16,
	}
}

// Result is the output of an enhancement walk. Errors holds data-quality
// problems; the tree is complete as far as the files allowed.
type Result struct {
	TagsTree []*TagNode
	AllTags  *TagSet
	Tree     *Node
	Errors   []error
}

type Enhancer struct {
	opts    Options
	ignored map[string]struct{}
	sem     *semaphore.Weighted
	log     *zap.Logger
}

func NewEnhancer(opts Options) *Enhancer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ignored := make(map[string]struct{}, len(opts.IgnoredTagNames))
	for _, name := range opts.IgnoredTagNames {
		ignored[name] = struct{}{}
	}
	return &Enhancer{
		opts:    opts,
		ignored: ignored,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		log:     log,
	}
}

// Enhance walks root and attaches to every node the metadata inherited from
// its ancestors: folder tags, tag files, license files. JSON and Markdown
// files get their parsed content. The only error returned is a context
// error; everything else is reported in Result.Errors.
func (e *Enhancer) Enhance(ctx context.Context, root *tree.Node, initial Context) (*Result, error) {
	if root == nil {
		return nil, fmt.Errorf("enhance: nil tree")
	}
	return e.enhance(ctx, root, initial)
}

type fileRole int

const (
	roleOther fileRole = iota
	roleTags
	roleLicense
	roleSample
	roleJSON
	roleMarkdown
)

func (e *Enhancer) roleOf(name string) fileRole {
	switch {
	case name == e.opts.TagFile:
		return roleTags
	case strings.EqualFold(name, e.opts.LicenseFile):
		return roleLicense
	case name == e.opts.SampleImage:
		return roleSample
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return roleJSON
	case ".md":
		return roleMarkdown
	}
	return roleOther
}

// discovery is what pass 1 learned from one metadata file.
type discovery struct {
	role    fileRole
	tags    []string
	license LicenseMatch
	empty   bool
	content *Content
	err     error
}

func (e *Enhancer) enhance(ctx context.Context, n *tree.Node, parent Context) (*Result, error) {
	meta := parent.clone()
	result := &Result{
		TagsTree: []*TagNode{},
		AllTags:  NewTagSet(),
		Errors:   []error{},
	}

	if !n.IsDir() {
		result.Tree = newNode(n, meta, nil)
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Pass 1: read the metadata files of this directory.
	discoveries := make([]*discovery, len(n.Children))
	g, gctx := errgroup.WithContext(ctx)
	for i, child := range n.Children {
		if child.IsDir() {
			continue
		}
		role := e.roleOf(child.Name)
		if role == roleOther || role == roleSample {
			continue
		}
		g.Go(func() error {
			if err := e.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer e.sem.Release(1)
			discoveries[i] = e.discover(child, role, parent.AllAuthors, parent.AllLicenses)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	contents := make(map[string]*Content)
	for i, d := range discoveries {
		if d == nil {
			continue
		}
		child := n.Children[i]
		if d.err != nil {
			result.Errors = append(result.Errors, d.err)
			continue
		}
		switch d.role {
		case roleTags:
			for _, tag := range d.tags {
				result.AllTags.Add(tag)
				meta.addTag(tag)
			}
		case roleLicense:
			if d.license.LicenseName != "" {
				meta.License = d.license.LicenseName
			} else if !d.empty {
				result.Errors = append(result.Errors, NewError(UnknownLicense, child.Path, "no known license token found"))
			}
			if d.license.AuthorName != "" {
				meta.addAuthor(d.license.AuthorName)
			}
		case roleJSON, roleMarkdown:
			contents[child.Name] = d.content
		}
	}

	// Pass 2: build this level of the tree, recursing into directories.
	subResults := make([]*Result, len(n.Children))
	tagNames := make([]string, len(n.Children))
	g, gctx = errgroup.WithContext(ctx)
	for i, child := range n.Children {
		if !child.IsDir() {
			continue
		}
		tagName := SanitizeTag(child.Name)
		tagNames[i] = tagName
		childCtx := meta
		if !e.isIgnoredTag(tagName) {
			childCtx = meta.withTag(tagName)
		}
		g.Go(func() error {
			sub, err := e.enhance(gctx, child, childCtx)
			if err != nil {
				return err
			}
			subResults[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	enhanced := newNode(n, meta, nil)
	enhanced.Children = make([]*Node, 0, len(n.Children))
	for i, child := range n.Children {
		if !child.IsDir() {
			if e.roleOf(child.Name) == roleSample {
				continue
			}
			enhanced.Children = append(enhanced.Children, newNode(child, meta.clone(), contents[child.Name]))
			continue
		}

		sub := subResults[i]
		tagName := tagNames[i]
		if e.isIgnoredTag(tagName) {
			result.TagsTree = append(result.TagsTree, sub.TagsTree...)
		} else {
			result.TagsTree = append(result.TagsTree, &TagNode{
				Name:            tagName,
				Children:        sub.TagsTree,
				AllChildrenTags: sub.AllTags,
			})
			result.AllTags.Add(tagName)
		}
		result.AllTags.Union(sub.AllTags)
		result.Errors = append(result.Errors, sub.Errors...)
		enhanced.Children = append(enhanced.Children, sub.Tree)
	}
	result.Tree = enhanced

	e.log.Debug("directory enhanced",
		zap.String("path", n.RelativePath),
		zap.Strings("tags", meta.Tags),
		zap.String("license", meta.License),
		zap.Int("errors", len(result.Errors)))
	if e.opts.OnDirectory != nil {
		e.opts.OnDirectory(n.Path)
	}

	return result, nil
}

// isIgnoredTag reports whether a sanitized folder name is transparent in
// the tag tree. A name that sanitizes to nothing is transparent as well.
func (e *Enhancer) isIgnoredTag(tagName string) bool {
	if tagName == "" {
		return true
	}
	_, ok := e.ignored[tagName]
	return ok
}

func (e *Enhancer) discover(n *tree.Node, role fileRole, authors, licenses []Entry) *discovery {
	d := &discovery{role: role}

	data, err := os.ReadFile(n.Path)
	if err != nil {
		switch role {
		case roleJSON:
			d.err = newError(InvalidJSON, n.Path, err)
		case roleMarkdown:
			d.err = newError(UnreadableMarkdown, n.Path, err)
		default:
			d.err = newError(UnreadableFile, n.Path, err)
		}
		return d
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	switch role {
	case roleTags:
		for _, raw := range strings.Split(strings.ToLower(string(data)), ",") {
			if tag := SanitizeTag(raw); tag != "" {
				d.tags = append(d.tags, tag)
			}
		}
	case roleLicense:
		content := string(data)
		d.empty = strings.TrimSpace(content) == ""
		d.license = ExtractLicense(authors, licenses, content)
	case roleJSON:
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			d.err = NewError(InvalidJSON, n.Path, "is it valid JSON? %w", err)
			return d
		}
		d.content = &Content{Kind: ContentJSON, JSON: value}
	case roleMarkdown:
		d.content = &Content{Kind: ContentMarkdown, Text: string(data)}
	}
	return d
}
