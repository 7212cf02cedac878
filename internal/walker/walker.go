package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"examples-db/internal/tree"
)

// Options controls which entries Walk keeps.
type Options struct {
	// Extensions is the allow-list of file extensions, with or without a
	// leading dot. Matching is case-insensitive. An empty list keeps nothing.
	Extensions []string
	// Exclude holds regular expressions matched against the forward-slash
	// relative path of every file and directory.
	Exclude []string
	// IgnoreFile names an optional gitignore-syntax file at the root.
	IgnoreFile string
}

// EntryError is an entry below the root that could not be read.
type EntryError struct {
	Path string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

type WalkResult struct {
	Root   *tree.Node
	Errors []error
}

type walker struct {
	root       string
	extensions map[string]struct{}
	exclude    []*regexp.Regexp
	ignore     gitignore.IgnoreMatcher
	result     *WalkResult
}

// Walk reads the tree under rootPath. A root that cannot be read fails the
// whole walk; unreadable entries below it are collected in WalkResult.Errors.
// Symbolic links are followed, each real directory is entered once.
func Walk(rootPath string, opts Options) (*WalkResult, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to walk directory: %s is not a directory", absRoot)
	}

	w := &walker{
		root:       absRoot,
		extensions: normalizeExtensions(opts.Extensions),
		result: &WalkResult{
			Errors: make([]error, 0),
		},
	}

	for _, pattern := range opts.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		w.exclude = append(w.exclude, re)
	}

	if opts.IgnoreFile != "" {
		ignorePath := filepath.Join(absRoot, opts.IgnoreFile)
		if _, err := os.Stat(ignorePath); err == nil {
			matcher, err := gitignore.NewGitIgnore(ignorePath, absRoot)
			if err != nil {
				return nil, fmt.Errorf("failed to parse ignore file %s: %w", ignorePath, err)
			}
			w.ignore = matcher
		}
	}

	root := &tree.Node{
		Kind:         tree.KindDirectory,
		Name:         filepath.Base(absRoot),
		Path:         absRoot,
		RelativePath: ".",
	}

	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	root.Children = w.readEntries(absRoot, entries, map[string]bool{realRoot: true})
	w.result.Root = root

	return w.result, nil
}

// readEntries converts the entries of dir into nodes. visited holds the real
// paths of the directories on the current branch.
func (w *walker) readEntries(dir string, entries []os.DirEntry, visited map[string]bool) []*tree.Node {
	children := make([]*tree.Node, 0, len(entries))

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		relPath := relPosix(w.root, path)

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				// A broken link the filters would hide anyway is not an error.
				if w.shouldExclude(path, relPath, false) || !w.hasAllowedExtension(entry.Name()) {
					continue
				}
				w.addError(path, err)
				continue
			}
			isDir = info.IsDir()
		}

		if w.shouldExclude(path, relPath, isDir) {
			continue
		}

		if !isDir {
			if !w.hasAllowedExtension(entry.Name()) {
				continue
			}
			children = append(children, &tree.Node{
				Kind:         tree.KindFile,
				Name:         entry.Name(),
				Path:         path,
				RelativePath: relPath,
			})
			continue
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			w.addError(path, err)
			continue
		}
		if visited[realPath] {
			continue
		}

		subEntries, err := os.ReadDir(path)
		if err != nil {
			w.addError(path, err)
			continue
		}

		visited[realPath] = true
		node := &tree.Node{
			Kind:         tree.KindDirectory,
			Name:         entry.Name(),
			Path:         path,
			RelativePath: relPath,
		}
		node.Children = w.readEntries(path, subEntries, visited)
		delete(visited, realPath)

		children = append(children, node)
	}

	return children
}

func (w *walker) addError(path string, err error) {
	w.result.Errors = append(w.result.Errors, &EntryError{Path: path, Err: err})
}

func (w *walker) shouldExclude(path, relPath string, isDir bool) bool {
	for _, re := range w.exclude {
		if re.MatchString(relPath) {
			return true
		}
	}
	if w.ignore != nil && w.ignore.Match(path, isDir) {
		return true
	}
	return false
}

func (w *walker) hasAllowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := w.extensions[ext]
	return ok
}

func normalizeExtensions(exts []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return allowed
}

func relPosix(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
