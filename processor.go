package main

import (
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/sirupsen/logrus"
)

// walker enumerates everything reachable from a root directory.
type walker struct {
	root          string
	followLinks   bool
	showHidden    bool
	excludes      []string
	maxDepth      int
	ignoreMatcher gitignore.IgnoreMatcher
}

// newWalker validates the traversal options and loads the root .gitignore if requested.
func newWalker(opts Options) (*walker, error) {
	for _, pattern := range opts.Excludes {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	w := &walker{
		root:        opts.Root,
		followLinks: opts.FollowLinks,
		showHidden:  opts.ShowHidden,
		excludes:    opts.Excludes,
		maxDepth:    opts.MaxDepth,
	}

	if opts.UseGitignore {
		gitIgnorePath := filepath.Join(opts.Root, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			matcher, err := gitignore.NewGitIgnore(gitIgnorePath, opts.Root)
			if err != nil {
				return nil, fmt.Errorf("could not parse .gitignore file %s: %w", gitIgnorePath, err)
			}
			w.ignoreMatcher = matcher
		} else {
			logrus.WithField("path", gitIgnorePath).Debugln("no .gitignore found, nothing to honor")
		}
	}

	return w, nil
}

// Walk returns a single-use sequence of entries in pre-order, directory
// contents in lexical order. Entries that cannot be read are dropped.
func (w *walker) Walk() iter.Seq[entry] {
	return func(yield func(entry) bool) {
		w.visit(w.root, 0, nil, yield)
	}
}

func (w *walker) stat(path string) (fs.FileInfo, error) {
	if w.followLinks {
		return os.Stat(path)
	}
	return os.Lstat(path)
}

// visit reports false once the consumer stops iterating.
func (w *walker) visit(path string, depth int, ancestors []string, yield func(entry) bool) bool {
	log := logrus.WithField("path", path)

	info, err := w.stat(path)
	if err != nil {
		log.WithError(err).Debugln("skipping unreadable entry")
		return true
	}

	if depth > 0 && w.skip(path, info) {
		return true
	}

	var realPath string
	if info.IsDir() {
		realPath, err = canonicalPath(path)
		if err != nil {
			log.WithError(err).Debugln("skipping unresolvable directory")
			return true
		}
		if slices.Contains(ancestors, realPath) {
			log.WithField("target", realPath).Debugln("skipping symlink loop")
			return true
		}
	}

	if !yield(entry{Path: path, Info: info, Depth: depth}) {
		return false
	}

	if !info.IsDir() || (w.maxDepth > 0 && depth >= w.maxDepth) {
		return true
	}

	// os.ReadDir returns whatever it read before failing; use it.
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		log.WithError(err).Debugln("directory partially enumerated")
	}

	ancestors = append(ancestors, realPath)
	for _, d := range dirEntries {
		if !w.visit(filepath.Join(path, d.Name()), depth+1, ancestors, yield) {
			return false
		}
	}
	return true
}

// skip applies the hidden, exclude and .gitignore filters to a non-root entry.
func (w *walker) skip(path string, info fs.FileInfo) bool {
	baseName := info.Name()

	if !w.showHidden && isHidden(baseName) {
		return true
	}

	for _, pattern := range w.excludes {
		// Patterns were validated in newWalker.
		if matched, _ := filepath.Match(pattern, baseName); matched {
			return true
		}
	}

	if w.ignoreMatcher != nil && w.ignoreMatcher.Match(path, info.IsDir()) {
		return true
	}
	return false
}

func canonicalPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// isHidden checks if a base name is hidden (starts with '.').
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return len(name) > 0 && name[0] == '.'
}

// isMarkdownFile reports whether the entry is a regular file with an "md"
// extension, compared case-insensitively. A leading dot does not start an
// extension, so ".md" on its own is not a Markdown file.
func isMarkdownFile(e entry) bool {
	if e.Info.IsDir() {
		return false
	}
	name := filepath.Base(e.Path)
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return false
	}
	return strings.EqualFold(name[dot+1:], "md")
}

// relativePath strips root from path. It fails for the root itself and for
// anything that does not lie beneath the root.
func relativePath(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// collectEntries consumes the walk and keeps every Markdown document, printing
// one progress line per match. A timestamp failure aborts the whole run.
func collectEntries(root string, entries iter.Seq[entry], times timeSource, progress io.Writer) ([]DocEntry, error) {
	var docs []DocEntry
	for e := range entries {
		if !isMarkdownFile(e) {
			continue
		}

		rel, ok := relativePath(root, e.Path)
		if !ok {
			logrus.WithField("path", e.Path).WithField("root", root).Debugln("entry is not below root, skipping")
			continue
		}

		updated, err := times.LastUpdate(e.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read last update of %s: %w", e.Path, err)
		}

		docs = append(docs, DocEntry{Path: rel, Updated: updated})
		fmt.Fprintf(progress, "📄 %s \n", rel)
	}
	return docs, nil
}
