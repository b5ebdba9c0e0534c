package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
)

// timeSource resolves the "last update" timestamp of a document.
type timeSource interface {
	LastUpdate(path string) (time.Time, error)
}

// mtimeSource reads the filesystem modification time, reported in UTC.
// With noFollow set a symlink reports its own time instead of its target's.
type mtimeSource struct {
	noFollow bool
}

func (m mtimeSource) LastUpdate(path string) (time.Time, error) {
	stat := os.Stat
	if m.noFollow {
		stat = os.Lstat
	}
	info, err := stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime().UTC(), nil
}

// gitSource reports the committer time of the most recent commit touching a
// file, keeping the committer's offset. Files git knows nothing about fall
// back to their modification time.
type gitSource struct {
	repo     *git.Repository
	top      string
	fallback timeSource
}

// newGitSource opens the repository containing root, searching parent
// directories for the .git directory.
func newGitSource(root string) (*gitSource, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository for %s: %w", root, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree for %s: %w", root, err)
	}
	top, err := canonicalPath(wt.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve worktree root: %w", err)
	}

	logrus.WithField("worktree", top).Debugln("using git history for timestamps")
	return &gitSource{repo: repo, top: top, fallback: mtimeSource{}}, nil
}

func (g *gitSource) LastUpdate(path string) (time.Time, error) {
	abs, err := canonicalPath(path)
	if err != nil {
		return time.Time{}, err
	}
	rel, err := filepath.Rel(g.top, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return g.fallback.LastUpdate(path)
	}
	rel = filepath.ToSlash(rel)

	commits, err := g.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// No HEAD yet, nothing has been committed.
			return g.fallback.LastUpdate(path)
		}
		return time.Time{}, fmt.Errorf("failed to read git log for %s: %w", rel, err)
	}
	defer commits.Close()

	commit, err := commits.Next()
	if errors.Is(err, io.EOF) {
		logrus.WithField("path", rel).Debugln("file not in git history, using mtime")
		return g.fallback.LastUpdate(path)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read git log for %s: %w", rel, err)
	}
	return commit.Committer.When, nil
}

// newTimeSource picks the timestamp source for the run.
func newTimeSource(opts Options) (timeSource, error) {
	if !opts.GitDates {
		return mtimeSource{noFollow: !opts.FollowLinks}, nil
	}
	return newGitSource(opts.Root)
}

// isGitURL checks if the input string looks like a Git repository URL.
// Remote repositories are not scanned: the index has to be written next to the documents.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") ||
		strings.HasPrefix(input, "git@")
}
