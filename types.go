package main

import (
	"io/fs"
	"time"
)

// Options holds the resolved settings for a single index run.
type Options struct {
	Root      string
	IndexName string

	// Traversal
	FollowLinks  bool
	ShowHidden   bool
	Excludes     []string
	UseGitignore bool
	MaxDepth     int

	// Formatting
	GitDates   bool
	QuoteDates bool
	SortBy     string

	// Output
	Stdout       bool
	Clipboard    bool
	ManifestFile string
}

// entry is one filesystem object visited during traversal.
type entry struct {
	Path  string
	Info  fs.FileInfo // Resolved through symlinks when links are followed
	Depth int
}

// DocEntry is a Markdown document that made it into the index.
type DocEntry struct {
	Path    string // Relative to the root, slash separated
	Updated time.Time
}
