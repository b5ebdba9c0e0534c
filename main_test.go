package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryLine = regexp.MustCompile(`^- \[([^\]]+)\]\(([^)]+)\)  <sub>Last update: "\d{4}-\d{2}-\d{2}-\d{2}:\d{2}:\d{2}"</sub>  $`)

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// indexedPaths returns the link targets listed in an index document.
func indexedPaths(t *testing.T, content string) []string {
	t.Helper()
	require.True(t, strings.HasPrefix(content, indexHeader), "missing header in %q", content)
	require.True(t, strings.HasSuffix(content, indexTrailer), "missing trailer in %q", content)

	body := strings.TrimSuffix(strings.TrimPrefix(content, indexHeader), indexTrailer)
	paths := []string{}
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			continue
		}
		m := entryLine.FindStringSubmatch(line)
		require.NotNil(t, m, "unexpected index line %q", line)
		assert.Equal(t, m[1], m[2], "link text and target differ")
		paths = append(paths, m[2])
	}
	return paths
}

func readIndex(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestIndexListsMarkdownFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md", "b.MD", "sub/c.md", "readme.txt", "NOTES")

	out, err := execute(t, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.md", "b.MD", "sub/c.md"}, indexedPaths(t, readIndex(t, filepath.Join(root, "index.md"))))
	assert.Contains(t, out, "📄 a.md \n")
	assert.Contains(t, out, "📄 sub/c.md \n")
	assert.NotContains(t, out, "readme.txt")
	assert.Contains(t, out, "✅  Index generated and written to: "+root+string(os.PathSeparator)+"index.md\n")
}

func TestIndexOfEmptyRoot(t *testing.T) {
	root := t.TempDir()

	_, err := execute(t, root)
	require.NoError(t, err)
	assert.Equal(t, indexHeader+indexTrailer, readIndex(t, filepath.Join(root, "index.md")))
}

func TestIndexWithCustomName(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	writeTree(t, docs, "guide.md")

	_, err := execute(t, docs, "custom.md")
	require.NoError(t, err)

	assert.Equal(t, []string{"guide.md"}, indexedPaths(t, readIndex(t, filepath.Join(docs, "custom.md"))))
	assert.NoFileExists(t, filepath.Join(docs, "index.md"))
}

func TestIndexDefaultsToCurrentDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md")
	t.Chdir(root)

	out, err := execute(t)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.md"}, indexedPaths(t, readIndex(t, filepath.Join(root, "index.md"))))
	assert.Contains(t, out, "written to: ."+string(os.PathSeparator)+"index.md")
}

func TestRerunListsIndexAndKeepsOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "z.md", "a.md", "sub/c.md")
	indexFile := filepath.Join(root, "index.md")

	_, err := execute(t, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "sub/c.md", "z.md"}, indexedPaths(t, readIndex(t, indexFile)))

	_, err = execute(t, root)
	require.NoError(t, err)
	second := indexedPaths(t, readIndex(t, indexFile))
	assert.Equal(t, []string{"a.md", "index.md", "sub/c.md", "z.md"}, second)

	_, err = execute(t, root)
	require.NoError(t, err)
	assert.Equal(t, second, indexedPaths(t, readIndex(t, indexFile)))
}

func TestStdoutDoesNotWrite(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{root, "--stdout"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, []string{"a.md"}, indexedPaths(t, stdout.String()))
	assert.Contains(t, stderr.String(), "📄 a.md")
	assert.NoFileExists(t, filepath.Join(root, "index.md"))
}

func TestQuoteDatesFromEnvironment(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md")
	t.Setenv("MDINDEX_QUOTE_DATES", "false")

	_, err := execute(t, root)
	require.NoError(t, err)

	content := readIndex(t, filepath.Join(root, "index.md"))
	assert.Regexp(t, `<sub>Last update: \d{4}-\d{2}-\d{2}-\d{2}:\d{2}:\d{2}</sub>`, content)
	assert.NotContains(t, content, `Last update: "`)
}

func TestSortByPath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "b.md", "a/z.md", "a.md")

	_, err := execute(t, root, "--sort", "path")
	require.NoError(t, err)
	// Traversal order would put the directory "a" before "a.md".
	assert.Equal(t, []string{"a.md", "a/z.md", "b.md"}, indexedPaths(t, readIndex(t, filepath.Join(root, "index.md"))))
}

func TestManifestFlag(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md", "sub/b.md")
	manifestFile := filepath.Join(t.TempDir(), "index.yml")

	_, err := execute(t, root, "--manifest", manifestFile)
	require.NoError(t, err)

	raw, err := os.ReadFile(manifestFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "path: a.md")
	assert.Contains(t, string(raw), "path: sub/b.md")
}

func TestCommandErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unwritable destination", []string{root, filepath.Join("missing", "index.md")}, "failed to create index file"},
		{"unknown sort", []string{root, "--sort", "size"}, "unknown sort order"},
		{"negative depth", []string{root, "--max-depth=-1"}, "max-depth"},
		{"bad log level", []string{root, "--log-level", "loud"}, "invalid log level"},
		{"remote repository", []string{"git@github.com:org/docs.git"}, "remote git repository"},
		{"git dates outside repository", []string{root, "--git-dates"}, "failed to open git repository"},
		{"too many args", []string{root, "index.md", "extra"}, "accepts at most 2 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
