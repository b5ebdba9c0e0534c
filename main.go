package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultRoot      = "."
	defaultIndexName = "index.md"
)

// version is the application version, set via ldflags.
var version string = "dev"

// newRootCmd builds the command with its own viper instance so repeated
// invocations (tests) never share flag state.
func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "mdindex [ROOT_PATH] [INDEX_FILE_NAME]",
		Short: "mdindex writes a Markdown table of contents for a documentation tree.",
		Long: `mdindex recursively scans ROOT_PATH (default ".") for Markdown documents
and writes ROOT_PATH/INDEX_FILE_NAME (default "index.md") linking every
document together with its last update time. The index is fully
regenerated on every run.`,
		Version:      version,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(v.GetString("log_level"), cmd.ErrOrStderr()); err != nil {
				return err
			}
			opts, err := loadOptions(v, args)
			if err != nil {
				return err
			}

			progress := cmd.OutOrStdout()
			if opts.Stdout {
				// Keep stdout clean for the document itself.
				progress = cmd.ErrOrStderr()
			}
			return run(opts, cmd.OutOrStdout(), progress)
		},
	}

	// --- Flag Definitions & Viper Binding ---
	flags := rootCmd.Flags()

	// Traversal
	flags.Bool("follow-links", true, "Follow symbolic links while scanning")
	v.BindPFlag("follow_links", flags.Lookup("follow-links"))
	flags.BoolP("hidden", "H", true, "Include hidden files and directories")
	v.BindPFlag("hidden", flags.Lookup("hidden"))
	flags.StringSliceP("exclude", "e", nil, "Glob patterns of names to skip (comma-separated, e.g. drafts,*.tmp.md)")
	v.BindPFlag("exclude", flags.Lookup("exclude"))
	flags.Bool("gitignore", false, "Respect the .gitignore file at the root")
	v.BindPFlag("gitignore", flags.Lookup("gitignore"))
	flags.Int("max-depth", 0, "Maximum directory depth to traverse (0 for no limit)")
	v.BindPFlag("max_depth", flags.Lookup("max-depth"))

	// Formatting
	flags.Bool("git-dates", false, "Use the last commit touching each file instead of its modification time")
	v.BindPFlag("git_dates", flags.Lookup("git-dates"))
	flags.Bool("quote-dates", true, "Wrap dates in double quotes, as earlier index files do")
	v.BindPFlag("quote_dates", flags.Lookup("quote-dates"))
	flags.String("sort", sortNone, "Entry order: none (traversal order), path, or mtime")
	v.BindPFlag("sort", flags.Lookup("sort"))

	// Output
	flags.BoolP("stdout", "p", false, "Print the index to stdout instead of writing it")
	v.BindPFlag("stdout", flags.Lookup("stdout"))
	flags.BoolP("clipboard", "c", false, "Also copy the index to the clipboard")
	v.BindPFlag("clipboard", flags.Lookup("clipboard"))
	flags.String("manifest", "", "Also write a YAML manifest of the indexed documents to this file")
	v.BindPFlag("manifest", flags.Lookup("manifest"))

	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	v.BindPFlag("log_level", flags.Lookup("log-level"))

	// MDINDEX_SORT=path etc.
	v.SetEnvPrefix("MDINDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return rootCmd
}

// loadOptions resolves positional arguments and flag/env settings.
func loadOptions(v *viper.Viper, args []string) (Options, error) {
	opts := Options{
		Root:         defaultRoot,
		IndexName:    defaultIndexName,
		FollowLinks:  v.GetBool("follow_links"),
		ShowHidden:   v.GetBool("hidden"),
		Excludes:     v.GetStringSlice("exclude"),
		UseGitignore: v.GetBool("gitignore"),
		MaxDepth:     v.GetInt("max_depth"),
		GitDates:     v.GetBool("git_dates"),
		QuoteDates:   v.GetBool("quote_dates"),
		SortBy:       v.GetString("sort"),
		Stdout:       v.GetBool("stdout"),
		Clipboard:    v.GetBool("clipboard"),
		ManifestFile: v.GetString("manifest"),
	}
	if len(args) > 0 {
		opts.Root = args[0]
	}
	if len(args) > 1 {
		opts.IndexName = args[1]
	}

	if opts.MaxDepth < 0 {
		return opts, fmt.Errorf("max-depth must not be negative, got %d", opts.MaxDepth)
	}
	if !slices.Contains(sortOrders, opts.SortBy) {
		return opts, fmt.Errorf("unknown sort order '%s' (expected one of %s)", opts.SortBy, strings.Join(sortOrders, ", "))
	}
	if isGitURL(opts.Root) {
		if _, err := os.Stat(opts.Root); err != nil {
			return opts, fmt.Errorf("%s looks like a remote git repository; clone it and index the working copy instead", opts.Root)
		}
	}
	return opts, nil
}

func setupLogging(level string, w io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	logrus.SetOutput(w)
	logrus.SetLevel(lvl)
	return nil
}

// run scans the tree, renders the index and hands it to the configured sinks.
func run(opts Options, out, progress io.Writer) error {
	w, err := newWalker(opts)
	if err != nil {
		return err
	}
	times, err := newTimeSource(opts)
	if err != nil {
		return err
	}

	logrus.WithField("root", opts.Root).Infoln("scanning for markdown files")
	docs, err := collectEntries(opts.Root, w.Walk(), times, progress)
	if err != nil {
		return err
	}
	if err := sortEntries(docs, opts.SortBy); err != nil {
		return err
	}
	logrus.WithField("len(docs)", len(docs)).Infoln("markdown files found")

	content := renderIndex(docs, opts.QuoteDates)

	if opts.ManifestFile != "" {
		if err := writeManifest(newManifest(opts.Root, docs, time.Now().UTC()), opts.ManifestFile); err != nil {
			return err
		}
	}
	if opts.Clipboard {
		copyIndexToClipboard(content)
	}

	if opts.Stdout {
		fmt.Fprint(out, content)
		return nil
	}

	path := indexPath(opts.Root, opts.IndexName)
	if err := writeIndex(content, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "✅  Index generated and written to: %s\n", path)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
