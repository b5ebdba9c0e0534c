package main

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
)

// indexPath joins root and name by plain concatenation; neither side is cleaned.
func indexPath(root, name string) string {
	return root + string(os.PathSeparator) + name
}

// writeIndex creates or truncates path and writes content in full.
func writeIndex(content, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write index content to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close index file %s: %w", path, err)
	}
	return nil
}

// copyIndexToClipboard is best effort; headless machines often have no clipboard.
func copyIndexToClipboard(content string) {
	if clipboard.Unsupported {
		logrus.Warnln("clipboard is not supported on this system, skipping copy")
		return
	}
	if err := clipboard.WriteAll(content); err != nil {
		logrus.WithError(err).Warnln("could not copy index to clipboard")
		return
	}
	logrus.Infoln("index copied to clipboard")
}
