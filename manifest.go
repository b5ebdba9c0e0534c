package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is the machine-readable companion of the index document.
type Manifest struct {
	Root        string          `yaml:"root"`
	GeneratedAt time.Time       `yaml:"generated_at"`
	Entries     []ManifestEntry `yaml:"entries"`
}

// ManifestEntry mirrors one line of the index.
type ManifestEntry struct {
	Path    string    `yaml:"path"`
	Updated time.Time `yaml:"updated"`
}

func newManifest(root string, docs []DocEntry, now time.Time) Manifest {
	m := Manifest{
		Root:        root,
		GeneratedAt: now,
		Entries:     make([]ManifestEntry, 0, len(docs)),
	}
	for _, doc := range docs {
		m.Entries = append(m.Entries, ManifestEntry{Path: doc.Path, Updated: doc.Updated})
	}
	return m
}

// writeManifest encodes m as YAML to path, replacing any previous manifest.
func writeManifest(m Manifest, path string) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("error encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("error writing manifest %s: %w", path, err)
	}
	return nil
}
