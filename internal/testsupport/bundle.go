// Package testsupport provides fixture helpers shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"wfpack/internal/manifest"
)

// BundleSpec describes a fixture bundle to materialize on disk.
type BundleSpec struct {
	// Name and Version seed the manifest. Name defaults to "Fixture".
	Name    string
	Version string
	// Variables and NoExport seed the manifest variable mappings.
	Variables map[string]string
	NoExport  []string
	// Files maps bundle-relative paths to contents, created alongside
	// the manifest.
	Files map[string]string
	// WithObjects controls whether a single entrypoint object record is
	// included.
	WithObjects bool
}

// WriteBundle materializes a bundle directory under a fresh temp dir
// and returns its path.
func WriteBundle(t *testing.T, spec BundleSpec) string {
	t.Helper()
	dir := t.TempDir()

	name := spec.Name
	if name == "" {
		name = "Fixture"
	}

	m := manifest.New()
	m.Set("name", name)
	if spec.Version != "" {
		m.Set("version", spec.Version)
	}
	if len(spec.Variables) > 0 {
		vars := make(map[string]any, len(spec.Variables))
		for k, v := range spec.Variables {
			vars[k] = v
		}
		m.Set("variables", vars)
	}
	if len(spec.NoExport) > 0 {
		flagged := make([]any, 0, len(spec.NoExport))
		for _, k := range spec.NoExport {
			flagged = append(flagged, k)
		}
		m.Set("variablesdontexport", flagged)
	}
	if spec.WithObjects {
		m.Set("objects", []any{
			map[string]any{
				"type":   "alfred.workflow.input.scriptfilter",
				"config": map[string]any{"keyword": "placeholder"},
			},
		})
	}
	if err := m.Save(filepath.Join(dir, manifest.FileName)); err != nil {
		t.Fatalf("write fixture manifest: %v", err)
	}

	for rel, content := range spec.Files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create fixture dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture file %s: %v", rel, err)
		}
	}

	return dir
}
