package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"wfpack/internal/archive"
	"wfpack/internal/config"
	"wfpack/internal/history"
	"wfpack/internal/manifest"
	"wfpack/internal/testsupport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(t.TempDir(), "staging")
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.History.Enabled = false
	return &cfg
}

func newTestPipeline(t *testing.T, cfg *config.Config, store *history.Store) *Pipeline {
	t.Helper()
	return New(cfg, nil, archive.Zip{Level: 1}, store)
}

func TestRunBuildsSingleBundle(t *testing.T) {
	cfg := testConfig(t)
	bundle := testsupport.WriteBundle(t, testsupport.BundleSpec{
		Name:        "Old Name",
		Version:     "0.9",
		WithObjects: true,
		Files: map[string]string{
			"entrypoint.py": "print()",
			"README.md":     "docs here",
			"skip.pyc":      "byte",
		},
	})

	p := newTestPipeline(t, cfg, nil)
	opts := Options{
		Overrides: manifest.Overrides{
			Name:            "Demo",
			Version:         "1.2",
			ReadmePath:      "README.md",
			DescriptionPath: "description.txt",
		},
	}

	results, ok := p.Run(context.Background(), opts, []string{bundle})
	if !ok {
		t.Fatalf("run failed: %+v", results)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}

	artifact := results[0].Artifact
	if filepath.Base(artifact) != "Demo-1.2"+archive.Extension {
		t.Errorf("artifact = %q", artifact)
	}

	// Excluded entries never reach the archive.
	reader, err := zip.OpenReader(artifact)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer reader.Close()
	for _, file := range reader.File {
		if file.Name == "skip.pyc" {
			t.Error("excluded file present in artifact")
		}
	}

	// The source manifest was rewritten in place.
	m, err := manifest.Load(filepath.Join(bundle, manifest.FileName))
	if err != nil {
		t.Fatalf("reload source manifest: %v", err)
	}
	if m.Name() != "Demo" || m.Version() != "1.2" {
		t.Errorf("source manifest not rewritten: name=%q version=%q", m.Name(), m.Version())
	}
	if m.Readme() != "docs here" {
		t.Errorf("readme = %q", m.Readme())
	}
	if m.EntrypointUID() != manifest.EntrypointID("Demo") {
		t.Errorf("uid = %q", m.EntrypointUID())
	}
}

func TestRunRedactsOnlyStagedCopy(t *testing.T) {
	cfg := testConfig(t)
	bundle := testsupport.WriteBundle(t, testsupport.BundleSpec{
		Name:      "Vars",
		Variables: map[string]string{"TOKEN": "secret"},
		NoExport:  []string{"TOKEN"},
	})

	p := newTestPipeline(t, cfg, nil)
	results, ok := p.Run(context.Background(), Options{
		Overrides: manifest.Overrides{Name: "Vars"},
	}, []string{bundle})
	if !ok {
		t.Fatalf("run failed: %+v", results)
	}

	// Source manifest keeps the secret; only the shipped copy is clean.
	m, err := manifest.Load(filepath.Join(bundle, manifest.FileName))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	variables, _ := m.Attr("variables")
	if variables.(map[string]any)["TOKEN"] != "secret" {
		t.Error("source manifest was redacted; only the staged copy should be")
	}

	reader, err := zip.OpenReader(results[0].Artifact)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer reader.Close()
	for _, file := range reader.File {
		if file.Name != manifest.FileName {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open packed manifest: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read packed manifest: %v", err)
		}
		if len(data) == 0 {
			t.Fatal("empty packed manifest")
		}
		packed := filepath.Join(t.TempDir(), "packed.plist")
		if err := os.WriteFile(packed, data, 0o644); err != nil {
			t.Fatalf("write packed manifest: %v", err)
		}
		pm, err := manifest.Load(packed)
		if err != nil {
			t.Fatalf("parse packed manifest: %v", err)
		}
		pv, _ := pm.Attr("variables")
		if pv.(map[string]any)["TOKEN"] != "" {
			t.Error("packed manifest not redacted")
		}
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	cfg := testConfig(t)

	good := testsupport.WriteBundle(t, testsupport.BundleSpec{Name: "Good", Version: "1.0"})
	blocked := testsupport.WriteBundle(t, testsupport.BundleSpec{Name: "Blocked", Version: "1.0"})

	// Pre-create Blocked's destination so its build is refused.
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	existing := filepath.Join(cfg.Paths.OutputDir, "Conflict-1.0"+archive.Extension)
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}

	p := newTestPipeline(t, cfg, nil)
	opts := Options{Overrides: manifest.Overrides{Name: "Conflict", Version: "1.0"}}

	results, ok := p.Run(context.Background(), opts, []string{blocked, good})
	if ok {
		t.Fatal("run should report failure")
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if !errors.Is(results[0].Err, archive.ErrDestinationExists) {
		t.Errorf("first bundle err = %v", results[0].Err)
	}
	// First bundle's refusal must not have modified the existing file.
	data, _ := os.ReadFile(existing)
	if string(data) != "old" {
		t.Error("existing artifact modified despite refusal")
	}
	// Both bundles target the same destination name, so the second is
	// refused as well.
	if results[1].Err == nil {
		t.Error("second bundle should also be refused for same destination")
	}
}

func TestRunIndependentBundlesAggregateFailure(t *testing.T) {
	cfg := testConfig(t)

	good := testsupport.WriteBundle(t, testsupport.BundleSpec{Name: "Good"})
	broken := filepath.Join(t.TempDir(), "no-manifest")
	if err := os.MkdirAll(broken, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	p := newTestPipeline(t, cfg, nil)
	opts := Options{Overrides: manifest.Overrides{Name: "Solo"}}

	results, ok := p.Run(context.Background(), opts, []string{broken, good})
	if ok {
		t.Fatal("aggregate must fail when any bundle fails")
	}

	var readErr *manifest.ReadError
	if !errors.As(results[0].Err, &readErr) {
		t.Errorf("first bundle err = %v", results[0].Err)
	}
	if results[1].Failed() {
		t.Errorf("good bundle should still build: %v", results[1].Err)
	}
	if _, err := os.Stat(results[1].Artifact); err != nil {
		t.Errorf("good bundle artifact missing: %v", err)
	}
}

func TestRunCleansStaging(t *testing.T) {
	cfg := testConfig(t)
	bundle := testsupport.WriteBundle(t, testsupport.BundleSpec{Name: "Tidy"})

	p := newTestPipeline(t, cfg, nil)
	_, ok := p.Run(context.Background(), Options{
		Overrides: manifest.Overrides{Name: "Tidy"},
	}, []string{bundle})
	if !ok {
		t.Fatal("run failed")
	}

	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read staging root: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Errorf("staging directory left behind: %s", entry.Name())
		}
	}
}

func TestRunRecordsReceipts(t *testing.T) {
	cfg := testConfig(t)
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	bundle := testsupport.WriteBundle(t, testsupport.BundleSpec{Name: "Receipt", Version: "2.0"})
	p := newTestPipeline(t, cfg, store)

	_, ok := p.Run(context.Background(), Options{
		Overrides: manifest.Overrides{Name: "Receipt", Version: "2.0"},
	}, []string{bundle})
	if !ok {
		t.Fatal("run failed")
	}

	records, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d receipts", len(records))
	}
	if records[0].Status != history.StatusSucceeded {
		t.Errorf("status = %q", records[0].Status)
	}
	if records[0].Name != "Receipt" || records[0].Version != "2.0" {
		t.Errorf("receipt fields = %+v", records[0])
	}
}

func TestRunRebuildIsStable(t *testing.T) {
	cfg := testConfig(t)
	bundle := testsupport.WriteBundle(t, testsupport.BundleSpec{
		Name:        "Stable",
		Version:     "1.0",
		WithObjects: true,
	})

	p := newTestPipeline(t, cfg, nil)
	opts := Options{
		Overrides: manifest.Overrides{Name: "Stable", Version: "1.0"},
		Overwrite: true,
	}

	if _, ok := p.Run(context.Background(), opts, []string{bundle}); !ok {
		t.Fatal("first run failed")
	}
	firstManifest, err := manifest.Load(filepath.Join(bundle, manifest.FileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	firstUID := firstManifest.EntrypointUID()

	if _, ok := p.Run(context.Background(), opts, []string{bundle}); !ok {
		t.Fatal("second run failed")
	}
	secondManifest, err := manifest.Load(filepath.Join(bundle, manifest.FileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if secondManifest.EntrypointUID() != firstUID {
		t.Error("entrypoint uid changed across rebuilds")
	}
	if secondManifest.Name() != "Stable" || secondManifest.Version() != "1.0" {
		t.Error("manifest fields drifted across rebuilds")
	}
}

func TestRunReportsArchiveToolFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false binary not available")
	}

	cfg := testConfig(t)
	bundle := testsupport.WriteBundle(t, testsupport.BundleSpec{Name: "Broken"})

	p := New(cfg, nil, archive.Tool{Command: "false"}, nil)
	results, ok := p.Run(context.Background(), Options{
		Overrides: manifest.Overrides{Name: "Broken"},
	}, []string{bundle})

	if ok {
		t.Fatal("expected run to fail")
	}
	var toolErr *archive.ToolError
	if !errors.As(results[0].Err, &toolErr) {
		t.Fatalf("expected tool exit error, got %v", results[0].Err)
	}
	if toolErr.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", toolErr.ExitCode)
	}
}

func TestRunAnnotatesLogsWithStages(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := testConfig(t)
	bundle := testsupport.WriteBundle(t, testsupport.BundleSpec{Name: "Traced", Version: "1.0"})

	p := New(cfg, logger, archive.Zip{Level: 1}, nil)
	if _, ok := p.Run(context.Background(), Options{
		Overrides: manifest.Overrides{Name: "Traced"},
	}, []string{bundle}); !ok {
		t.Fatal("run failed")
	}

	out := buf.String()
	for _, want := range []string{`"component":"pipeline"`, `"stage":"manifest"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
