package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"wfpack/internal/archive"
	"wfpack/internal/config"
	"wfpack/internal/exclude"
	"wfpack/internal/history"
	"wfpack/internal/logging"
	"wfpack/internal/manifest"
	"wfpack/internal/staging"
)

// Options carries the per-run build parameters.
type Options struct {
	Overrides manifest.Overrides
	// OutputDir overrides the configured artifact directory when set.
	OutputDir string
	Overwrite bool
	// Verbose enables archiver chatter only; log level is independent.
	Verbose bool
}

// Result is the outcome of one bundle build.
type Result struct {
	Bundle   string        `json:"bundle"`
	Artifact string        `json:"artifact,omitempty"`
	Name     string        `json:"name,omitempty"`
	Version  string        `json:"version,omitempty"`
	Size     int64         `json:"size_bytes,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Failed reports whether this bundle's build failed.
func (r Result) Failed() bool { return r.Err != nil }

// Pipeline sequences manifest transformation, staging, and archiving
// for each input bundle.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	archiver archive.Archiver
	history  *history.Store
}

// New assembles a pipeline. store may be nil to disable receipts.
func New(cfg *config.Config, logger *slog.Logger, archiver archive.Archiver, store *history.Store) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(slog.String(logging.FieldComponent, "pipeline"))
	return &Pipeline{cfg: cfg, logger: logger, archiver: archiver, history: store}
}

// Run builds every bundle directory in order. All bundles are
// attempted regardless of earlier failures; ok is false when any
// bundle failed. Run never panics past its boundary — all failure
// detail is logged and carried in the results.
func (p *Pipeline) Run(ctx context.Context, opts Options, bundleDirs []string) ([]Result, bool) {
	if opts.OutputDir == "" {
		opts.OutputDir = p.cfg.Paths.OutputDir
	}

	results := make([]Result, 0, len(bundleDirs))
	ok := true
	for _, dir := range bundleDirs {
		result := p.buildBundle(ctx, opts, dir)
		if result.Failed() {
			ok = false
		}
		p.record(ctx, result)
		results = append(results, result)
	}
	return results, ok
}

func (p *Pipeline) buildBundle(ctx context.Context, opts Options, dir string) Result {
	start := time.Now()
	ctx = logging.WithBundle(ctx, filepath.Base(dir))
	logger := logging.WithContext(ctx, p.logger)
	stage := func(name string) (context.Context, *slog.Logger) {
		sctx := logging.WithStage(ctx, name)
		return sctx, logging.WithContext(sctx, p.logger)
	}

	result := Result{Bundle: dir, Name: opts.Overrides.Name}
	fail := func(err error) Result {
		result.Err = err
		result.Duration = time.Since(start)
		p.reportFailure(ctx, logger, err)
		return result
	}

	manifestCtx, manifestLog := stage("manifest")
	manifestPath := filepath.Join(dir, manifest.FileName)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return fail(err)
	}

	// Phase one rewrites the canonical manifest in the source tree.
	if err := manifest.Apply(m, opts.Overrides, dir); err != nil {
		return fail(err)
	}
	if err := m.Save(manifestPath); err != nil {
		return fail(err)
	}
	result.Version = m.Version()
	manifestLog.DebugContext(manifestCtx, "manifest updated",
		slog.String("uid", m.EntrypointUID()),
		slog.String("version", m.Version()))

	stagingCtx, stagingLog := stage("staging")
	filter := exclude.New(p.cfg.Build.ExtraExclude)
	staged, err := staging.Stage(stagingCtx, dir, p.cfg.Paths.StagingDir, filter, stagingLog)
	if err != nil {
		return fail(err)
	}
	defer staged.Close()

	archiveCtx, archiveLog := stage("archive")
	builder := &archive.Builder{Archiver: p.archiver, Logger: archiveLog}
	artifact, err := builder.Build(archiveCtx, staged.Path(), opts.OutputDir, opts.Overrides.Name, opts.Overwrite, opts.Verbose)
	if err != nil {
		return fail(err)
	}

	result.Artifact = artifact
	if info, statErr := os.Stat(artifact); statErr == nil {
		result.Size = info.Size()
	}
	result.Duration = time.Since(start)
	logger.InfoContext(ctx, "bundle built",
		slog.String(logging.FieldArtifact, artifact),
		slog.Duration("duration", result.Duration))
	return result
}

func (p *Pipeline) reportFailure(ctx context.Context, logger *slog.Logger, err error) {
	var toolErr *archive.ToolError
	switch {
	case errors.Is(err, archive.ErrDestinationExists):
		logger.ErrorContext(ctx, "destination exists, refusing to overwrite (use --force)",
			slog.String("error", err.Error()))
	case errors.As(err, &toolErr):
		logger.ErrorContext(ctx, "archive tool failed",
			slog.Int("exit_code", toolErr.ExitCode))
	default:
		logger.ErrorContext(ctx, "bundle build failed",
			slog.String("error", err.Error()))
	}
}

func (p *Pipeline) record(ctx context.Context, result Result) {
	if p.history == nil {
		return
	}
	rec := history.Record{
		Bundle:    result.Bundle,
		Artifact:  result.Artifact,
		Name:      result.Name,
		Version:   result.Version,
		SizeBytes: result.Size,
		Duration:  result.Duration,
		Status:    history.StatusSucceeded,
	}
	if result.Failed() {
		rec.Status = history.StatusFailed
		rec.Detail = result.Err.Error()
	}
	if _, err := p.history.Add(ctx, rec); err != nil {
		p.logger.WarnContext(ctx, "failed to record build receipt",
			slog.String("error", err.Error()))
	}
}
