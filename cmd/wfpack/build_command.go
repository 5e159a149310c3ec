package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"wfpack/internal/archive"
	"wfpack/internal/config"
	"wfpack/internal/history"
	"wfpack/internal/logging"
	"wfpack/internal/manifest"
	"wfpack/internal/pipeline"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir       string
		force           bool
		name            string
		version         string
		createdBy       string
		bundleID        string
		webAddress      string
		disabled        bool
		readmePath      string
		descriptionPath string
		verbose         bool
		quiet           bool
		debug           bool
	)

	cmd := &cobra.Command{
		Use:   "build [flags] BUNDLE_DIR...",
		Short: "Package workflow bundles into archive artifacts",
		Long: `Build rewrites each bundle's info.plist with the supplied overrides,
stages a filtered copy, and produces a {name}[-{version}].alfredworkflow
archive. Bundles build independently; a failure in one does not stop
the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := buildLogger(cfg, quiet, verbose, debug)
			if err != nil {
				return err
			}

			var store *history.Store
			if cfg.History.Enabled {
				store, err = history.Open(cfg.History.Path)
				if err != nil {
					logger.Warn("build history unavailable", slog.String("error", err.Error()))
					store = nil
				} else {
					defer store.Close()
				}
			}

			overrides := manifest.Overrides{
				Name:            name,
				Version:         version,
				CreatedBy:       createdBy,
				BundleID:        bundleID,
				WebAddress:      webAddress,
				Disabled:        disabled,
				ReadmePath:      readmePath,
				DescriptionPath: descriptionPath,
			}
			if overrides.ReadmePath == "" {
				overrides.ReadmePath = cfg.Build.ReadmeFile
			}
			if overrides.DescriptionPath == "" {
				overrides.DescriptionPath = cfg.Build.DescriptionFile
			}
			if err := overrides.Validate(); err != nil {
				return err
			}

			opts := pipeline.Options{
				Overrides: overrides,
				OutputDir: outputDir,
				Overwrite: force,
				Verbose:   verbose,
			}

			p := pipeline.New(cfg, logger, selectArchiver(cfg, logger), store)
			results, ok := p.Run(cmd.Context(), opts, args)

			if ctx.jsonMode() {
				if err := writeJSON(cmd, resultViews(results)); err != nil {
					return err
				}
			} else if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), renderResults(results))
			}

			if !ok {
				failed := 0
				for _, result := range results {
					if result.Failed() {
						failed++
					}
				}
				return fmt.Errorf("%d of %d bundles failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for finished artifacts (default from config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing artifact")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Bundle name (required; also the entrypoint keyword)")
	cmd.Flags().StringVar(&version, "version", "", "Version tag appended to the artifact name")
	cmd.Flags().StringVar(&createdBy, "createdby", "", "Author recorded in the manifest")
	cmd.Flags().StringVar(&bundleID, "bundleid", "", "Bundle identifier (lowercased)")
	cmd.Flags().StringVar(&webAddress, "webaddress", "", "Project web address (lowercased)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Mark the bundle disabled")
	cmd.Flags().StringVar(&readmePath, "readme", "", "Readme source file (default from config)")
	cmd.Flags().StringVar(&descriptionPath, "description-file", "", "Description source file (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging plus archiver chatter")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Errors only")
	cmd.Flags().BoolVar(&debug, "debug", false, "Debug logging with source locations")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// buildLogger maps the verbosity tier flags onto logger options. quiet
// wins over verbose; debug wins over both.
func buildLogger(cfg *config.Config, quiet, verbose, debug bool) (*slog.Logger, error) {
	level := cfg.Logging.Level
	development := false
	switch {
	case debug:
		level = "debug"
		development = true
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	}
	opts := logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		Development: development,
	}
	if cfg.Paths.LogDir != "" {
		opts.OutputPaths = []string{"stderr", filepath.Join(cfg.Paths.LogDir, "wfpack.log")}
	}
	return logging.New(opts)
}

func selectArchiver(cfg *config.Config, logger *slog.Logger) archive.Archiver {
	if cfg.Archive.Engine == "tool" {
		return archive.Tool{Command: cfg.Archive.ZipCommand}
	}
	return archive.Zip{Level: cfg.Archive.CompressionLevel, Logger: logger}
}

type resultView struct {
	Bundle   string `json:"bundle"`
	Artifact string `json:"artifact,omitempty"`
	Size     int64  `json:"size_bytes,omitempty"`
	Duration string `json:"duration"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

func resultViews(results []pipeline.Result) []resultView {
	views := make([]resultView, 0, len(results))
	for _, result := range results {
		view := resultView{
			Bundle:   result.Bundle,
			Artifact: result.Artifact,
			Size:     result.Size,
			Duration: result.Duration.Round(time.Millisecond).String(),
			Status:   "built",
		}
		if result.Failed() {
			view.Status = "failed"
			view.Error = result.Err.Error()
		}
		views = append(views, view)
	}
	return views
}

func renderResults(results []pipeline.Result) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		status := "built"
		detail := result.Artifact
		size := ""
		if result.Failed() {
			status = "failed"
			detail = result.Err.Error()
		} else {
			size = humanize.Bytes(uint64(result.Size))
		}
		rows = append(rows, []string{result.Bundle, status, detail, size})
	}
	return renderTable(
		[]string{"Bundle", "Status", "Artifact / Error", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
}
