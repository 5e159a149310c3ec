package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"wfpack/internal/logging"
	"wfpack/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage staging directories",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staging directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dirs, err := staging.List(cfg.Paths.StagingDir)
			if err != nil {
				return fmt.Errorf("list staging directories: %w", err)
			}

			if ctx.jsonMode() {
				if dirs == nil {
					dirs = []staging.DirInfo{}
				}
				var totalSize int64
				for _, dir := range dirs {
					totalSize += dir.Size
				}
				return writeJSON(cmd, map[string]any{
					"staging_dir":      cfg.Paths.StagingDir,
					"directories":      dirs,
					"total_size_bytes": totalSize,
				})
			}

			if len(dirs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No staging directories")
				return nil
			}

			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				rows = append(rows, []string{
					dir.Path,
					dir.Modified.Local().Format(time.DateTime),
					humanize.Bytes(uint64(dir.Size)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Path", "Modified", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale staging directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, maxAge, logger)
			if result.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "Another cleanup is in progress; nothing done")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale staging directories\n", len(result.Removed))
			if len(result.Errors) > 0 {
				details := make([]string, 0, len(result.Errors))
				for _, cleanupErr := range result.Errors {
					details = append(details, fmt.Sprintf("%s: %v", cleanupErr.Path, cleanupErr.Error))
				}
				return fmt.Errorf("cleanup errors:\n  %s", strings.Join(details, "\n  "))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Remove staging directories older than this")

	return cmd
}
