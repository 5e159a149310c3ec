package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"wfpack/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent build receipts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("build history is disabled in configuration")
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open build history: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if ctx.jsonMode() {
				if records == nil {
					records = []history.Record{}
				}
				return writeJSON(cmd, records)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No builds recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				label := rec.Name
				if rec.Version != "" {
					label += " " + rec.Version
				}
				size := ""
				if rec.SizeBytes > 0 {
					size = humanize.Bytes(uint64(rec.SizeBytes))
				}
				detail := rec.Artifact
				if rec.Status == history.StatusFailed {
					detail = rec.Detail
				}
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format(time.DateTime),
					label,
					rec.Status,
					detail,
					size,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"When", "Bundle", "Status", "Artifact / Error", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum receipts to show")

	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded build receipts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open build history: %w", err)
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d receipt(s)\n", removed)
			return nil
		},
	}
}
