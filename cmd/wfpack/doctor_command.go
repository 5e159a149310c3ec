package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wfpack/internal/deps"
	"wfpack/internal/exclude"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and external dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.ForConfig(cfg))
			patterns := exclude.New(cfg.Build.ExtraExclude).Patterns()

			if ctx.jsonMode() {
				return writeJSON(cmd, map[string]any{
					"dependencies":     statuses,
					"exclude_patterns": patterns,
				})
			}

			rows := make([][]string, 0, len(statuses))
			missing := false
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					if status.Optional {
						state = "missing (optional)"
					} else {
						state = "missing"
						missing = true
					}
				}
				rows = append(rows, []string{status.Name, status.Command, state, status.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Dependency", "Command", "Status", "Detail"},
				rows,
				nil,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "Exclusion patterns: %s\n", strings.Join(patterns, ", "))

			if missing {
				return fmt.Errorf("required external dependencies are missing")
			}
			return nil
		},
	}
}
