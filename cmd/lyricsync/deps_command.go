package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lyricsync/internal/api"
	"lyricsync/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries required by the configured provider",
		RunE:  func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))

			if jsonOutput {
				if err := writeJSON(cmd, api.FromDependencies(statuses)); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(statuses))
				for _, st := range statuses {
					rows = append(rows, []string{st.Name, st.Command, yesNo(!st.Optional), yesNo(st.Available), st.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Dependency", "Command", "Required", "Available", "Detail"},
					rows,
					nil,
				))
			}

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependency(ies) missing for provider %q", len(missing), cfg.Transcription.Provider)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output dependency status as JSON")
	return cmd
}
