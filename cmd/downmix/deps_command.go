package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"downmix/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of the external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			headers := []string{"Tool", "Command", "Available", "Detail"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}
			statuses := deps.Check(deps.Default(cfg))
			rows := make([][]string, 0, len(statuses))
			missing := false
			for _, status := range statuses {
				rows = append(rows, []string{status.Name, status.Command, yesNo(status.Available), status.Detail})
				if !status.Available {
					missing = true
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))

			if missing {
				return fmt.Errorf("one or more required tools are unavailable")
			}
			return nil
		},
	}
}
