package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"downmix/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent downmix runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled in the configuration.")
				return nil
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			headers := []string{"Started", "Input", "Channels", "Status", "Detail"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, runRow(run))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}

func runRow(run history.Run) []string {
	channels := make([]string, 0, len(run.Channels))
	for _, count := range run.Channels {
		channels = append(channels, strconv.Itoa(count))
	}
	joined := strings.Join(channels, ",")
	if joined == "" {
		joined = "-"
	}
	detail := run.Detail
	if len(detail) > 60 {
		detail = detail[:57] + "..."
	}
	return []string{
		run.StartedAt.Local().Format(time.DateTime),
		run.InputPath,
		joined,
		string(run.Status),
		detail,
	}
}
