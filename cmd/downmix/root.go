package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"downmix/internal/deps"
	"downmix/internal/downmixer"
	"downmix/internal/history"
	"downmix/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var quiet bool
	var force bool

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "downmix <input_path> <output_path>",
		Short:         "Downmix a video file's audio into stereo sound if it isn't already",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg, quiet)
			if err != nil {
				return err
			}

			if err := deps.Verify(deps.Default(cfg)); err != nil {
				return err
			}

			opts := []downmixer.Option{}
			if cfg.History.Enabled {
				journal, err := history.Open(cfg.History.Path)
				if err != nil {
					logger.Warn("open history journal", "error", err)
				} else {
					defer journal.Close()
					opts = append(opts, downmixer.WithJournal(journal))
				}
			}

			req := downmixer.Request{
				InputPath:  args[0],
				OutputPath: args[1],
				Force:      force,
			}
			result, err := downmixer.New(cfg, logger, opts...).Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if !result.Downmixed {
				fmt.Fprintf(cmd.OutOrStdout(), "File %q does not need to be downmixed.\n", args[0])
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file at output_path")

	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
