package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"downmix/internal/fileutil"
	"downmix/internal/media/ffprobe"
)

var titleCaser = cases.Title(language.English)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <path>",
		Short: "Inspect a media file's streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := fileutil.CheckRegularFile(args[0]); err != nil {
				return err
			}

			report, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}
			if report.Warnings != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "ffprobe:", report.Warnings)
			}

			if asJSON {
				_, err := cmd.OutOrStdout().Write(report.RawJSON())
				return err
			}

			headers := []string{"#", "Type", "Codec", "Channels", "Sample Rate", "Resolution"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			rows := make([][]string, 0, len(report.Streams))
			for _, stream := range report.Streams {
				rows = append(rows, streamRow(stream))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))

			if ffprobe.NeedsDownmix(report.AudioChannelCounts()) {
				fmt.Fprintf(cmd.OutOrStdout(), "File %q would be downmixed.\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "File %q does not need to be downmixed.\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw ffprobe JSON instead of a table")
	return cmd
}

func streamRow(stream ffprobe.Stream) []string {
	channels := "-"
	if stream.Channels != nil {
		channels = strconv.Itoa(*stream.Channels)
	}
	sampleRate := stream.SampleRate
	if sampleRate == "" {
		sampleRate = "-"
	}
	resolution := "-"
	if stream.Width > 0 && stream.Height > 0 {
		resolution = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
	}
	return []string{
		strconv.Itoa(stream.Index),
		titleCaser.String(stream.CodecType),
		stream.CodecName,
		channels,
		sampleRate,
		resolution,
	}
}
