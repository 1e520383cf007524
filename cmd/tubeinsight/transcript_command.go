package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tubeinsight/internal/acquisition"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var manualFile string

	cmd := &cobra.Command{
		Use:   "transcript <video-id>",
		Short: "Acquire a video transcript through the caption and audio fallbacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			videoID := strings.TrimSpace(args[0])

			var manual *acquisition.Result
			if strings.TrimSpace(manualFile) != "" {
				res, err := acquisition.ManualFromFile(manualFile)
				if err != nil {
					return err
				}
				manual = &res
			}

			errOut := cmd.ErrOrStderr()
			colorize := shouldColorize(errOut)
			pipeline := acquisition.NewFromConfig(cfg, ctx.log())
			result := pipeline.Acquire(cmd.Context(), videoID, func(p acquisition.Progress) {
				fmt.Fprintln(errOut, progressLine(0, 0, p.Message, colorize))
			})

			out := cmd.OutOrStdout()
			if result.Exhausted() {
				if manual == nil {
					fmt.Fprintf(out, "No transcript available for %s.\n", videoID)
					fmt.Fprintf(out, "Supply one with: tubeinsight transcript %s --manual-file PATH\n", videoID)
					return nil
				}
				result = *manual
			}
			fmt.Fprintf(out, "Source: %s\n\n", result.Provenance.Label())
			fmt.Fprintln(out, result.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&manualFile, "manual-file", "", "Plain-text transcript used when every automatic source fails")
	return cmd
}
