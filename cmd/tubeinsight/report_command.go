package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tubeinsight/internal/acquisition"
	"tubeinsight/internal/workflow"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		days        int
		output      string
		manualFiles []string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the insight report for every registered channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manual, err := parseManualFiles(manualFiles)
			if err != nil {
				return err
			}
			runner, closer, err := workflow.NewRunner(cfg, ctx.log())
			if err != nil {
				return err
			}
			defer closer.Close()

			errOut := cmd.ErrOrStderr()
			colorize := shouldColorize(errOut)
			result, err := runner.Run(cmd.Context(), workflow.RunOptions{
				WindowDays: days,
				OutputPath: output,
				Manual:     manual,
				Observer: func(ev workflow.Event) {
					if line := describeEvent(ev); line != "" {
						fmt.Fprintln(errOut, progressLine(ev.Done, ev.Total, line, colorize))
					}
				},
			})
			if err != nil {
				return fmt.Errorf("report: %w", err)
			}

			out := cmd.OutOrStdout()
			if result.Registry != nil {
				fmt.Fprintf(out, "Warning: channel registry unavailable (%v)\n", result.Registry)
			}
			fmt.Fprintf(out, "Report written to %s\n", result.Path)
			fmt.Fprintf(out, "%d videos analyzed, %d channels skipped\n", len(result.Report.Sections), len(result.Report.Skipped))
			if len(result.Missing) > 0 {
				fmt.Fprintln(out, "Videos without a transcript:")
				for _, m := range result.Missing {
					fmt.Fprintf(out, "  %s: %s (rerun with --manual-file %s=PATH)\n", m.Channel, m.Title, m.VideoID)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Window in days (defaults to youtube.window_days)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this path instead of paths.report_dir")
	cmd.Flags().StringArrayVar(&manualFiles, "manual-file", nil, "Transcript for a video as VIDEO_ID=PATH (repeatable)")
	return cmd
}

// parseManualFiles reads every VIDEO_ID=PATH pair.
func parseManualFiles(pairs []string) (map[string]acquisition.Result, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]acquisition.Result, len(pairs))
	for _, pair := range pairs {
		id, path, ok := strings.Cut(pair, "=")
		id, path = strings.TrimSpace(id), strings.TrimSpace(path)
		if !ok || id == "" || path == "" {
			return nil, fmt.Errorf("invalid --manual-file %q (expected VIDEO_ID=PATH)", pair)
		}
		res, err := acquisition.ManualFromFile(path)
		if err != nil {
			return nil, err
		}
		out[id] = res
	}
	return out, nil
}

func describeEvent(ev workflow.Event) string {
	switch ev.Kind {
	case workflow.EventChannelStarted:
		return "Searching " + ev.Channel
	case workflow.EventVideoFound:
		return fmt.Sprintf("%s: found %q", ev.Channel, ev.Video)
	case workflow.EventStage:
		return fmt.Sprintf("%s: %s", ev.Channel, ev.Message)
	case workflow.EventAnalyzing:
		return fmt.Sprintf("%s: analyzing %q", ev.Channel, ev.Video)
	case workflow.EventChannelSkipped:
		return fmt.Sprintf("%s: skipped (%s)", ev.Channel, ev.Message)
	case workflow.EventChannelDone:
		return ev.Channel + ": done"
	default:
		return ""
	}
}
