package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tubeinsight/internal/discovery"
)

func newLatestCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "latest <channel-id>",
		Short: "Show the newest video a channel published in the window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireYouTube(); err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.YouTube.WindowDays
			}
			finder := discovery.New(ctx.searchClient(cfg), ctx.log(), discovery.WithMaxResults(cfg.YouTube.MaxResults))
			outcome := finder.FindLatest(cmd.Context(), args[0], days)

			out := cmd.OutOrStdout()
			switch outcome.Kind {
			case discovery.Found:
				v := outcome.Video
				fmt.Fprintf(out, "Title:     %s\n", v.Title)
				fmt.Fprintf(out, "Video ID:  %s\n", v.VideoID)
				fmt.Fprintf(out, "Published: %s\n", v.PublishedAt.UTC().Format(time.RFC3339))
				if v.ChannelTitle != "" {
					fmt.Fprintf(out, "Channel:   %s\n", v.ChannelTitle)
				}
			case discovery.NoneInWindow:
				fmt.Fprintf(out, "No new video in the last %d days\n", days)
			default:
				fmt.Fprintf(out, "Search failed: %s\n", outcome.Detail)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Window in days (defaults to youtube.window_days)")
	return cmd
}
