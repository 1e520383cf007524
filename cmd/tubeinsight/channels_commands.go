package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tubeinsight/internal/logging"
	"tubeinsight/internal/registry"
	"tubeinsight/internal/resolver"
	"tubeinsight/internal/services"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	channelsCmd := &cobra.Command{
		Use:     "channels",
		Aliases: []string{"channel"},
		Short:   "Manage the channel registry",
	}

	channelsCmd.AddCommand(newChannelsListCommand(ctx))
	channelsCmd.AddCommand(newChannelsAddCommand(ctx))
	channelsCmd.AddCommand(newChannelsEditCommand(ctx))
	channelsCmd.AddCommand(newChannelsRemoveCommand(ctx))

	return channelsCmd
}

func newChannelsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show registered channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := ctx.openRegistry()
			if err != nil {
				return err
			}
			defer closer.Close()

			out := cmd.OutOrStdout()
			snap, err := store.Load(cmd.Context())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: channel registry unavailable (%v); showing no channels\n", err)
			}
			if len(snap.Entries) == 0 {
				fmt.Fprintln(out, "No channels registered. Add one with 'tubeinsight channels add <handle|url>'.")
				return nil
			}
			fmt.Fprintln(out, renderChannels(snap))
			return nil
		},
	}
}

func renderChannels(snap registry.Snapshot) string {
	rows := make([][]string, 0, len(snap.Entries))
	for i, entry := range snap.Entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), entry.Name, entry.Handle, entry.ID})
	}
	footer := fmt.Sprintf("%d of %d channels", len(snap.Entries), registry.MaxEntries)
	return renderTable(
		[]string{"#", "Name", "Handle", "Channel ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
		footer,
	)
}

func newChannelsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <handle|url>",
		Short: "Resolve a channel and append it to the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := resolveChannel(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			store, closer, err := ctx.openRegistry()
			if err != nil {
				return err
			}
			defer closer.Close()

			snap, err := store.Add(cmd.Context(), entry)
			if err != nil {
				return registryMutationError(cmd, ctx, "add", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s); %d of %d channels registered\n",
				entry.Label(), entry.ID, len(snap.Entries), registry.MaxEntries)
			return nil
		},
	}
}

func newChannelsEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index> <handle|url>",
		Short: "Replace the channel at a list position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			entry, err := resolveChannel(cmd, ctx, args[1])
			if err != nil {
				return err
			}
			store, closer, err := ctx.openRegistry()
			if err != nil {
				return err
			}
			defer closer.Close()

			if _, err := store.Edit(cmd.Context(), index, entry); err != nil {
				return registryMutationError(cmd, ctx, "edit", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Channel #%d is now %s (%s)\n", index+1, entry.Label(), entry.ID)
			return nil
		},
	}
}

func newChannelsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <index>",
		Aliases: []string{"rm"},
		Short:   "Delete the channel at a list position",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			store, closer, err := ctx.openRegistry()
			if err != nil {
				return err
			}
			defer closer.Close()

			snap, err := store.Remove(cmd.Context(), index)
			if err != nil {
				return registryMutationError(cmd, ctx, "remove", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed channel #%d; %d remaining\n", index+1, len(snap.Entries))
			return nil
		},
	}
}

// parseIndex converts a 1-based list position to a 0-based index.
func parseIndex(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid channel number %q (use the # column from 'tubeinsight channels list')", raw)
	}
	return n - 1, nil
}

func resolveChannel(cmd *cobra.Command, ctx *commandContext, raw string) (registry.ChannelEntry, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return registry.ChannelEntry{}, err
	}
	if err := cfg.RequireYouTube(); err != nil {
		return registry.ChannelEntry{}, err
	}
	identity, err := resolver.New(ctx.searchClient(cfg), ctx.log()).Resolve(cmd.Context(), raw)
	if err != nil {
		return registry.ChannelEntry{}, fmt.Errorf("resolve %q: %w (%s)", raw, err, services.OperatorHint(err))
	}
	return identity.ToEntry(), nil
}

func registryMutationError(cmd *cobra.Command, ctx *commandContext, action string, err error) error {
	if errors.Is(err, services.ErrConflict) {
		if notifyErr := ctx.notifier().NotifyRegistryConflict(cmd.Context(), action); notifyErr != nil {
			ctx.log().Debug("registry conflict notification failed", logging.Error(notifyErr))
		}
	}
	return fmt.Errorf("channels %s: %w (%s)", action, err, services.OperatorHint(err))
}
