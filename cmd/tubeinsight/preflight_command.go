package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tubeinsight/internal/preflight"
	"tubeinsight/internal/registry"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var skipLLM bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check external tools, directories, credentials and the LLM endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := preflight.Options{SkipLLM: skipLLM}
			backend, closer, err := registry.OpenBackend(cfg)
			if err == nil {
				defer closer.Close()
				opts.Registry = backend
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Registry", statusError, err.Error(), colorize))
			}
			results := preflight.RunAll(cmd.Context(), cfg, opts)
			for _, r := range results {
				kind := statusOK
				switch {
				case !r.Passed && r.Optional:
					kind = statusWarn
				case !r.Passed:
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			failed := len(preflight.Failed(results))
			if err != nil {
				failed++
			}
			if failed > 0 {
				return fmt.Errorf("preflight: %d required check(s) failed", failed)
			}
			fmt.Fprintln(out, "All required checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipLLM, "skip-llm", false, "Skip the chat completion round trip")
	return cmd
}
