package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"courtq/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var skipLine bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check data directory, Redis, and LINE API readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if !skipLine {
				results = append(results, preflight.CheckLineAPI(cmd.Context(), cfg.Line.APIBaseURL, cfg.Line.ChannelAccessToken))
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "FAIL"
				}
				rows = append(rows, []string{r.Name, state, r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Result", "Detail"}, rows, nil))
			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipLine, "skip-line", false, "Skip the LINE API reachability check")
	return cmd
}
