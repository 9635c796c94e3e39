package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"courtq/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain court queues",
	}
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueNextCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	return queueCmd
}

func parseCourt(value string) queue.Resource {
	return queue.Resource(strings.ToUpper(strings.TrimSpace(value)))
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show occupant and waiting count per court",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			rosters, err := eng.Rosters(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(rosters))
			for _, roster := range rosters {
				head := "-"
				if entry := roster.Head(); entry != nil {
					head = entry.DisplayName
				}
				rows = append(rows, []string{string(roster.Resource), head, strconv.Itoa(roster.Waiting())})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Court", "On court", "Waiting"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <court>",
		Short: "List everyone queued on a court",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			court := parseCourt(args[0])
			roster, err := eng.Roster(cmd.Context(), court)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(roster.Entries) == 0 {
				fmt.Fprintf(out, "Court %s is empty\n", court)
				return nil
			}
			rows := make([][]string, 0, len(roster.Entries))
			for i, entry := range roster.Entries {
				position := "on court"
				if i > 0 {
					position = strconv.Itoa(i)
				}
				rows = append(rows, []string{
					position,
					entry.DisplayName,
					entry.ActorID,
					entry.CreatedAt.Local().Format("15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Position", "Name", "Actor", "Enrolled"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
}

func newQueueNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next <court>",
		Short: "Call the next member onto a court",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			result, err := eng.Promote(cmd.Context(), parseCourt(args[0]), "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from every court",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to clear all courts without --yes")
			}
			eng, err := ctx.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			result, err := eng.ClearAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Confirm clearing all courts")
	return cmd
}
