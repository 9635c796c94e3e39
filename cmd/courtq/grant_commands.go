package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"courtq/internal/queue"
)

func newGrantCommand(ctx *commandContext) *cobra.Command {
	grantCmd := &cobra.Command{
		Use:   "grant",
		Short: "Manage start/end/clear capability grants",
	}
	grantCmd.AddCommand(newGrantSetCommand(ctx))
	grantCmd.AddCommand(newGrantRevokeCommand(ctx))
	grantCmd.AddCommand(newGrantListCommand(ctx))
	return grantCmd
}

func newGrantSetCommand(ctx *commandContext) *cobra.Command {
	var canStart, canEnd, canClear bool

	cmd := &cobra.Command{
		Use:   "set <scope-id> <actor-id>",
		Short: "Replace the capabilities of a member in a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !canStart && !canEnd && !canClear {
				return errors.New("at least one of --start, --end, --clear is required (use 'grant revoke' to remove)")
			}
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			grant := queue.Grant{
				ScopeID:  strings.TrimSpace(args[0]),
				ActorID:  strings.TrimSpace(args[1]),
				CanStart: canStart,
				CanEnd:   canEnd,
				CanClear: canClear,
			}
			if err := store.PutGrant(cmd.Context(), grant); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s in %s: start=%s end=%s clear=%s\n",
				grant.ActorID, grant.ScopeID, yesNo(canStart), yesNo(canEnd), yesNo(canClear))
			return nil
		},
	}
	cmd.Flags().BoolVar(&canStart, "start", false, "Allow the member to start the bot")
	cmd.Flags().BoolVar(&canEnd, "end", false, "Allow the member to shut the bot down")
	cmd.Flags().BoolVar(&canClear, "clear", false, "Allow the member to clear every court queue")
	return cmd
}

func newGrantRevokeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <scope-id> <actor-id>",
		Short: "Remove every capability of a member in a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			scopeID, actorID := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			removed, err := store.RevokeGrant(cmd.Context(), actorID, scopeID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !removed {
				fmt.Fprintf(out, "No grant for %s in %s\n", actorID, scopeID)
				return nil
			}
			fmt.Fprintf(out, "Revoked %s in %s\n", actorID, scopeID)
			return nil
		},
	}
}

func newGrantListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <scope-id>",
		Short: "List capability grants in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			grants, err := store.ListGrants(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(grants) == 0 {
				fmt.Fprintln(out, "No grants")
				return nil
			}
			rows := make([][]string, 0, len(grants))
			for _, g := range grants {
				rows = append(rows, []string{g.ActorID, yesNo(g.CanStart), yesNo(g.CanEnd), yesNo(g.CanClear)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Actor", "Start", "End", "Clear"}, rows, nil))
			return nil
		},
	}
}
