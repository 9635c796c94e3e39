package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"courtq/internal/access"
)

func newScopeCommand(ctx *commandContext) *cobra.Command {
	scopeCmd := &cobra.Command{
		Use:   "scope",
		Short: "Register and toggle chat groups",
	}

	scopeCmd.AddCommand(&cobra.Command{
		Use:   "register <scope-id>",
		Short: "Allow a group to use the bot (starts disabled)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			scopeID := strings.TrimSpace(args[0])
			created, err := access.NewSessions(store).Register(cmd.Context(), scopeID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if created {
				fmt.Fprintf(out, "Registered scope %s (disabled; send \"start\" in the group to enable)\n", scopeID)
			} else {
				fmt.Fprintf(out, "Scope %s is already registered\n", scopeID)
			}
			return nil
		},
	})
	scopeCmd.AddCommand(newScopeToggleCommand(ctx, "enable", true))
	scopeCmd.AddCommand(newScopeToggleCommand(ctx, "disable", false))

	scopeCmd.AddCommand(&cobra.Command{
		Use:   "show <scope-id>",
		Short: "Show registration state of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			scopeID := strings.TrimSpace(args[0])
			state, err := store.ScopeState(cmd.Context(), scopeID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if state == nil {
				fmt.Fprintf(out, "Scope %s is not registered\n", scopeID)
				return nil
			}
			rows := [][]string{{
				state.ScopeID,
				yesNo(true),
				yesNo(state.Enabled),
				state.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			}}
			fmt.Fprintln(out, renderTable(out, []string{"Scope", "Registered", "Enabled", "Updated"}, rows, nil))
			return nil
		},
	})

	return scopeCmd
}

func newScopeToggleCommand(ctx *commandContext, use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <scope-id>",
		Short: fmt.Sprintf("Mark a group %sd (registers it if needed)", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			scopeID := strings.TrimSpace(args[0])
			if err := access.NewSessions(store).SetEnabled(cmd.Context(), scopeID, enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scope %s %sd\n", scopeID, use)
			return nil
		},
	}
}
