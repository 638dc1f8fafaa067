package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kudos/internal/ipc"
)

func newReloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Force a full reload from the activity store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Reload(); err != nil {
					return fmt.Errorf("request reload: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reload requested")
				return nil
			})
		},
	}
}
