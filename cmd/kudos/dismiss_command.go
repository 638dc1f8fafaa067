package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kudos/internal/ipc"
)

func newDismissCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss [notification-id]",
		Short: "Dismiss the currently showing notification",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Dismiss(id)
				if err != nil {
					return fmt.Errorf("dismiss notification: %w", err)
				}
				if resp.Message != "" {
					fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				}
				return nil
			})
		},
	}
}
