package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kudos/internal/ipc"
)

func newPendingCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List queued notifications in presentation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Pending()
				if err != nil {
					return fmt.Errorf("list pending notifications: %w", err)
				}
				stdout := cmd.OutOrStdout()
				if asJSON {
					encoder := json.NewEncoder(stdout)
					encoder.SetIndent("", "  ")
					return encoder.Encode(resp)
				}

				if len(resp.Items) == 0 {
					fmt.Fprintln(stdout, "No pending notifications")
					return nil
				}
				fmt.Fprintln(stdout, renderPendingTable(resp.Items))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit pending notifications as JSON")
	return cmd
}
