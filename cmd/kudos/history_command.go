package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kudos/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent presentations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(limit)
				if err != nil {
					return fmt.Errorf("fetch presentation history: %w", err)
				}
				stdout := cmd.OutOrStdout()
				if asJSON {
					encoder := json.NewEncoder(stdout)
					encoder.SetIndent("", "  ")
					return encoder.Encode(resp)
				}

				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "No presentations recorded yet")
					return nil
				}
				fmt.Fprintln(stdout, renderHistoryTable(resp.Entries))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit history as JSON")
	return cmd
}
