package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kudos/internal/daemonctl"
	"kudos/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the kudos daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the kudos daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the kudos daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}
			fmt.Fprintln(stdout, "Daemon restarted")
			return nil
		},
	}

	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and delivery status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			var status *ipc.StatusResponse
			if client, err := ctx.dialClient(); err == nil {
				resp, statusErr := client.Status()
				_ = client.Close()
				if statusErr != nil {
					return fmt.Errorf("query daemon status: %w", statusErr)
				}
				status = resp
			}

			if statusJSON {
				if status == nil {
					status = &ipc.StatusResponse{}
				}
				encoder := json.NewEncoder(stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(status)
			}

			colorize := shouldColorize(stdout)
			printStatusSection(stdout, "Daemon", daemonStatusLines(ctx, status), colorize)
			if status == nil || !status.Running {
				return nil
			}

			fmt.Fprintln(stdout)
			printStatusSection(stdout, "Delivery", deliveryStatusLines(status), colorize)
			return nil
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Emit status as JSON")

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func daemonStatusLines(ctx *commandContext, status *ipc.StatusResponse) []statusLine {
	if status == nil || !status.Running {
		return []statusLine{
			{"Kudos", statusWarn, "Not running (run `kudos start`)"},
		}
	}

	lines := []statusLine{
		{"Kudos", statusOK, fmt.Sprintf("Running (pid %d)", status.PID)},
		{"Started", statusInfo, status.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"User", statusInfo, status.UserID},
	}
	if status.LiveFeed {
		lines = append(lines, statusLine{"Live feed", statusOK, "Connected subscription active"})
	} else {
		lines = append(lines, statusLine{"Live feed", statusInfo, "Disabled (periodic refresh only)"})
	}

	cfg := ctx.configValue()
	if cfg != nil && strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
		lines = append(lines, statusLine{"Celebrations", statusOK, "Configured"})
	} else {
		lines = append(lines, statusLine{"Celebrations", statusInfo, "Not configured"})
	}
	return lines
}

func deliveryStatusLines(status *ipc.StatusResponse) []statusLine {
	lines := make([]statusLine, 0, 4)

	switch {
	case status.Showing != nil:
		lines = append(lines, statusLine{"Showing", statusOK, status.Showing.Title})
	case status.Settling:
		lines = append(lines, statusLine{"Showing", statusInfo, "Nothing (settling)"})
	default:
		lines = append(lines, statusLine{"Showing", statusInfo, "Nothing"})
	}

	lines = append(lines, statusLine{"Pending", statusInfo, fmt.Sprintf("%d notification(s)", status.PendingCount)})

	switch {
	case status.LastReloadAt.IsZero():
		lines = append(lines, statusLine{"Last reload", statusInfo, "Never"})
	case strings.TrimSpace(status.LastReloadError) != "":
		detail := fmt.Sprintf("%s (failed: %s)", status.LastReloadAt.Local().Format("15:04:05"), status.LastReloadError)
		lines = append(lines, statusLine{"Last reload", statusWarn, detail})
	default:
		lines = append(lines, statusLine{"Last reload", statusOK, status.LastReloadAt.Local().Format("15:04:05")})
	}

	return lines
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if socket := strings.TrimSpace(ctx.flags.socket); socket != "" {
		opts.SocketPath = socket
	}
	if configPath := ctx.configPath(); configPath != "" {
		opts.ConfigPath = configPath
	}
	return opts
}
