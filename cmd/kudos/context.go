package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"kudos/internal/config"
	"kudos/internal/ipc"
)

// rootFlags holds the persistent flags shared by every kudos subcommand.
type rootFlags struct {
	socket     string
	configPath string
}

// commandContext carries the resolved configuration and socket path across
// subcommands. Both resolve lazily and at most once per invocation.
type commandContext struct {
	flags *rootFlags

	loadOnce sync.Once
	cfg      *config.Config
	cfgErr   error

	socketOnce sync.Once
	socket     string
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads and validates the configuration, creating the state and
// log directories on first use.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.loadOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.cfgErr = fmt.Errorf("load config: %w", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.cfgErr = fmt.Errorf("ensure directories: %w", err)
			return
		}
		c.cfg = cfg
	})
	return c.cfg, c.cfgErr
}

// configValue returns the loaded configuration, or nil when loading failed or
// was skipped.
func (c *commandContext) configValue() *config.Config {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	return cfg
}

func (c *commandContext) configPath() string {
	return strings.TrimSpace(c.flags.configPath)
}

// socketPath resolves the daemon socket: the --socket flag wins, then the
// configured state directory, then a per-user fallback.
func (c *commandContext) socketPath() string {
	c.socketOnce.Do(func() {
		if socket := strings.TrimSpace(c.flags.socket); socket != "" {
			c.socket = socket
			return
		}
		if cfg := c.configValue(); cfg != nil {
			c.socket = cfg.SocketPath()
			return
		}
		c.socket = fallbackSocketPath()
	})
	return c.socket
}

func fallbackSocketPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "kudos", "kudosd.sock")
	}
	return filepath.Join(os.TempDir(), "kudosd.sock")
}

// withClient dials the daemon, runs fn, and closes the connection.
func (c *commandContext) withClient(fn func(client *ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(socket, err)
	}
	return client, nil
}

func wrapDialError(socket string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("connect to daemon: socket %s not found; start the daemon with `kudos start`", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: socket %s refused the connection; verify the daemon is running", socket)
	default:
		return fmt.Errorf("connect to daemon at %s: %w", socket, err)
	}
}

// shouldSkipConfig reports whether the command (or an ancestor) opted out of
// configuration loading via the skipConfigLoad annotation.
func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
