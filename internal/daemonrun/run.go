// Package daemonrun hosts the kudosd runtime loop shared by the standalone
// binary and the hidden `kudos daemon` command.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"kudos/internal/celebrate"
	"kudos/internal/config"
	"kudos/internal/daemon"
	"kudos/internal/ipc"
	"kudos/internal/journal"
	"kudos/internal/logging"
	"kudos/internal/store"
)

// Options configures daemon process runtime behavior. SocketPath overrides
// the config-derived IPC socket location when set.
type Options struct {
	LogLevel   string
	SocketPath string
}

// Run starts the kudos daemon runtime loop and blocks until the process
// receives SIGINT/SIGTERM or a client requests shutdown over IPC.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("kudosd-%s.log", runID))
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update kudosd.log link: %v\n", err)
	}

	journalStore, err := journal.Open(cfg.JournalPath())
	if err != nil {
		logger.Error("open presentation journal", logging.Error(err))
		return err
	}
	defer journalStore.Close()

	storeClient := store.New(cfg.Store.BaseURL, cfg.Store.APIToken, cfg.StoreTimeout(), nil)
	celebrator := celebrate.NewService(cfg)

	d, err := daemon.New(daemon.Options{
		Config:     cfg,
		Logger:     logger,
		Loader:     storeClient,
		Marker:     storeClient,
		Journal:    journalStore,
		Celebrator: celebrator,
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Stop()

	// The single-instance lock is taken inside Start. It must be held
	// before the pid file is written or the socket is bound; otherwise a
	// second kudosd would steal both from the live daemon and only then
	// discover it cannot run.
	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check configuration and whether another kudosd holds the lock"),
			logging.String(logging.FieldImpact, "notifications are not being delivered"),
		)
		return fmt.Errorf("start daemon: %w", err)
	}

	if err := writePIDFile(cfg.PidPath()); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(cfg.PidPath())

	socketPath := strings.TrimSpace(opts.SocketPath)
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger, cancel)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-signalCtx.Done()
	logger.Info("kudos daemon shutting down")
	return nil
}

// ensureCurrentLogPointer keeps log_dir/kudosd.log pointing at the newest
// run log.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "kudosd.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
