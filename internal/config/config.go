package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Store contains connection settings for the team activity store API.
type Store struct {
	BaseURL        string `toml:"base_url"`
	APIToken       string `toml:"api_token"`
	UserID         string `toml:"user_id"`
	RequestTimeout int    `toml:"request_timeout"`
}

// LiveFeed contains settings for the websocket change feed. URL is derived
// from store.base_url when left empty. Intervals are in seconds.
type LiveFeed struct {
	Enabled              bool   `toml:"enabled"`
	URL                  string `toml:"url"`
	PingInterval         int    `toml:"ping_interval"`
	MaxReconnectInterval int    `toml:"max_reconnect_interval"`
	HandshakeTimeout     int    `toml:"handshake_timeout"`
}

// Delivery contains sequencer timing settings. SettlingDelayMS is the pause
// between an acknowledgment and the next presentation; RefreshInterval is the
// periodic full-reload cadence in seconds.
type Delivery struct {
	SettlingDelayMS int `toml:"settling_delay_ms"`
	RefreshInterval int `toml:"refresh_interval"`
}

// Notifications contains configuration for ntfy celebration pushes. An empty
// topic disables pushes without disabling delivery sequencing.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Paths contains directory configuration. StateDir holds the journal, lock,
// pid file, and daemon socket.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for kudos.
type Config struct {
	Store         Store         `toml:"store"`
	LiveFeed      LiveFeed      `toml:"live_feed"`
	Delivery      Delivery      `toml:"delivery"`
	Notifications Notifications `toml:"notifications"`
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/kudos/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and the live feed URL derived. The
// reported path is where the config was found (or would be created), and
// exists reports whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Store.BaseURL = strings.TrimRight(strings.TrimSpace(c.Store.BaseURL), "/")
	c.Store.UserID = strings.TrimSpace(c.Store.UserID)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	c.LiveFeed.URL = strings.TrimSpace(c.LiveFeed.URL)
	if c.LiveFeed.Enabled && c.LiveFeed.URL == "" && c.Store.BaseURL != "" {
		c.LiveFeed.URL = deriveFeedURL(c.Store.BaseURL)
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// deriveFeedURL maps the store base URL to the websocket feed endpoint.
func deriveFeedURL(baseURL string) string {
	feed := baseURL
	switch {
	case strings.HasPrefix(feed, "https://"):
		feed = "wss://" + strings.TrimPrefix(feed, "https://")
	case strings.HasPrefix(feed, "http://"):
		feed = "ws://" + strings.TrimPrefix(feed, "http://")
	}
	return feed + "/api/v1/notifications/feed"
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SocketPath returns the daemon control socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "kudosd.sock")
}

// PidPath returns the daemon pid file location.
func (c *Config) PidPath() string {
	return filepath.Join(c.Paths.StateDir, "kudosd.pid")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "kudosd.lock")
}

// JournalPath returns the presentation journal database location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// SettlingDelay returns the pause between acknowledgment and the next
// presentation.
func (c *Config) SettlingDelay() time.Duration {
	return time.Duration(c.Delivery.SettlingDelayMS) * time.Millisecond
}

// RefreshInterval returns the periodic full-reload cadence.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Delivery.RefreshInterval) * time.Second
}

// StoreTimeout returns the per-request timeout for store API calls.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.RequestTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
