package config

import (
	"errors"
	"fmt"
	"strings"
)

const maxSettlingDelayMS = 5000

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLiveFeed(); err != nil {
		return err
	}
	if err := c.validateDelivery(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	if c.Store.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/kudos/config.toml"
		}
		return fmt.Errorf("store.base_url is required. Edit %s (create with 'kudos config init')", defaultPath)
	}
	if !strings.HasPrefix(c.Store.BaseURL, "http://") && !strings.HasPrefix(c.Store.BaseURL, "https://") {
		return fmt.Errorf("store.base_url must be an http(s) URL, got %q", c.Store.BaseURL)
	}
	if c.Store.UserID == "" {
		return errors.New("store.user_id is required")
	}
	if c.Store.RequestTimeout <= 0 {
		return errors.New("store.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLiveFeed() error {
	if !c.LiveFeed.Enabled {
		return nil
	}
	if c.LiveFeed.URL == "" {
		return errors.New("live_feed.url must be set (or derivable from store.base_url) when live_feed.enabled is true")
	}
	if !strings.HasPrefix(c.LiveFeed.URL, "ws://") && !strings.HasPrefix(c.LiveFeed.URL, "wss://") {
		return fmt.Errorf("live_feed.url must be a ws(s) URL, got %q", c.LiveFeed.URL)
	}
	if c.LiveFeed.PingInterval <= 0 {
		return errors.New("live_feed.ping_interval must be positive")
	}
	if c.LiveFeed.MaxReconnectInterval <= 0 {
		return errors.New("live_feed.max_reconnect_interval must be positive")
	}
	if c.LiveFeed.HandshakeTimeout <= 0 {
		return errors.New("live_feed.handshake_timeout must be positive")
	}
	return nil
}

func (c *Config) validateDelivery() error {
	if c.Delivery.SettlingDelayMS < 0 || c.Delivery.SettlingDelayMS > maxSettlingDelayMS {
		return fmt.Errorf("delivery.settling_delay_ms must be between 0 and %d", maxSettlingDelayMS)
	}
	if c.Delivery.RefreshInterval <= 0 {
		return errors.New("delivery.refresh_interval must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic != "" && c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive when ntfy_topic is set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
