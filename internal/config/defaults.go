package config

const (
	defaultStateDir             = "~/.local/share/kudos"
	defaultLogDir               = "~/.local/share/kudos/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultStoreRequestTimeout  = 10
	defaultNotifyRequestTimeout = 10
	defaultSettlingDelayMS      = 400
	defaultRefreshInterval      = 120
	defaultFeedPingInterval     = 30
	defaultFeedMaxReconnect     = 60
	defaultFeedHandshakeTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Store: Store{
			RequestTimeout: defaultStoreRequestTimeout,
		},
		LiveFeed: LiveFeed{
			Enabled:              true,
			PingInterval:         defaultFeedPingInterval,
			MaxReconnectInterval: defaultFeedMaxReconnect,
			HandshakeTimeout:     defaultFeedHandshakeTimeout,
		},
		Delivery: Delivery{
			SettlingDelayMS: defaultSettlingDelayMS,
			RefreshInterval: defaultRefreshInterval,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
