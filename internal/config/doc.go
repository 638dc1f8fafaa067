// Package config loads and validates the TOML configuration shared by the
// kudosd daemon and the kudos CLI.
//
// Load applies repository defaults, overlays the config file if one exists,
// expands user paths, and validates the result. The daemon refuses to start
// on an invalid config; the CLI surfaces the same errors before dialing the
// socket.
package config
