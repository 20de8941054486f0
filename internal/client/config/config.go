// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the MailKeeper CLI.
//
// Fields:
//   - ServerAddr: host:port of the mail server.
//   - Domain: the mail domain used to form the sender address; must match
//     the server's local domain for messages to be deliverable.
//   - DialTimeout: per-attempt connection timeout.
//   - DialAttempts: how many extra connection attempts are made with
//     exponential backoff before giving up.
type Config struct {
	ServerAddr   string
	Domain       string
	DialTimeout  time.Duration
	DialAttempts uint64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:41041"
	c.Domain = "mailkeeper.local"
	c.DialTimeout = 3 * time.Second
	c.DialAttempts = 3
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
