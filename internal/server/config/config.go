// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the MailKeeper server.
//
// Fields:
//   - Addr: bind address for the TCP listener.
//   - DataDir: root directory for mailboxes and lost mail.
//   - Domain: the only domain this server delivers to; destinations with any
//     other domain are rejected.
type Config struct {
	Addr    string
	DataDir string
	Domain  string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":41041"
	c.DataDir = "./mailkeeper-data"
	c.Domain = "mailkeeper.local"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
