package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/mailkeeper/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct.
type JsonConfig struct {
	ServerAddr         string `json:"server_addr"`
	Domain             string `json:"domain"`
	DialTimeoutSeconds int    `json:"dial_timeout_seconds"`
	DialAttempts       uint64 `json:"dial_attempts"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.ServerAddr = c.ServerAddr
	config.Domain = c.Domain
	config.DialTimeout = time.Duration(c.DialTimeoutSeconds) * time.Second
	config.DialAttempts = c.DialAttempts
}
