package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:41041", c.ServerAddr)
	assert.Equal(t, "mailkeeper.local", c.Domain)
	assert.Equal(t, 3*time.Second, c.DialTimeout)
	assert.Equal(t, uint64(3), c.DialAttempts)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "127.0.0.1:41041", cfg.ServerAddr)
	assert.Equal(t, 3*time.Second, cfg.DialTimeout)
}
