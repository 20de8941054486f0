package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
	os.Args = []string{"cmd", "-a", "mail.example.org:9000", "-m", "example.org", "-t", "5", "-r", "7"}

	config := &Config{}
	require.NotPanics(t, func() { parseFlags(config) })

	assert.Equal(t, "mail.example.org:9000", config.ServerAddr)
	assert.Equal(t, "example.org", config.Domain)
	assert.Equal(t, 5*time.Second, config.DialTimeout)
	assert.Equal(t, uint64(7), config.DialAttempts)
}
