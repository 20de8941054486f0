package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mailkeeper/internal/flagx"
)

// parseFlags populates client Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   server address (e.g., "127.0.0.1:41041")
//	-m string   mail domain used for the sender address
//	-t int      per-attempt dial timeout, seconds
//	-r int      extra dial attempts before giving up
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The timeout
// flag is accepted as an integer in seconds and converted to time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerAddr, "a", config.ServerAddr, "server address and port")
	fs.StringVar(&config.Domain, "m", config.Domain, "mail domain")

	dialTimeout := fs.Int("t", int(config.DialTimeout.Seconds()), "dial timeout (in seconds)")
	fs.Uint64Var(&config.DialAttempts, "r", config.DialAttempts, "extra dial attempts")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.DialTimeout = time.Duration(*dialTimeout) * time.Second
}
