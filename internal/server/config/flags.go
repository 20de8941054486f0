package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/mailkeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind address (e.g., ":41041")
//	-d string   data directory for mailboxes
//	-m string   local mail domain
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")
	fs.StringVar(&config.Domain, "m", config.Domain, "local mail domain")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
