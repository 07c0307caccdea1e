package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/vanguard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   path of the local store
//	-d string   store driver: json or sqlite
//	-a string   address and port of the backend server
//	-t int      backend request timeout (in seconds)
//	-v          verbose (debug) logging
//
// Only the flags listed above are parsed; others are filtered out with
// flagx.FilterArgs so they do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-s", "-d", "-a", "-t", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "path of the local store")
	fs.StringVar(&cfg.StoreDriver, "d", cfg.StoreDriver, "store driver (json or sqlite)")
	fs.StringVar(&cfg.BackendAddr, "a", cfg.BackendAddr, "address and port to access server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// -t only overrides when given, so sub-second values from JSON survive
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
