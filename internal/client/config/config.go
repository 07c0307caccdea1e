package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/vanguard/internal/client/store"
)

// AppDir is the directory under the user config dir holding the store.
const AppDir = "vanguard"

// Config holds runtime settings for the Vanguard CLI.
//
// Fields:
//   - StorePath: file (json driver) or database (sqlite driver) of the local store.
//   - StoreDriver: "json" or "sqlite".
//   - BackendAddr: host:port of the backend gRPC endpoint.
//   - RequestTimeout: upper bound for a single backend call.
//   - Verbose: enables debug logging.
type Config struct {
	StorePath      string
	StoreDriver    string
	BackendAddr    string
	RequestTimeout time.Duration
	Verbose        bool
}

// LoadDefaults populates c with sensible defaults. The store lives in the
// user config directory, or the working directory when that is unknown.
func (c *Config) LoadDefaults() {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	c.StorePath = filepath.Join(dir, AppDir, store.DefaultFileName)
	c.StoreDriver = store.DriverJSON
	c.BackendAddr = "127.0.0.1:50051"
	c.RequestTimeout = 12 * time.Second
	c.Verbose = false
}

// Validate reports settings no component could work with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case store.DriverJSON, store.DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.StorePath == "" {
		return fmt.Errorf("store path is empty")
	}
	if c.BackendAddr == "" {
		return fmt.Errorf("backend address is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON file (if -c/-config is given) and command-line flags. Later sources
// take precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
