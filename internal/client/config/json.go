package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/dmitrijs2005/vanguard/internal/flagx"
)

// duration accepts either a Go duration string ("3s") or integer
// nanoseconds.
type duration time.Duration

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*d = duration(time.Duration(val))
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		*d = duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero so an absent key keeps the default.
type JsonConfig struct {
	StorePath      *string   `json:"store_path"`
	StoreDriver    *string   `json:"store_driver"`
	BackendAddr    *string   `json:"backend_addr"`
	RequestTimeout *duration `json:"request_timeout"`
	Verbose        *bool     `json:"verbose"`
}

// parseJson overlays cfg with values from the file named by -c or -config.
// Comments and trailing commas are accepted. Without the flag nothing is
// loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.StorePath != nil {
		cfg.StorePath = *jc.StorePath
	}
	if jc.StoreDriver != nil {
		cfg.StoreDriver = *jc.StoreDriver
	}
	if jc.BackendAddr != nil {
		cfg.BackendAddr = *jc.BackendAddr
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(*jc.RequestTimeout)
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
	return nil
}
