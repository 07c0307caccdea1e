package store

import (
	"context"
	"fmt"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open builds a Store over the backend named by driver.
func Open(ctx context.Context, driver, path string) (*Store, error) {
	switch driver {
	case DriverJSON, "":
		return New(NewFileBackend(path)), nil
	case DriverSQLite:
		b, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return New(b), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
