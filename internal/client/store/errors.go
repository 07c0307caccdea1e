package store

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable wraps every failure of the underlying medium.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrUndeclaredKey is returned for a Key that was not declared by this package.
var ErrUndeclaredKey = errors.New("undeclared store key")

func unavailable(op, key string, err error) error {
	return fmt.Errorf("failed to %s store[%s]: %w: %w", op, key, ErrStorageUnavailable, err)
}
