// Package filex holds small filesystem helpers shared by the store backends.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// PrivateDirPerm is used for directories holding user data.
const PrivateDirPerm = 0o700

// EnsureParentDir creates the directory that will contain path, readable
// only by the current user, and returns it.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, PrivateDirPerm); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
