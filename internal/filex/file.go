// Package filex resolves the on-disk home of the local account store.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDirName is the directory created under the user config dir when no
// explicit data directory is configured.
const AppDirName = "patrimonio"

// userConfigDir is a test seam for os.UserConfigDir.
var userConfigDir = os.UserConfigDir

// EnsureDataDir returns an absolute directory for local data, creating it
// with owner-only permissions. An empty dir means <user config dir>/patrimonio;
// a relative dir is resolved against the working directory.
func EnsureDataDir(dir string) (string, error) {
	if dir == "" {
		base, err := userConfigDir()
		if err != nil {
			return "", fmt.Errorf("user config dir: %w", err)
		}
		dir = filepath.Join(base, AppDirName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}
