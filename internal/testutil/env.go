// Package testutil provides utilities for testing driverman in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// envPrefix is the prefix of every driverman environment variable.
const envPrefix = "DRIVERMAN_"

// SetupTestEnv isolates a test from the host environment:
// - DRIVERMAN_* variables inherited from the shell are cleared
// - HOME and XDG_CACHE_HOME point into a temporary directory, so the
//   default store never lands in the user's real cache
//
// Cleanup is handled by t.TempDir and t.Setenv. It returns the temporary
// home directory.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	home := filepath.Join(tmpDir, "home")
	cache := filepath.Join(tmpDir, "cache")

	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) {
			// t.Setenv restores the original value on cleanup.
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}

	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", cache)
	t.Setenv("LOCALAPPDATA", cache)

	for _, dir := range []string{home, cache} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	return home
}
