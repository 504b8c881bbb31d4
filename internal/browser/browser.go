// Package browser finds the locally installed Chrome and reports its version.
//
// Version lookup is platform specific and hidden behind Detector. Windows
// reads the version resource of chrome.exe; other platforms ask the binary
// itself with --version.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

// ErrNotFound is returned when the configured browser binary does not exist.
var ErrNotFound = errors.New("browser not found")

// Detector reports the version of the installed browser.
type Detector interface {
	Version(ctx context.Context) (version.Version, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context) (version.Version, error)

// Version calls f.
func (f DetectorFunc) Version(ctx context.Context) (version.Version, error) {
	return f(ctx)
}

// NewDetector returns the Detector for the current platform reading the
// browser at path.
func NewDetector(path string) Detector {
	return newDetector(path)
}

// checkExists maps a missing or non-regular path to ErrNotFound.
func checkExists(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no browser path configured", ErrNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist", ErrNotFound, path)
		}
		return fmt.Errorf("stat browser: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	return nil
}
