//go:build !windows

package browser

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

// execDetector runs the browser with --version and parses its output,
// e.g. "Google Chrome 120.0.6099.109".
type execDetector struct {
	path string
}

func newDetector(path string) Detector {
	return &execDetector{path: path}
}

func (d *execDetector) Version(ctx context.Context) (version.Version, error) {
	if err := checkExists(d.path); err != nil {
		return version.Version{}, err
	}

	//nolint:gosec // G204: path comes from user configuration and is checked to exist
	out, err := exec.CommandContext(ctx, d.path, "--version").Output()
	if err != nil {
		return version.Version{}, fmt.Errorf("run %s --version: %w", d.path, err)
	}

	v, err := version.Extract(string(out))
	if err != nil {
		return version.Version{}, fmt.Errorf("parse browser version output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return v, nil
}
