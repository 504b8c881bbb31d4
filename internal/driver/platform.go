package driver

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/driverman/internal/platform"
	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

// DefaultDistributionURL is the base URL of the chromedriver archives.
const DefaultDistributionURL = "https://storage.googleapis.com/chrome-for-testing-public"

// archiveDir is the top-level directory inside the archive for platform p.
func archiveDir(p string) string {
	return "chromedriver-" + p
}

// archiveName is the archive file name for platform p.
func archiveName(p string) string {
	return archiveDir(p) + ".zip"
}

// executableName is the driver binary name for platform p.
func executableName(p string) string {
	if strings.HasPrefix(p, "win") {
		return "chromedriver.exe"
	}
	return "chromedriver"
}

// ArchiveURL constructs the download URL for version v on platform p:
// <base>/<version>/<platform>/chromedriver-<platform>.zip
func ArchiveURL(base string, v version.Version, p string) (string, error) {
	if v.IsZero() {
		return "", fmt.Errorf("archive url: version is required")
	}
	if !platform.ValidDriverPlatform(p) {
		return "", fmt.Errorf("archive url: unsupported platform %q", p)
	}
	if base == "" {
		base = DefaultDistributionURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse distribution url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("distribution url %q must be absolute", base)
	}
	u.Path = path.Join("/", u.Path, v.String(), p, archiveName(p))
	return u.String(), nil
}

// executablePath is the location of the driver binary inside storeDir.
func executablePath(storeDir, p string) string {
	return filepath.Join(storeDir, archiveDir(p), executableName(p))
}
