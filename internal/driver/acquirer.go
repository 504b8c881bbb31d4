package driver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/driverman/internal/browser"
	"github.com/ZebulonRouseFrantzich/driverman/internal/logging"
	"github.com/ZebulonRouseFrantzich/driverman/internal/platform"
	"github.com/ZebulonRouseFrantzich/driverman/internal/resolver"
	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

// stagingPrefix names the scratch directory archives are unpacked into
// before they replace the live driver.
const stagingPrefix = ".extract-"

// StableSource reports the current stable driver version.
type StableSource interface {
	StableVersion(ctx context.Context) (version.Version, error)
}

// Config holds configuration for the acquirer
type Config struct {
	// StoreDir is the driver store directory.
	StoreDir string
	// Platform is the distribution platform segment, e.g. "linux64".
	Platform string
	// DistributionURL overrides DefaultDistributionURL.
	DistributionURL string
	// PinnedVersion, when set, is installed as-is without resolution.
	PinnedVersion version.Version

	// Fs is the filesystem for the store. Defaults to the OS filesystem.
	Fs afero.Fs
	// TempDir receives downloaded archives. Defaults to os.TempDir().
	TempDir string
	// HTTPClient carries the caller's proxy and timeout settings.
	HTTPClient *http.Client

	// Browser and Stable are required unless PinnedVersion is set.
	Browser browser.Detector
	Stable  StableSource

	Logger  logrus.FieldLogger
	Metrics *Metrics
}

// Acquirer installs the resolved driver version into the store.
type Acquirer struct {
	platform        string
	distributionURL string
	pinned          version.Version

	fs         afero.Fs
	store      *Store
	downloader *Downloader
	extractor  *Extractor
	resolver   *resolver.Resolver

	browser browser.Detector
	stable  StableSource
	logger  logrus.FieldLogger
	metrics *Metrics
}

// NewAcquirer creates a new acquirer
func NewAcquirer(cfg Config) (*Acquirer, error) {
	if cfg.StoreDir == "" {
		return nil, fmt.Errorf("StoreDir is required")
	}
	if !platform.ValidDriverPlatform(cfg.Platform) {
		return nil, fmt.Errorf("unsupported platform %q", cfg.Platform)
	}
	if cfg.PinnedVersion.IsZero() {
		if cfg.Browser == nil {
			return nil, fmt.Errorf("Browser is required when no version is pinned")
		}
		if cfg.Stable == nil {
			return nil, fmt.Errorf("Stable is required when no version is pinned")
		}
	}

	distributionURL := cfg.DistributionURL
	if distributionURL == "" {
		distributionURL = DefaultDistributionURL
	}
	// Fail on a bad base URL here rather than on the first probe.
	if _, err := ArchiveURL(distributionURL, version.New(1), cfg.Platform); err != nil {
		return nil, err
	}

	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := logging.OrDiscard(cfg.Logger).WithField("platform", cfg.Platform)

	a := &Acquirer{
		platform:        cfg.Platform,
		distributionURL: distributionURL,
		pinned:          cfg.PinnedVersion,
		fs:              fs,
		store:           NewStore(fs, cfg.StoreDir),
		downloader:      NewDownloader(cfg.HTTPClient, fs, cfg.TempDir, logger),
		extractor:       NewExtractor(fs),
		browser:         cfg.Browser,
		stable:          cfg.Stable,
		logger:          logger,
		metrics:         cfg.Metrics,
	}
	a.resolver = resolver.New(a, logger)
	return a, nil
}

// CachedVersion returns the version recorded in the store, or the zero
// Version when nothing has been installed.
func (a *Acquirer) CachedVersion() version.Version {
	return a.store.CachedVersion()
}

// DriverPath returns the path of the driver executable in the store.
func (a *Acquirer) DriverPath() string {
	return executablePath(a.store.Dir(), a.platform)
}

// StoreDir returns the store directory.
func (a *Acquirer) StoreDir() string {
	return a.store.Dir()
}

// PackageExists reports whether a driver archive is published for v.
func (a *Acquirer) PackageExists(ctx context.Context, v version.Version) (bool, error) {
	url, err := ArchiveURL(a.distributionURL, v, a.platform)
	if err != nil {
		return false, err
	}
	return a.downloader.PackageExists(ctx, url)
}

// Resolve computes the version Ensure would install without touching the
// store.
func (a *Acquirer) Resolve(ctx context.Context) (version.Version, error) {
	return a.target(ctx, a.CachedVersion())
}

// Ensure makes the store hold the resolved driver version. The returned
// Result is non-nil even on error and reports StateFailed; the store and
// its record are then unchanged.
func (a *Acquirer) Ensure(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{State: StateIdle, DriverPath: a.DriverPath()}

	err := a.ensure(ctx, res)
	res.Duration = time.Since(start)
	if err != nil {
		a.transition(res, StateFailed)
	}
	a.metrics.observeEnsure(res)
	return res, err
}

func (a *Acquirer) ensure(ctx context.Context, res *Result) error {
	a.transition(res, StateResolvingVersion)
	cached := a.CachedVersion()

	target, err := a.target(ctx, cached)
	if err != nil {
		return err
	}
	res.Version = target

	log := a.logger.WithFields(logrus.Fields{"target": target.String(), "cached": cached.String()})
	if target.Equal(cached) {
		log.Debug("driver is up to date")
		a.transition(res, StateUpToDate)
		return nil
	}

	url, err := ArchiveURL(a.distributionURL, target, a.platform)
	if err != nil {
		return err
	}

	a.transition(res, StateDownloading)
	log.WithField("url", url).Info("downloading driver")
	archivePath, err := a.downloader.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("download driver %s: %w", target, err)
	}
	a.metrics.observeDownload()
	defer a.removeArchive(archivePath)

	if err := a.store.EnsureDir(); err != nil {
		return err
	}

	a.transition(res, StateExtracting)
	staging, err := afero.TempDir(a.fs, a.store.Dir(), stagingPrefix)
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer a.removeStaging(staging)

	if err := a.extractor.ExtractZip(archivePath, staging); err != nil {
		return fmt.Errorf("extract driver %s: %w", target, err)
	}
	if err := a.checkInstalled(staging); err != nil {
		return fmt.Errorf("extract driver %s: %w", target, err)
	}
	a.removeArchive(archivePath)

	restore, err := a.install(staging)
	if err != nil {
		return fmt.Errorf("install driver %s: %w", target, err)
	}
	if err := a.store.WriteVersion(target); err != nil {
		restore()
		return err
	}
	a.transition(res, StateRecordUpdated)
	log.WithField("store", a.store.Dir()).Info("driver installed")
	return nil
}

// target returns the pinned version or resolves one. When the cached
// driver already matches the browser no network call is made.
func (a *Acquirer) target(ctx context.Context, cached version.Version) (version.Version, error) {
	if !a.pinned.IsZero() {
		return a.pinned, nil
	}

	browserVersion, err := a.browser.Version(ctx)
	if err != nil {
		return version.Version{}, fmt.Errorf("detect browser version: %w", err)
	}
	if cached.Equal(browserVersion) {
		return cached, nil
	}

	stable, err := a.stable.StableVersion(ctx)
	if err != nil {
		return version.Version{}, fmt.Errorf("query stable version: %w", err)
	}

	return a.resolver.Resolve(ctx, resolver.Inputs{
		Browser: browserVersion,
		Stable:  stable,
		Cached:  cached,
	})
}

// checkInstalled verifies the archive unpacked into root contained the
// driver binary and marks it executable.
func (a *Acquirer) checkInstalled(root string) error {
	path := executablePath(root, a.platform)
	info, err := a.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: archive has no %s", ErrExtractionFailed, executableName(a.platform))
		}
		return fmt.Errorf("stat driver: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrExtractionFailed, path)
	}
	return SetExecutable(a.fs, path)
}

// install swaps the driver directory unpacked in staging into the store.
// The previous directory is parked in staging until the returned restore
// func is called or staging is removed.
func (a *Acquirer) install(staging string) (restore func(), err error) {
	name := archiveDir(a.platform)
	live := filepath.Join(a.store.Dir(), name)
	parked := filepath.Join(staging, name+".previous")

	hadPrevious := true
	if err := a.fs.Rename(live, parked); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("move previous driver aside: %w", err)
		}
		hadPrevious = false
	}

	restore = func() {
		if err := a.fs.RemoveAll(live); err != nil {
			a.logger.WithError(err).WithField("path", live).Warn("failed to remove new driver")
		}
		if !hadPrevious {
			return
		}
		if err := a.fs.Rename(parked, live); err != nil {
			a.logger.WithError(err).WithField("path", live).Error("failed to restore previous driver")
		}
	}

	if err := a.fs.Rename(filepath.Join(staging, name), live); err != nil {
		restore()
		return nil, fmt.Errorf("move driver into store: %w", err)
	}
	return restore, nil
}

func (a *Acquirer) removeStaging(dir string) {
	if err := a.fs.RemoveAll(dir); err != nil {
		a.logger.WithError(err).WithField("path", dir).Warn("failed to remove staging dir")
	}
}

func (a *Acquirer) removeArchive(path string) {
	if err := a.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.WithError(err).WithField("path", path).Warn("failed to remove downloaded archive")
	}
}

func (a *Acquirer) transition(res *Result, to State) {
	a.logger.WithFields(logrus.Fields{"from": res.State.String(), "to": to.String()}).Debug("state")
	res.State = to
}
