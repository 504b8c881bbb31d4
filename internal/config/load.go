package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/guregu/null.v3"

	"github.com/ZebulonRouseFrantzich/driverman/internal/browser"
	"github.com/ZebulonRouseFrantzich/driverman/internal/driver"
	"github.com/ZebulonRouseFrantzich/driverman/internal/logging"
	"github.com/ZebulonRouseFrantzich/driverman/internal/metadata"
	"github.com/ZebulonRouseFrantzich/driverman/internal/platform"
)

// LoadOptions are the inputs of Load besides the defaults.
type LoadOptions struct {
	// ConfigFile is an optional Lua file. Empty skips the file layer.
	ConfigFile string
	// Flags is the command line layer.
	Flags Options
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup LookupFunc
	// Detector describes the host. Defaults to platform.NewDetector().
	Detector platform.Detector
	// FindBrowser locates Chrome when no browser path is configured.
	// Defaults to browser.FindExecutable.
	FindBrowser func() (string, error)
	// UserCacheDir defaults to os.UserCacheDir.
	UserCacheDir func() (string, error)
	// Fs reads the config file. Defaults to the OS filesystem.
	Fs     afero.Fs
	Logger logrus.FieldLogger
}

// Load merges defaults, the config file, the environment and flags into a
// validated Config.
func Load(ctx context.Context, opts LoadOptions) (Config, error) {
	logger := logging.OrDiscard(opts.Logger)
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.Detector == nil {
		opts.Detector = platform.NewDetector()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	merged := Options{}

	if opts.ConfigFile != "" {
		fileOpts, err := parseFile(ctx, opts.Fs, opts.ConfigFile, opts.Detector)
		if err != nil {
			return Config{}, err
		}
		logger.WithField("file", opts.ConfigFile).Debug("loaded config file")
		merged = merged.Apply(fileOpts)
	}

	envOpts, err := FromEnv(opts.Lookup)
	if err != nil {
		return Config{}, err
	}
	merged = merged.Apply(envOpts).Apply(opts.Flags)

	defaults, err := Defaults(ctx, opts, merged)
	if err != nil {
		return Config{}, err
	}
	merged = defaults.Apply(merged)

	cfg, err := merged.Resolve()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logger.WithFields(logrus.Fields{
		"browser":  cfg.BrowserPath,
		"store":    cfg.StoreDir,
		"platform": cfg.Platform,
		"pinned":   cfg.PinnedVersion.String(),
	}).Debug("configuration loaded")
	return cfg, nil
}

// Defaults returns the lowest layer. Values that need probing the host are
// only computed when set is missing them.
func Defaults(ctx context.Context, opts LoadOptions, set Options) (Options, error) {
	defaults := Options{
		StableURL:       null.NewString(metadata.DefaultStableURL, true),
		DistributionURL: null.NewString(driver.DefaultDistributionURL, true),
		Timeout:         NullDurationFrom(DefaultTimeout),
	}

	if !set.StoreDir.Valid || set.StoreDir.String == "" {
		userCacheDir := opts.UserCacheDir
		if userCacheDir == nil {
			userCacheDir = os.UserCacheDir
		}
		cacheDir, err := userCacheDir()
		if err != nil {
			return Options{}, fmt.Errorf("determine cache directory: %w", err)
		}
		defaults.StoreDir = null.StringFrom(filepath.Join(cacheDir, storeDirName))
	}

	if !set.Platform.Valid || set.Platform.String == "" {
		detector := opts.Detector
		if detector == nil {
			detector = platform.NewDetector()
		}
		info, err := detector.Detect(ctx)
		if err != nil {
			return Options{}, fmt.Errorf("detect platform: %w", err)
		}
		p, err := platform.DriverPlatform(info)
		if err != nil {
			return Options{}, fmt.Errorf("detect platform: %w", err)
		}
		defaults.Platform = null.StringFrom(p)
	}

	pinned := set.PinnedVersion.Valid && set.PinnedVersion.String != ""
	if !pinned && (!set.BrowserPath.Valid || set.BrowserPath.String == "") {
		find := opts.FindBrowser
		if find == nil {
			find = browser.FindExecutable
		}
		path, err := find()
		switch {
		case err == nil:
			defaults.BrowserPath = null.StringFrom(path)
		case errors.Is(err, browser.ErrNotFound):
			// Report the conventional location so the error names a path.
			defaults.BrowserPath = null.StringFrom(browser.DefaultPath())
		default:
			return Options{}, fmt.Errorf("find browser: %w", err)
		}
	}

	return defaults, nil
}

func parseFile(ctx context.Context, fs afero.Fs, path string, detector platform.Detector) (Options, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return Options{}, fmt.Errorf("read config file: %w", err)
	}
	if info.Size() > MaxConfigFileSize {
		return Options{}, fmt.Errorf("config file %s is too large (%d bytes, max %d)", path, info.Size(), MaxConfigFileSize)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Options{}, fmt.Errorf("read config file: %w", err)
	}

	opts, err := NewParser(detector).ParseString(ctx, string(data))
	if err != nil {
		return Options{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return opts, nil
}

// expandHome expands a leading "~/" to the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	if s >= math.MaxInt64/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(s * float64(time.Second))
}
