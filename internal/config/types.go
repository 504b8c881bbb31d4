package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/guregu/null.v3"

	"github.com/ZebulonRouseFrantzich/driverman/internal/platform"
	"github.com/ZebulonRouseFrantzich/driverman/internal/transport"
	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

// Config is the resolved driverman configuration. It is built once by Load
// and passed by value; nothing mutates it afterwards.
type Config struct {
	// BrowserPath is the Chrome executable whose version is matched.
	BrowserPath string
	// StoreDir holds the extracted driver and its version record.
	StoreDir string
	// Proxy is passed through to the HTTP client.
	Proxy transport.ProxyConfig
	// PinnedVersion, when not zero, is installed without resolution.
	PinnedVersion version.Version
	// StableURL is the stable-channel metadata document.
	StableURL string
	// DistributionURL is the base URL of the driver archives.
	DistributionURL string
	// Platform is the distribution platform segment, e.g. "win64".
	Platform string
	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration
}

// Options is one configuration layer. Only Valid fields override lower
// layers.
type Options struct {
	BrowserPath     null.String  `json:"browser_path" envconfig:"DRIVERMAN_BROWSER_PATH"`
	StoreDir        null.String  `json:"store_dir" envconfig:"DRIVERMAN_STORE_DIR"`
	PinnedVersion   null.String  `json:"pinned_version" envconfig:"DRIVERMAN_PINNED_VERSION"`
	StableURL       null.String  `json:"stable_url" envconfig:"DRIVERMAN_STABLE_URL"`
	DistributionURL null.String  `json:"download_url" envconfig:"DRIVERMAN_DOWNLOAD_URL"`
	Platform        null.String  `json:"platform" envconfig:"DRIVERMAN_PLATFORM"`
	HTTPProxy       null.String  `json:"http_proxy" envconfig:"DRIVERMAN_HTTP_PROXY"`
	HTTPSProxy      null.String  `json:"https_proxy" envconfig:"DRIVERMAN_HTTPS_PROXY"`
	NoProxy         null.String  `json:"no_proxy" envconfig:"DRIVERMAN_NO_PROXY"`
	Timeout         NullDuration `json:"timeout" envconfig:"DRIVERMAN_TIMEOUT"`
}

// Apply returns o with the fields other sets copied over it. Empty strings
// do not override, except for the proxy fields where "" disables a proxy
// set by a lower layer.
//
//nolint:cyclop
func (o Options) Apply(other Options) Options {
	if other.BrowserPath.Valid && other.BrowserPath.String != "" {
		o.BrowserPath = other.BrowserPath
	}
	if other.StoreDir.Valid && other.StoreDir.String != "" {
		o.StoreDir = other.StoreDir
	}
	if other.PinnedVersion.Valid && other.PinnedVersion.String != "" {
		o.PinnedVersion = other.PinnedVersion
	}
	if other.StableURL.Valid && other.StableURL.String != "" {
		o.StableURL = other.StableURL
	}
	if other.DistributionURL.Valid && other.DistributionURL.String != "" {
		o.DistributionURL = other.DistributionURL
	}
	if other.Platform.Valid && other.Platform.String != "" {
		o.Platform = other.Platform
	}
	if other.HTTPProxy.Valid {
		o.HTTPProxy = other.HTTPProxy
	}
	if other.HTTPSProxy.Valid {
		o.HTTPSProxy = other.HTTPSProxy
	}
	if other.NoProxy.Valid {
		o.NoProxy = other.NoProxy
	}
	if other.Timeout.Valid {
		o.Timeout = other.Timeout
	}
	return o
}

// NullDuration is a time.Duration that may be unset.
type NullDuration struct {
	Duration time.Duration
	Valid    bool
}

// NullDurationFrom returns a valid NullDuration.
func NullDurationFrom(d time.Duration) NullDuration {
	return NullDuration{Duration: d, Valid: true}
}

// UnmarshalText parses a Go duration such as "90s". Empty text is unset.
func (d *NullDuration) UnmarshalText(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		*d = NullDuration{}
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = NullDuration{Duration: parsed, Valid: true}
	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// Resolve converts merged options into a Config. Unset fields stay empty;
// Validate reports the ones that are required.
func (o Options) Resolve() (Config, error) {
	cfg := Config{
		BrowserPath:     o.BrowserPath.String,
		StoreDir:        o.StoreDir.String,
		StableURL:       o.StableURL.String,
		DistributionURL: o.DistributionURL.String,
		Platform:        o.Platform.String,
		Timeout:         o.Timeout.Duration,
		Proxy: transport.ProxyConfig{
			HTTP:    o.HTTPProxy.String,
			HTTPS:   o.HTTPSProxy.String,
			NoProxy: o.NoProxy.String,
		},
	}

	if o.StoreDir.Valid && o.StoreDir.String != "" {
		dir, err := expandHome(o.StoreDir.String)
		if err != nil {
			return Config{}, &ValidationError{Field: luaFieldStoreDir, Message: err.Error()}
		}
		cfg.StoreDir = dir
	}

	if o.PinnedVersion.Valid && o.PinnedVersion.String != "" {
		v, err := version.Parse(o.PinnedVersion.String)
		if err != nil {
			return Config{}, &ValidationError{Field: luaFieldPinned, Message: err.Error()}
		}
		cfg.PinnedVersion = v
	}

	return cfg, nil
}

// Validate performs basic validation on a Config.
func (c Config) Validate() error {
	if c.StoreDir == "" {
		return &ValidationError{Field: luaFieldStoreDir, Message: "store directory is required"}
	}
	if !filepath.IsAbs(c.StoreDir) {
		return &ValidationError{Field: luaFieldStoreDir, Message: fmt.Sprintf("must be an absolute path (got: %s)", c.StoreDir)}
	}
	if c.PinnedVersion.IsZero() && c.BrowserPath == "" {
		return &ValidationError{Field: luaFieldBrowserPath, Message: "browser path is required unless a version is pinned"}
	}

	if err := validateHTTPURL(c.StableURL); err != nil {
		return &ValidationError{Field: luaFieldStableURL, Message: err.Error()}
	}
	if err := validateHTTPURL(c.DistributionURL); err != nil {
		return &ValidationError{Field: luaFieldDownloadURL, Message: err.Error()}
	}

	if !platform.ValidDriverPlatform(c.Platform) {
		return &ValidationError{
			Field:   luaFieldPlatform,
			Message: fmt.Sprintf("unknown platform %q (expected one of linux64, mac-x64, mac-arm64, win32, win64)", c.Platform),
		}
	}

	if c.Timeout < 0 {
		return &ValidationError{Field: luaFieldTimeout, Message: "timeout cannot be negative"}
	}

	for field, proxy := range map[string]string{"proxy.http": c.Proxy.HTTP, "proxy.https": c.Proxy.HTTPS} {
		if proxy == "" {
			continue
		}
		if _, err := url.Parse(proxy); err != nil {
			return &ValidationError{Field: field, Message: fmt.Sprintf("invalid proxy URL: %v", err)}
		}
	}

	return nil
}

// validateHTTPURL checks for an absolute http(s) URL.
func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %s)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}
	return nil
}
