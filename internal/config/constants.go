package config

import "time"

// Lua schema field names and globals
const (
	luaGlobal            = "driverman"
	luaFieldBrowserPath  = "browser_path"
	luaFieldStoreDir     = "store_dir"
	luaFieldPinned       = "pinned_version"
	luaFieldStableURL    = "stable_url"
	luaFieldDownloadURL  = "download_url"
	luaFieldPlatform     = "platform"
	luaFieldTimeout      = "timeout"
	luaFieldProxy        = "proxy"
	luaFieldProxyHTTP    = "http"
	luaFieldProxyHTTPS   = "https"
	luaFieldProxyNoProxy = "no_proxy"
)

const (
	// DefaultTimeout bounds each HTTP request when no timeout is configured.
	DefaultTimeout = 5 * time.Minute
	// MaxConfigFileSize is the largest config file Load reads.
	MaxConfigFileSize = 1 << 20
	// storeDirName is the store directory under the user cache dir.
	storeDirName = "driverman"
)
