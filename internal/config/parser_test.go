package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/driverman/internal/platform"
)

func windowsDetector() platform.Detector {
	return platform.StaticDetector{Info: &platform.Info{OS: "windows", Arch: "amd64", ArchRaw: "x86_64"}}
}

func TestParserParseString(t *testing.T) {
	t.Parallel()

	code := `
		driverman = {
			browser_path = "/usr/bin/google-chrome",
			store_dir = "/opt/driverman",
			pinned_version = "120.0.6099.109",
			stable_url = "https://meta.example/stable.json",
			download_url = "https://mirror.example/cft",
			platform = "linux64",
			timeout = "90s",
			proxy = {
				http = "http://proxy:3128",
				https = "http://proxy:3129",
				no_proxy = "localhost,.internal",
			},
		}
	`

	opts, err := NewParser(nil).ParseString(context.Background(), code)
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/google-chrome", opts.BrowserPath.String)
	assert.Equal(t, "/opt/driverman", opts.StoreDir.String)
	assert.Equal(t, "120.0.6099.109", opts.PinnedVersion.String)
	assert.Equal(t, "https://meta.example/stable.json", opts.StableURL.String)
	assert.Equal(t, "https://mirror.example/cft", opts.DistributionURL.String)
	assert.Equal(t, "linux64", opts.Platform.String)
	assert.Equal(t, NullDurationFrom(90*time.Second), opts.Timeout)
	assert.Equal(t, "http://proxy:3128", opts.HTTPProxy.String)
	assert.Equal(t, "http://proxy:3129", opts.HTTPSProxy.String)
	assert.Equal(t, "localhost,.internal", opts.NoProxy.String)
}

func TestParserPartialTableLeavesOthersUnset(t *testing.T) {
	t.Parallel()

	opts, err := NewParser(nil).ParseString(context.Background(), `driverman = { store_dir = "/opt/driverman", timeout = 30 }`)
	require.NoError(t, err)

	assert.True(t, opts.StoreDir.Valid)
	assert.False(t, opts.BrowserPath.Valid)
	assert.False(t, opts.PinnedVersion.Valid)
	assert.False(t, opts.HTTPProxy.Valid)
	assert.Equal(t, 30*time.Second, opts.Timeout.Duration)
}

func TestParserNoTable(t *testing.T) {
	t.Parallel()

	opts, err := NewParser(nil).ParseString(context.Background(), `local x = 1`)
	require.NoError(t, err)
	assert.Equal(t, Options{}, opts)
}

func TestParserPlatformTable(t *testing.T) {
	t.Parallel()

	code := `
		driverman = {
			browser_path = platform.is_windows
				and [[C:\Program Files\Google\Chrome\Application\chrome.exe]]
				or "/usr/bin/google-chrome",
			platform = platform.driver,
		}
	`

	opts, err := NewParser(windowsDetector()).ParseString(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, `C:\Program Files\Google\Chrome\Application\chrome.exe`, opts.BrowserPath.String)
	assert.Equal(t, "win64", opts.Platform.String)
}

func TestParserErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
	}{
		{name: "syntax_error", code: `driverman = {`},
		{name: "not_a_table", code: `driverman = "yes"`},
		{name: "unknown_field", code: `driverman = { store = "/opt" }`},
		{name: "wrong_type", code: `driverman = { store_dir = 42 }`},
		{name: "bad_timeout", code: `driverman = { timeout = "soon" }`},
		{name: "negative_timeout", code: `driverman = { timeout = -5 }`},
		{name: "proxy_not_table", code: `driverman = { proxy = "http://proxy" }`},
		{name: "unknown_proxy_field", code: `driverman = { proxy = { ftp = "x" } }`},
		{name: "positional_entry", code: `driverman = { "linux64" }`},
		{name: "platform_read_only", code: `platform.os = "plan9"`},
		{name: "sandbox_violation", code: `driverman = { store_dir = os.getenv("HOME") }`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewParser(windowsDetector()).ParseString(context.Background(), tt.code)
			require.Error(t, err)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr), "want *ParseError, got %T", err)
		})
	}
}

func TestParserDetectorFailure(t *testing.T) {
	t.Parallel()

	detector := platform.StaticDetector{Err: errors.New("no uname")}
	_, err := NewParser(detector).ParseString(context.Background(), `driverman = {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform detection failed")
}

func TestParserCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).ParseString(ctx, `while true do end`)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	err := &ParseError{Message: "Lua syntax error", Detail: "line 1: bad\nstack traceback:\n\t[G]: ?"}
	assert.Equal(t, "Lua syntax error: line 1: bad", FormatError(err, false))
	assert.Contains(t, FormatError(err, true), "Details:")
	assert.Equal(t, "plain", FormatError(errors.New("plain"), false))
}
