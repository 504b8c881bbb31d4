package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ZebulonRouseFrantzich/driverman/internal/lock"
	"github.com/ZebulonRouseFrantzich/driverman/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

// fakeCFT serves stable metadata and linux64 driver archives.
type fakeCFT struct {
	*httptest.Server

	mu       sync.Mutex
	stable   string
	archives map[string]bool
	requests int
}

func newFakeCFT(t *testing.T, stable string, published ...string) *fakeCFT {
	t.Helper()

	archive := linuxDriverZip(t)
	f := &fakeCFT{stable: stable, archives: map[string]bool{}}
	for _, v := range published {
		f.archives["/"+v+"/linux64/chromedriver-linux64.zip"] = true
	}

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		published := f.archives[r.URL.Path]
		f.mu.Unlock()

		switch {
		case r.URL.Path == "/stable.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"channels":{"Stable":{"channel":"Stable","version":"` + f.stable + `"}}}`))
		case published:
			_, _ = w.Write(archive)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeCFT) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func linuxDriverZip(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	hdr := &zip.FileHeader{Name: "chromedriver-linux64/chromedriver", Method: zip.Deflate}
	hdr.SetMode(0o755)
	w, err := zw.CreateHeader(hdr)
	require.NoError(t, err)
	_, err = w.Write([]byte("#!/bin/sh\necho ChromeDriver\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI runs driverman with an empty environment.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	c := newRootCommand(context.Background(), &stdout, &stderr)
	c.lookup = func(string) (string, bool) { return "", false }
	code := c.execute(args)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// baseArgs points driverman at srv and a temporary store.
func baseArgs(srv *fakeCFT, storeDir string) []string {
	return []string{
		"--store-dir", storeDir,
		"--platform", "linux64",
		"--stable-url", srv.URL + "/stable.json",
		"--download-url", srv.URL,
		"--no-color",
	}
}

func TestVersionCommand(t *testing.T) {
	res := runCLI(t, "version")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "driverman "+Version))

	res = runCLI(t, "version", "--json")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"version":"`+Version+`"`)
}

func TestEnsurePinnedVersion(t *testing.T) {
	testutil.SetupTestEnv(t)
	srv := newFakeCFT(t, "121.0.6167.57", "120.0.6099.109")
	storeDir := filepath.Join(t.TempDir(), "store")
	metricsFile := filepath.Join(t.TempDir(), "driverman.prom")

	args := append(baseArgs(srv, storeDir), "--pinned-version", "120.0.6099.109", "--metrics-file", metricsFile)
	res := runCLI(t, args...)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Installed chromedriver 120.0.6099.109")
	assert.Contains(t, res.stdout, filepath.Join(storeDir, "chromedriver-linux64", "chromedriver"))

	record, err := os.ReadFile(filepath.Join(storeDir, "version.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"120.0.6099.109"}`, string(record))

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `driverman_ensure_total{state="record-updated"} 1`)
	assert.Contains(t, string(metrics), "driverman_downloads_total 1")

	_, err = os.Stat(filepath.Join(storeDir, lock.FileName))
	assert.True(t, os.IsNotExist(err), "lock must be released")

	// Same pin again: up to date without any request.
	requests := srv.requestCount()
	res = runCLI(t, append(baseArgs(srv, storeDir), "ensure", "--pinned-version", "120.0.6099.109")...)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "chromedriver 120.0.6099.109 is up to date")
	assert.Equal(t, requests, srv.requestCount())

	res = runCLI(t, append(baseArgs(srv, storeDir), "cached", "--path", "--pinned-version", "120.0.6099.109")...)
	require.Equal(t, exitOK, res.code, res.stderr)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "120.0.6099.109", lines[0])
	assert.Equal(t, filepath.Join(storeDir, "chromedriver-linux64", "chromedriver"), lines[1])
}

func TestCachedEmptyStore(t *testing.T) {
	testutil.SetupTestEnv(t)
	srv := newFakeCFT(t, "121.0.6167.57")

	args := append(baseArgs(srv, filepath.Join(t.TempDir(), "store")), "cached", "--pinned-version", "121.0.6167.57")
	res := runCLI(t, args...)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "0\n", res.stdout)
	assert.Zero(t, srv.requestCount())
}

func TestEnsureDownloadNotFound(t *testing.T) {
	testutil.SetupTestEnv(t)
	srv := newFakeCFT(t, "121.0.6167.57")
	storeDir := filepath.Join(t.TempDir(), "store")

	res := runCLI(t, append(baseArgs(srv, storeDir), "--pinned-version", "119.0.6045.105")...)
	assert.Equal(t, exitNetwork, res.code)
	assert.Contains(t, res.stderr, "Error:")
	assert.Contains(t, res.stderr, "404")

	_, err := os.Stat(filepath.Join(storeDir, "version.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureLocked(t *testing.T) {
	testutil.SetupTestEnv(t)
	srv := newFakeCFT(t, "121.0.6167.57", "121.0.6167.57")
	storeDir := filepath.Join(t.TempDir(), "store")

	l, err := lock.Acquire(context.Background(), storeDir)
	require.NoError(t, err)
	defer l.Release()

	res := runCLI(t, append(baseArgs(srv, storeDir), "--pinned-version", "121.0.6167.57")...)
	assert.Equal(t, exitLocked, res.code)
	assert.Zero(t, srv.requestCount())

	res = runCLI(t, append(baseArgs(srv, storeDir), "--pinned-version", "121.0.6167.57", "--no-lock")...)
	assert.Equal(t, exitOK, res.code, res.stderr)
}

func TestUsageErrors(t *testing.T) {
	testutil.SetupTestEnv(t)
	srv := newFakeCFT(t, "121.0.6167.57")
	storeDir := filepath.Join(t.TempDir(), "store")

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown_flag", args: []string{"--bogus"}},
		{name: "unexpected_argument", args: []string{"ensure", "extra"}},
		{name: "bad_log_format", args: append(baseArgs(srv, storeDir), "--log-format", "xml", "--pinned-version", "1.2.3.4")},
		{name: "bad_platform", args: append(baseArgs(srv, storeDir), "--platform", "solaris", "--pinned-version", "1.2.3.4")},
		{name: "bad_pinned_version", args: append(baseArgs(srv, storeDir), "--pinned-version", "latest")},
		{name: "relative_store", args: append(baseArgs(srv, "store"), "--pinned-version", "1.2.3.4")},
		{name: "negative_timeout", args: append(baseArgs(srv, storeDir), "--timeout", "-1s", "--pinned-version", "1.2.3.4")},
		{name: "missing_config_file", args: append(baseArgs(srv, storeDir), "--config", "/nonexistent/driverman.lua")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, res.code, "stderr: %s", res.stderr)
			assert.Contains(t, res.stderr, "Error:")
		})
	}
	assert.Zero(t, srv.requestCount())
}

func TestConfigFileLayer(t *testing.T) {
	testutil.SetupTestEnv(t)
	srv := newFakeCFT(t, "121.0.6167.57", "121.0.6167.57")
	storeDir := filepath.Join(t.TempDir(), "store")

	configFile := filepath.Join(t.TempDir(), "driverman.lua")
	require.NoError(t, os.WriteFile(configFile, []byte(`
		driverman = {
			store_dir = "`+filepath.ToSlash(storeDir)+`",
			platform = "linux64",
			pinned_version = "121.0.6167.57",
			stable_url = "`+srv.URL+`/stable.json",
			download_url = "`+srv.URL+`",
		}
	`), 0o644))

	res := runCLI(t, "--config", configFile, "--no-color")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Installed chromedriver 121.0.6167.57")
}
