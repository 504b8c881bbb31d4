package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/driverman/internal/logging"
)

// ErrDownloadFailed is returned when the archive cannot be fetched.
var ErrDownloadFailed = errors.New("driver download failed")

// StatusError is a non-200 response from the distribution host.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GET %s: unexpected status code: %d", ErrDownloadFailed, e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrDownloadFailed
}

// Downloader fetches distribution archives. It makes a single attempt per
// call; the caller owns retries and timeouts through the http.Client.
type Downloader struct {
	client  *http.Client
	fs      afero.Fs
	tempDir string
	logger  logrus.FieldLogger
}

// NewDownloader creates a downloader writing temporary archives to tempDir
// on fs. An empty tempDir uses the system temporary directory.
func NewDownloader(client *http.Client, fs afero.Fs, tempDir string, logger logrus.FieldLogger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Downloader{
		client:  client,
		fs:      fs,
		tempDir: tempDir,
		logger:  logging.OrDiscard(logger),
	}
}

// PackageExists reports whether url answers 200. Any other status means the
// package is not published; only transport failures are errors.
func (d *Downloader) PackageExists(ctx context.Context, url string) (bool, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return false, err
	}
	// The body is the archive itself; the status is all the probe needs.
	resp.Body.Close()

	d.logger.WithFields(logrus.Fields{"url": url, "status": resp.StatusCode}).Debug("probed driver package")
	return resp.StatusCode == http.StatusOK, nil
}

// Fetch downloads url into a new temporary file and returns its path. The
// caller removes the file. Nothing is left behind on failure.
func (d *Downloader) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	if err := d.fs.MkdirAll(d.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	tmpFile, err := afero.TempFile(d.fs, d.tempDir, "chromedriver-*.zip")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			_ = d.fs.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: copy response body: %w", ErrDownloadFailed, err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	d.logger.WithFields(logrus.Fields{"url": url, "bytes": n, "path": tmpPath}).Debug("downloaded driver archive")
	cleanupNeeded = false
	return tmpPath, nil
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}
