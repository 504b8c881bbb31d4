// Package metadata queries the driver distributor for the version it
// currently publishes as "stable".
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/ZebulonRouseFrantzich/driverman/internal/logging"
	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

const (
	// DefaultStableURL lists the last known good Chrome for Testing versions per channel.
	DefaultStableURL = "https://googlechromelabs.github.io/chrome-for-testing/last-known-good-versions-with-downloads.json"

	// StablePath is the gjson path of the stable version in the metadata document.
	StablePath = "channels.Stable.version"

	// maxBodySize caps how much of the metadata document is read.
	maxBodySize = 8 << 20
)

// ErrFetchFailed is wrapped by every failure to obtain the stable version.
var ErrFetchFailed = errors.New("metadata fetch failed")

// FetchError is returned for a non-200 metadata response.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", ErrFetchFailed, e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return ErrFetchFailed
}

// Client reads the stable version from the metadata endpoint.
type Client struct {
	httpClient *http.Client
	stableURL  string
	logger     logrus.FieldLogger
}

// NewClient creates a Client. An empty stableURL selects DefaultStableURL;
// a nil httpClient selects http.DefaultClient.
func NewClient(httpClient *http.Client, stableURL string, logger logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if stableURL == "" {
		stableURL = DefaultStableURL
	}
	return &Client{
		httpClient: httpClient,
		stableURL:  stableURL,
		logger:     logging.OrDiscard(logger),
	}
}

// URL returns the metadata endpoint in use.
func (c *Client) URL() string {
	return c.stableURL
}

// StableVersion fetches and parses channels.Stable.version. Any non-200
// response is a hard failure; nothing is retried.
func (c *Client) StableVersion(ctx context.Context) (version.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.stableURL, nil)
	if err != nil {
		return version.Version{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("url", c.stableURL).Debug("fetching stable version")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return version.Version{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return version.Version{}, &FetchError{URL: c.stableURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return version.Version{}, fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}
	if len(body) > maxBodySize {
		return version.Version{}, fmt.Errorf("%w: response exceeds %d bytes", ErrFetchFailed, maxBodySize)
	}

	return parseStable(body)
}

// parseStable extracts the stable version from a metadata document.
func parseStable(body []byte) (version.Version, error) {
	if !gjson.ValidBytes(body) {
		return version.Version{}, fmt.Errorf("%w: response is not valid JSON", ErrFetchFailed)
	}

	result := gjson.GetBytes(body, StablePath)
	if !result.Exists() {
		return version.Version{}, fmt.Errorf("%w: path %q not found in response", ErrFetchFailed, StablePath)
	}
	if result.Type != gjson.String {
		return version.Version{}, fmt.Errorf("%w: value at %q is not a string (got %s)", ErrFetchFailed, StablePath, result.Type)
	}

	v, err := version.Parse(result.String())
	if err != nil {
		return version.Version{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return v, nil
}
