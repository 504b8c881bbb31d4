// Package transport builds the HTTP client shared by the metadata query,
// the package probe and the archive download.
package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// DefaultUserAgent is the User-Agent header sent with every request.
const DefaultUserAgent = "driverman/1.0"

// maxRedirects mirrors the redirect budget of the original downloader.
const maxRedirects = 10

// ProxyConfig is passed through to the outbound transport unchanged.
// Empty fields mean "no proxy" for that scheme.
type ProxyConfig struct {
	HTTP    string
	HTTPS   string
	NoProxy string
}

// IsZero reports whether no proxy is configured.
func (p ProxyConfig) IsZero() bool {
	return p.HTTP == "" && p.HTTPS == "" && p.NoProxy == ""
}

// Options configures NewClient.
type Options struct {
	// Timeout bounds each request end to end. Zero means no timeout.
	Timeout   time.Duration
	Proxy     ProxyConfig
	UserAgent string
}

// NewClient returns an *http.Client honoring the proxy settings, timeout
// and User-Agent in opts.
func NewClient(opts Options) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.Proxy = proxyFunc(opts.Proxy)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &userAgentTransport{base: base, userAgent: userAgent},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// proxyFunc maps ProxyConfig onto httpproxy. With nothing configured no
// proxy is used, environment variables are not consulted.
func proxyFunc(p ProxyConfig) func(*http.Request) (*url.URL, error) {
	if p.IsZero() {
		return nil
	}
	cfg := &httpproxy.Config{
		HTTPProxy:  p.HTTP,
		HTTPSProxy: p.HTTPS,
		NoProxy:    p.NoProxy,
	}
	fn := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
