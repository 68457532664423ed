// Package transport performs the outbound GET requests made by the lookup
// chain. A Getter returns either a completed response (any status code) or a
// transport-level error; interpreting the status and body is the caller's job.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 10 << 20
	userAgent           = "iss-spotter/1.0"
)

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// Getter performs a single GET and returns status and body, or an error when
// no response could be obtained.
type Getter interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Options configures an HTTPGetter. Zero values select the defaults.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// HTTPGetter is a Getter backed by net/http. It is safe for concurrent use.
type HTTPGetter struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPGetter creates an HTTPGetter with the given options.
func NewHTTPGetter(opts Options) *HTTPGetter {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &HTTPGetter{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Get fetches url. Non-200 responses are returned without error.
func (g *HTTPGetter) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "requesting %s", url)
	}
	defer resp.Body.Close()

	// Read one byte past the limit so an oversized body is detectable.
	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBodyBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	if int64(len(body)) > g.maxBodyBytes {
		return nil, errors.Errorf("response from %s exceeds %d byte limit", url, g.maxBodyBytes)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
