package scoreboard

import (
	"net/http"
	"time"

	"github.com/hexpel/copycatch/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithCachePath sets where the raw snapshot JSON is cached.
func WithCachePath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.cachePath = path
		}
	}
}

// WithMaxAge sets the snapshot staleness window.
func WithMaxAge(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client (e.g. a shorter timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithFetchTimeout bounds the remote scoreboard request.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
