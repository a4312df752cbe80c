package client

import (
	"net/http"
	"time"
)

// Option configures a Client at construction.  Invalid values leave the
// default in place.
type Option func(*Client)

// WithHTTPClient replaces the transport client.  Apply WithTimeout after it
// to override the replacement's timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetryMax bounds retries of 5xx, 429 and transport failures.  Zero
// disables retrying.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n < 0 {
			return
		}
		c.retryMax = n
	}
}

// WithRetryWait sets the backoff window.  A non-positive min is ignored;
// max is only taken when it is not below min.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min <= 0 {
			return
		}
		c.retryWaitMin = min
		if max >= min {
			c.retryWaitMax = max
		}
	}
}

// WithTimeout bounds each attempt, not the whole retried call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		c.httpClient.Timeout = d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua == "" {
			return
		}
		c.userAgent = ua
	}
}

//Personal.AI order the ending
