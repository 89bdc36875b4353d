package chat

import (
	"net/http"

	loggerpkg "github.com/minhyannv/delta-chat-go/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the chat endpoint URL.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithHTTPClient sets the HTTP client used to send requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(c *Client) {
		c.logger = loggerpkg.OrNop(l)
	}
}
