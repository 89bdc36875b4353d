// Package chat sends a single chat request and exposes the streamed reply.
package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	loggerpkg "github.com/minhyannv/delta-chat-go/pkg/logger"
)

// Client posts chat requests to one endpoint. It never retries and sets no timeout;
// bound a call through ctx if needed.
type Client struct {
	endpoint string
	http     *http.Client
	logger   loggerpkg.Logger
}

// NewClient returns a client for DefaultEndpoint unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		http:     &http.Client{},
		logger:   loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Send posts req and returns either a Stream over the 200 response body or an error.
// A non-200 answer yields a *StatusError carrying the status code and full body.
// The caller must Close the returned Stream.
func (c *Client) Send(ctx context.Context, req ChatRequest) (*Stream, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := req.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending chat request", map[string]any{
		"url":     c.endpoint,
		"payload": req.logFields(),
	})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read error response (status %d): %w", resp.StatusCode, readErr)
		}
		c.logger.Debug("chat request failed", map[string]any{
			"status": resp.StatusCode,
			"bytes":  len(raw),
		})
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	c.logger.Debug("chat response streaming", map[string]any{
		"status":       resp.StatusCode,
		"content_type": resp.Header.Get("Content-Type"),
	})
	return NewStream(resp.Body), nil
}
