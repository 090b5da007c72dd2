package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
)

const (
	// DefaultClientTimeout is the default HTTP request timeout
	DefaultClientTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the initial delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second
)

// RemoteError is an error reported by a running editor.
type RemoteError struct {
	StatusCode int
	Message    string
	Hint       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("editor returned %d: %s", e.StatusCode, e.Message)
}

// retryable reports whether a request that failed with err may succeed if
// sent again. Transport failures and gateway errors qualify; errors the
// editor reported about the request itself do not.
func retryable(err error) bool {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode == http.StatusBadGateway || remote.StatusCode == http.StatusGatewayTimeout
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Client talks to the HTTP API of a running editor, typically one found
// with discovery.Scan.
type Client struct {
	// BaseURL is the editor's base URL (e.g., "http://192.168.4.16:8765")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts; it doubles
	// up to MaxRetryDelay
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewClient creates a client for the editor at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HTTPClient:    &http.Client{Timeout: DefaultClientTimeout},
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: DefaultMaxRetryDelay,
	}
}

// State fetches the configuration being edited.
func (c *Client) State(ctx context.Context) (*kiosk.Configuration, error) {
	var cfg kiosk.Configuration
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Preview fetches the encoded document, validation problems and summary.
func (c *Client) Preview(ctx context.Context) (*Preview, error) {
	var p Preview
	if err := c.do(ctx, http.MethodGet, "/api/preview", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Dispatch applies a named command on the editor and returns the
// resulting preview. Every connected browser sees the change.
func (c *Client) Dispatch(ctx context.Context, name string, payload any) (*Preview, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", name, err)
	}
	body, err := json.Marshal(Envelope{Command: name, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}

	var p Preview
	if err := c.do(ctx, http.MethodPost, "/api/commands", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Push replaces the editor's configuration with cfg.
func (c *Client) Push(ctx context.Context, cfg *kiosk.Configuration) (*Preview, error) {
	return c.Dispatch(ctx, "replace", kiosk.Replace{Config: cfg})
}

// do sends a request with retries and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var lastErr error
	delay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug("Retrying editor request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, c.MaxRetryDelay)
		}

		lastErr = c.attempt(ctx, method, path, body, out)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// attempt performs a single request
func (c *Client) attempt(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		remote := &RemoteError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			remote.Message = e.Error
			remote.Hint = e.Hint
		}
		return remote
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse editor response: %w", err)
	}
	return nil
}
