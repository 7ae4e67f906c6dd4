// backend/src/subscan/client.go
package subscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/logger"
	"golang.org/x/time/rate"
)

// Default configuration values. The throttle keeps a sequential caller at
// 4 req/s, safely under Subscan's public 5 req/s limit.
const (
	DefaultTimeout     = 20 * time.Second
	DefaultThrottle    = 250 * time.Millisecond
	DefaultMaxAttempts = 3
)

// Backoff is the fixed retry delay table, one entry per transient failure
// class. Keeping it as data makes the retry policy visible and testable.
type Backoff struct {
	RateLimited time.Duration // HTTP 429
	ServerError time.Duration // HTTP 5xx
	Network     time.Duration // connection errors, timeouts
}

var DefaultBackoff = Backoff{
	RateLimited: 2 * time.Second,
	ServerError: 1 * time.Second,
	Network:     1 * time.Second,
}

// APIError is a failed Subscan call. Status is the HTTP status for
// transport-level failures; Code is the non-zero application code embedded
// in an otherwise successful response body.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("subscan error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("subscan API error: %d %s", e.Status, e.Message)
}

// Client issues paginated POST requests against a chain's Subscan host with
// a global request-rate floor and bounded retries. Safe for concurrent use;
// the shared limiter is what serializes the effective request rate.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	limiter     *rate.Limiter
	maxAttempts int
	backoff     Backoff
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithAPIKey sets the X-API-Key header for higher Subscan rate limits.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithThrottle sets the minimum interval between requests.
func WithThrottle(every time.Duration) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(every), 1) }
}

// WithMaxAttempts sets the total attempt budget per call, including the first.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) { c.maxAttempts = n }
}

// WithBackoff overrides the retry delay table.
func WithBackoff(b Backoff) ClientOption {
	return func(c *Client) { c.backoff = b }
}

// NewClient creates a Subscan client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Every(DefaultThrottle), 1),
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transfers fetches one page of transfer history. A null data payload is
// returned as an empty (non-nil) slice.
func (c *Client) Transfers(ctx context.Context, chain chains.Chain, address string, page, row int) ([]Transfer, error) {
	var data transfersData
	if err := c.post(ctx, chain, "/api/v2/scan/transfers", pageRequest{Address: address, Page: page, Row: row}, &data); err != nil {
		return nil, err
	}
	if data.Transfers == nil {
		return []Transfer{}, nil
	}
	return data.Transfers, nil
}

// Extrinsics fetches one page of extrinsic history.
func (c *Client) Extrinsics(ctx context.Context, chain chains.Chain, address string, page, row int) ([]Extrinsic, error) {
	var data extrinsicsData
	if err := c.post(ctx, chain, "/api/v2/scan/extrinsics", pageRequest{Address: address, Page: page, Row: row}, &data); err != nil {
		return nil, err
	}
	if data.Extrinsics == nil {
		return []Extrinsic{}, nil
	}
	return data.Extrinsics, nil
}

// AccountInfo fetches the current balance state for an address.
func (c *Client) AccountInfo(ctx context.Context, chain chains.Chain, address string) (*Account, error) {
	var data Account
	if err := c.post(ctx, chain, "/api/v2/scan/account", accountRequest{Address: address}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// post runs one Subscan call as a bounded retry loop. Every attempt,
// including the first, waits on the shared limiter, so the request-rate
// floor holds regardless of call pattern or retry state.
func (c *Client) post(ctx context.Context, chain chains.Chain, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling subscan request for %s: %w", path, err)
	}
	url := chain.APIHost + path

	var lastErr error
attempts:
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("building subscan request for %s: %w", path, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("subscan request failed: %w", err)
			if attempt == c.maxAttempts {
				break
			}
			logger.L.Warn("Network error calling Subscan, retrying", "path", path, "attempt", attempt, "error", err)
			if err := sleepCtx(ctx, c.backoff.Network); err != nil {
				return err
			}
			continue
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("reading subscan response: %w", readErr)
			if attempt == c.maxAttempts {
				break
			}
			if err := sleepCtx(ctx, c.backoff.Network); err != nil {
				return err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = &APIError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
			if attempt == c.maxAttempts {
				break attempts
			}
			logger.L.Warn("Rate limited by Subscan (429), retrying", "path", path, "attempt", attempt)
			if err := sleepCtx(ctx, c.backoff.RateLimited); err != nil {
				return err
			}
			continue
		case resp.StatusCode >= 500:
			lastErr = &APIError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
			if attempt == c.maxAttempts {
				break attempts
			}
			logger.L.Warn("Subscan server error, retrying", "path", path, "status", resp.StatusCode, "attempt", attempt)
			if err := sleepCtx(ctx, c.backoff.ServerError); err != nil {
				return err
			}
			continue
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			// Permanent upstream rejection. Not retried.
			return &APIError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decoding subscan response for %s: %w", path, err)
		}
		if env.Code != 0 {
			return &APIError{Code: env.Code, Message: env.Message}
		}
		if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return fmt.Errorf("decoding subscan data for %s: %w", path, err)
			}
		}
		return nil
	}

	return lastErr
}

// upstreamMessage extracts a short human-readable message from an error body.
func upstreamMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
