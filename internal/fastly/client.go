// Package fastly is a minimal client for the Fastly stats API. Responses are
// returned as untyped documents; no schema is imposed on them.
package fastly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/marcus/fastly-stats/internal/document"
)

// DefaultBaseURL is the public Fastly API endpoint.
const DefaultBaseURL = "https://api.fastly.com"

// DefaultTimeout bounds a single request when the caller does not override it.
const DefaultTimeout = 30 * time.Second

// authHeader carries the API token on every request.
const authHeader = "Fastly-Key"

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// APIError is returned for responses with a 4xx or 5xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Unwrap maps well-known statuses onto the sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Client is an HTTP client for the Fastly API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Logger  *slog.Logger
}

// New creates a client. A zero timeout disables the request deadline.
func New(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  slog.Default(),
	}
}

// Stats fetches historical stats for one service.
func (c *Client) Stats(ctx context.Context, q StatsQuery) (document.Value, error) {
	return c.Get(ctx, q.Path())
}

// Summary fetches the stats summary for one service.
func (c *Client) Summary(ctx context.Context, service string) (document.Value, error) {
	return c.Get(ctx, SummaryPath(service))
}

// Get issues an authenticated GET for path and decodes the body.
func (c *Client) Get(ctx context.Context, path string) (document.Value, error) {
	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return document.Value{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(authHeader, c.Token)
	req.Header.Set("Accept", "application/json")

	log := c.logger()
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return document.Value{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return document.Value{}, fmt.Errorf("read response: %w", err)
	}
	log.Debug("fastly request", "method", http.MethodGet, "url", url,
		"status", resp.StatusCode, "bytes", len(body), "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return document.Value{}, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	doc, err := document.Parse(body)
	if err != nil {
		return document.Value{}, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// errorMessage extracts a human-readable message from a Fastly error body,
// which carries "msg" and optionally "detail". Unparseable bodies are
// returned trimmed.
func errorMessage(body []byte) string {
	doc, err := document.Parse(body)
	if err != nil {
		return strings.TrimSpace(string(body))
	}
	msg := doc.Field("msg").Str()
	if detail := doc.Field("detail").Str(); detail != "" {
		if msg == "" {
			return detail
		}
		return msg + ": " + detail
	}
	return msg
}
