package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// envelope is the response wrapper every endpoint returns. FastAPI errors
// arrive as {"detail": "..."} instead.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
}

// Client talks to the Eternal Voice REST backend
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient builds a client with a cookie jar scoped by public suffix.
func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Jar: jar},
		logger:  logger,
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) deleteJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logf("api: %s %s [%s] failed: %v", method, path, reqID, err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	c.logf("api: %s %s [%s] %d in %s", method, path, reqID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Status: resp.StatusCode, Message: errorMessage(env, decodeErr, resp.Status)}
	}
	if decodeErr != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if !env.Success {
		return &ServerError{Status: resp.StatusCode, Message: errorMessage(env, nil, "request failed")}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func errorMessage(env envelope, decodeErr error, fallback string) string {
	if decodeErr != nil {
		return fallback
	}
	if env.Error != "" {
		return env.Error
	}
	if len(env.Detail) > 0 {
		var s string
		if json.Unmarshal(env.Detail, &s) == nil && s != "" {
			return s
		}
		return string(env.Detail)
	}
	if env.Message != "" {
		return env.Message
	}
	return fallback
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
