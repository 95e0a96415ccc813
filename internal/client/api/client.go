// Package api implements the request pipeline: a configured HTTP client with
// a fixed base endpoint, bearer-token injection, error normalization, and a
// retry helper. It is the single point of network egress for the client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/cidadefoco/internal/logging"
)

const (
	// DefaultBaseURL is the deployment-time backend endpoint.
	DefaultBaseURL = "https://neondb-3yaa.onrender.com/api"

	DefaultTimeout    = 30 * time.Second
	DefaultRetryCount = 3
	DefaultRetryDelay = time.Second
)

// Client is the shared request pipeline. The bearer token is in-memory state
// guarded by a mutex; the session manager is its single writer and keeps it
// in agreement with the credential store.
type Client struct {
	baseURL    string
	http       *http.Client
	log        logging.Logger
	retryCount int
	retryDelay time.Duration

	mu             sync.RWMutex
	token          string
	onUnauthorized func(ctx context.Context)
}

type Option func(*Client)

// WithLogger replaces the default stderr logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetry overrides the retry budget and the initial backoff delay.
func WithRetry(count int, delay time.Duration) Option {
	return func(c *Client) {
		c.retryCount = count
		c.retryDelay = delay
	}
}

// New constructs a pipeline bound to baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: DefaultTimeout},
		log:        logging.NewTextLogger(os.Stderr, slog.LevelWarn),
		retryCount: DefaultRetryCount,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer token used on every subsequent request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the bearer token; subsequent requests go out anonymous.
func (c *Client) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

// Token returns the currently installed bearer token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers a hook invoked at most once per logical call whose
// final outcome is a 401 response. The session manager registers its teardown
// here.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// GetJSON issues a GET and decodes the JSON response into out (unless nil).
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST with a JSON body (unless in is nil) and decodes the
// response into out (unless nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

// PutJSON issues a PUT with a JSON body and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out)
}

// Delete issues a DELETE and decodes the JSON response into out (unless nil).
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// PostMultipart encodes form and POSTs it as multipart/form-data, decoding
// the JSON response into out (unless nil).
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return err
	}
	data, err := c.do(ctx, http.MethodPost, path, contentType, body)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
		contentType = "application/json"
	}
	data, err := c.do(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do runs one logical call through the retry helper and fires the
// unauthorized hook when the final outcome is a 401.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var out []byte
	err := Retry(ctx, c.retryCount, c.retryDelay, func() error {
		data, err := c.attempt(ctx, method, path, contentType, body)
		if err != nil {
			return err
		}
		out = data
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			c.mu.RLock()
			fn := c.onUnauthorized
			c.mu.RUnlock()
			if fn != nil {
				fn(ctx)
			}
		}
		return nil, err
	}
	return out, nil
}

// attempt performs a single HTTP round trip and normalizes its outcome.
func (c *Client) attempt(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		norm := classifyTransport(err)
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return nil, norm
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn(ctx, "response read failed", "method", method, "path", path, "error", err)
		return nil, ErrNetwork
	}

	c.log.Debug(ctx, "request finished",
		"method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, classifyStatus(resp.StatusCode, data)
	}
	return data, nil
}

// classifyTransport maps errors from the HTTP round trip itself: a timeout
// becomes ErrTimeout, everything else (no response received) ErrNetwork.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrNetwork
}

// classifyStatus maps an HTTP error status to a normalized error. A
// backend-supplied message field is carried verbatim.
func classifyStatus(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrSessionExpired
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return ErrServerUnavailable
	}
	return &APIError{Status: status, Message: serverMessage(body)}
}

// serverMessage extracts the error message from a backend error body. The
// backend is inconsistent about the field name, so all three spellings are
// accepted, in its order of preference.
func serverMessage(body []byte) string {
	var b struct {
		Mensagem string `json:"mensagem"`
		Erro     string `json:"erro"`
		Error    string `json:"error"`
	}
	if json.Unmarshal(body, &b) != nil {
		return ""
	}
	switch {
	case b.Mensagem != "":
		return b.Mensagem
	case b.Erro != "":
		return b.Erro
	default:
		return b.Error
	}
}
