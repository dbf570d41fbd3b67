package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// API is the set of quote operations a Controller drives.
type API interface {
	List(ctx context.Context) ([]Quote, error)
	Create(ctx context.Context, p Patch) (Quote, error)
	Update(ctx context.Context, id int64, p Patch) (Quote, error)
	Delete(ctx context.Context, id int64) (Quote, error)
}

// DefaultToken is the auth token the client sends when none is configured.
const DefaultToken = "123"

// APIError is a non-2xx response from the quote API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quote: api returned %d: %s", e.Status, e.Message)
}

// Client calls the quote REST API. Responses carry their payload under a
// "data" key; errors carry a message under "error".
type Client struct {
	base   string
	token  string
	http   *http.Client
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the X-Auth-Token header value.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a client for the API rooted at baseURL, for example
// "http://localhost:8080/api".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		token:  DefaultToken,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: slog.Default().With("component", "quote-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) List(ctx context.Context) ([]Quote, error) {
	var out []Quote
	err := c.call(ctx, http.MethodGet, "quotes", nil, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id int64) (Quote, error) {
	var out Quote
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("quotes/%d", id), nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, p Patch) (Quote, error) {
	var out Quote
	err := c.call(ctx, http.MethodPost, "quotes", p, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id int64, p Patch) (Quote, error) {
	var out Quote
	err := c.call(ctx, http.MethodPatch, fmt.Sprintf("quotes/%d", id), p, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id int64) (Quote, error) {
	var out Quote
	err := c.call(ctx, http.MethodDelete, fmt.Sprintf("quotes/%d", id), nil, &out)
	return out, err
}

type envelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("quote: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("quote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return fmt.Errorf("quote: decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		c.logger.Debug("api error", "method", method, "path", path, "status", resp.StatusCode)
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("quote: decode data: %w", err)
	}
	return nil
}

// Local adapts a Store to the API interface for the given user, for running
// a Controller in the same process as the data.
func Local(s Store, userID int64) API {
	return &local{store: s, user: userID}
}

type local struct {
	store Store
	user  int64
}

func (l *local) List(ctx context.Context) ([]Quote, error) { return l.store.List(ctx) }

func (l *local) Create(ctx context.Context, p Patch) (Quote, error) {
	return l.store.Create(ctx, l.user, p)
}

func (l *local) Update(ctx context.Context, id int64, p Patch) (Quote, error) {
	return l.store.Update(ctx, l.user, id, p)
}

func (l *local) Delete(ctx context.Context, id int64) (Quote, error) {
	return l.store.Delete(ctx, id)
}
