package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	oherrors "github.com/renatoruis/oh-institutional/internal/errors"
)

// DefaultBaseURL is the production content API.
const DefaultBaseURL = "https://ohapi.weserve.one"

// Defaults.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 10 * time.Minute
	maxBodyBytes    = 4 << 20
)

// Fetch outcomes reported to the fetch hook.
const (
	OutcomeNetwork = "network"
	OutcomeCache   = "cache"
	OutcomeFailed  = "failed"
)

// Client fetches JSON documents from the content API.
type Client struct {
	base   string
	http   *http.Client
	cache  *cache.Cache
	logger *slog.Logger
	hook   func(outcome string)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCacheTTL sets how long a successful response stays available as a
// fallback. Zero disables the fallback cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithFetchHook registers fn to be called with the outcome of every GET.
func WithFetchHook(fn func(outcome string)) Option {
	return func(c *Client) { c.hook = fn }
}

// New creates a client for the API rooted at base. An empty base selects
// DefaultBaseURL.
func New(base string, opts ...Option) (*Client, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		e := oherrors.New("A001").WithDetailf("base URL %q", base)
		if err != nil {
			e = e.Wrap(err)
		}
		return nil, e
	}

	c := &Client{
		base:   strings.TrimSuffix(base, "/"),
		http:   &http.Client{Timeout: DefaultTimeout},
		cache:  cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		logger: slog.Default().With("component", "content"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// URL returns the absolute URL for an API path.
func (c *Client) URL(path string) string { return c.base + path }

// FetchJSON GETs path and decodes the JSON body. On any failure it falls
// back to the last cached response for path, and returns nil when there is
// none.
func (c *Client) FetchJSON(ctx context.Context, path string) any {
	if ctx.Err() != nil {
		return nil
	}
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err == nil {
		if c.cache != nil {
			c.cache.SetDefault(path, data)
		}
		c.report(OutcomeNetwork)
		return data
	}
	if ctx.Err() != nil {
		return nil
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(path); ok {
			c.logger.Warn("content fetch failed, serving cached copy", "path", path, "error", err)
			c.report(OutcomeCache)
			return cached
		}
	}
	c.logger.Warn("content fetch failed", "path", path, "error", err)
	c.report(OutcomeFailed)
	return nil
}

// Post sends body (JSON-encoded when non-nil) to path and returns the
// decoded response, or nil on failure. Responses are never cached.
func (c *Client) Post(ctx context.Context, path string, body any) any {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.logger.Warn("content post encode failed", "path", path, "error", err)
			return nil
		}
		payload = b
	}
	data, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("content post failed", "path", path, "error", err)
		}
		return nil
	}
	return data
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (any, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var data any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data, nil
}

func (c *Client) report(outcome string) {
	if c.hook != nil {
		c.hook(outcome)
	}
}
