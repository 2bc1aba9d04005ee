package client

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

	"golang.org/x/time/rate"

	"github.com/roach88/ctmigrate/internal/ir"
)

const contentTypeHeader = "application/vnd.contentful.management.v1+json"

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 4 << 10

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The proxy setting of the
// config is not applied to a replaced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL overrides the scheme and host derived from the config.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.root = strings.TrimSuffix(base, "/")
	}
}

// WithLogger sets the logger for request tracing. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client issues requests scoped to one space environment. It is safe for
// concurrent use.
type Client struct {
	cfg     Config
	root    string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client from a resolved Config.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Application == "" {
		return nil, ErrMissingApplication
	}
	if cfg.SpaceID == "" {
		return nil, ErrMissingSpace
	}

	scheme := "https"
	if cfg.Insecure {
		scheme = "http"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = DefaultRateLimit
	}

	c := &Client{
		cfg:     cfg,
		root:    scheme + "://" + cfg.Host,
		http:    &http.Client{Transport: transport, Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the client's resolved configuration.
func (c *Client) Config() Config { return c.cfg }

func (c *Client) baseURL() string {
	return fmt.Sprintf("%s/spaces/%s/environments/%s", c.root,
		url.PathEscape(c.cfg.SpaceID), url.PathEscape(c.cfg.EnvironmentID))
}

// Request performs req against the space environment and decodes a
// collection response. It waits on the rate limiter and never retries.
// Request satisfies ir.RequestFunc.
func (c *Client) Request(ctx context.Context, req ir.HTTPRequest) (ir.CollectionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ir.CollectionResponse{}, fmt.Errorf("rate limit: %w", err)
	}

	var body io.Reader
	if req.Data != nil {
		data, err := json.Marshal(req.Data)
		if err != nil {
			return ir.CollectionResponse{}, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL() + req.URL

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return ir.CollectionResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	httpReq.Header.Set("Content-Type", contentTypeHeader)
	httpReq.Header.Set("X-Contentful-User-Agent", c.userAgent())
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return ir.CollectionResponse{}, fmt.Errorf("%s %s: %w", method, req.URL, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		"method", method,
		"url", req.URL,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ir.CollectionResponse{}, &StatusError{
			Method:     method,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	var out ir.CollectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ir.CollectionResponse{}, fmt.Errorf("decode %s %s: %w", method, req.URL, err)
	}
	if out.Items == nil {
		out.Items = []json.RawMessage{}
	}
	return out, nil
}

func (c *Client) userAgent() string {
	return fmt.Sprintf("app %s; sdk ctmigrate/%s", c.cfg.Application, ir.ToolVersion)
}

// ContentTypes fetches the remote snapshot of every content type in the
// environment.
func (c *Client) ContentTypes(ctx context.Context) ([]ir.RemoteContentType, error) {
	resp, err := c.Request(ctx, ir.HTTPRequest{Method: http.MethodGet, URL: "/content_types?limit=1000"})
	if err != nil {
		return nil, fmt.Errorf("fetch content types: %w", err)
	}

	out := make([]ir.RemoteContentType, 0, len(resp.Items))
	for i, raw := range resp.Items {
		var ct ir.RemoteContentType
		if err := json.Unmarshal(raw, &ct); err != nil {
			return nil, fmt.Errorf("decode content type %d: %w", i, err)
		}
		out = append(out, ct)
	}
	return out, nil
}
