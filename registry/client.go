package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client configuration defaults.
const (
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
)

// Client fetches and validates packuments from an npm-style registry.
type Client struct {
	baseURL   string
	client    *http.Client
	authToken string

	// packumentCache holds *Packument keyed by package name.
	packumentCache sync.Map

	validateResponses bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithValidation enables or disables validation of responses.
func WithValidation(enabled bool) ClientOption {
	return func(c *Client) {
		c.validateResponses = enabled
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets a custom HTTP request timeout.
// Zero or negative values fall back to the default timeout (15 seconds).
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		} else {
			c.client.Timeout = DefaultRequestTimeout
		}
	}
}

// WithAuthToken sends the token as a bearer credential on every request.
func WithAuthToken(token string) ClientOption {
	return func(c *Client) {
		c.authToken = token
	}
}

// NewClient creates a client for the given registry URL.
//
// Responses are validated by default. Use WithValidation(false) to trust the
// registry as-is.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
		validateResponses: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EscapeName returns the URL path segment for a package name.
// Scoped names keep their "@" and escape the separating slash.
func EscapeName(name string) string {
	if strings.HasPrefix(name, "@") {
		if scope, rest, ok := strings.Cut(name[1:], "/"); ok {
			return "@" + url.PathEscape(scope) + "%2f" + url.PathEscape(rest)
		}
	}
	return url.PathEscape(name)
}

// GetPackument fetches and parses the packument for a package name.
// Results are cached by name.
func (c *Client) GetPackument(ctx context.Context, name string) (*Packument, error) {
	if cached, ok := c.packumentCache.Load(name); ok {
		return cached.(*Packument), nil
	}

	if !ValidName(name) {
		return nil, fmt.Errorf("invalid package name %q: %w", name, ErrNotFound)
	}

	data, err := c.fetch(ctx, c.baseURL+"/"+EscapeName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch packument for %s: %w", name, err)
	}

	var p *Packument
	if c.validateResponses {
		p, err = DecodePackument(data)
	} else {
		p, err = decodePackumentLoose(data)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid packument for %s: %w", name, err)
	}
	if p.Name != name {
		return nil, fmt.Errorf("registry returned packument %q for %q", p.Name, name)
	}

	c.packumentCache.Store(name, p)
	return p, nil
}

// GetManifest returns the manifest of one published version.
// The manifest is served from the cached packument.
func (c *Client) GetManifest(ctx context.Context, name, version string) (*Manifest, error) {
	p, err := c.GetPackument(ctx, name)
	if err != nil {
		return nil, err
	}
	m, ok := p.Manifest(version)
	if !ok {
		return nil, fmt.Errorf("%s@%s: %w", name, version, ErrVersionNotFound)
	}
	return m, nil
}

// ClearCache removes all cached data.
func (c *Client) ClearCache() {
	c.packumentCache.Clear()
}

// fetch performs an HTTP GET and returns the response body.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	// The abbreviated install document omits "ng-update", so ask for the full one.
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	return io.ReadAll(resp.Body)
}
