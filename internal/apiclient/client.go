// Package apiclient is the HTTP client for the upstream store API. All
// business logic (authentication, catalog, order persistence, pricing rules)
// lives behind that API; this package only speaks its wire contract.
//
// Sessions are cookie-based. State-changing requests carry a CSRF token
// fetched from the token-refresh endpoint and attached as a header.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	csrfCookie = "csrftoken"
	csrfHeader = "X-CSRFToken"
)

// APIError is a non-2xx response from the upstream API. The body is kept
// verbatim so callers can surface the server-provided error to the user.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Body
}

// AsAPIError unwraps err into an APIError when the upstream responded at all.
// A false return means the request failed before a response was received.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Client talks to the upstream store API rooted at a base URL.
type Client struct {
	base *url.URL
	http *http.Client
	lg   *zap.Logger

	csrfMu sync.Mutex
	csrf   string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(lg *zap.Logger) Option {
	return func(c *Client) { c.lg = lg }
}

// WithTimeout bounds every request issued by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the API at baseURL. The client keeps session
// cookies in an in-memory jar and instruments outbound requests.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("base URL %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Jar:       jar,
			Timeout:   30 * time.Second,
		},
		lg: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// endpoint joins path onto the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// get issues a GET and decodes the JSON response into out when out is non-nil.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	return c.do(req, out)
}

// sendJSON issues a state-changing JSON request (POST or PUT) with the CSRF
// header attached.
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.attachCSRF(ctx, req); err != nil {
		return err
	}
	return c.do(req, out)
}

// send issues a prepared state-changing request (multipart uploads, deletes)
// with the CSRF header attached.
func (c *Client) send(ctx context.Context, req *http.Request, out any) error {
	if err := c.attachCSRF(ctx, req); err != nil {
		return err
	}
	return c.do(req, out)
}

// do executes req, maps non-2xx responses to APIError, and decodes the body
// into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "network error")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
		c.lg.Debug("upstream error response",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		if resp.StatusCode == http.StatusForbidden {
			// The session or CSRF token may have rotated; a later request
			// will fetch a fresh token.
			c.dropCSRF()
		}
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// attachCSRF ensures a CSRF token is cached and sets it on req.
func (c *Client) attachCSRF(ctx context.Context, req *http.Request) error {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set(csrfHeader, token)
	return nil
}

// csrfToken returns the cached token, fetching it from the token-refresh
// endpoint when the cache is empty. The endpoint sets the csrftoken cookie;
// the header value mirrors the cookie per the upstream's double-submit scheme.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()
	if c.csrf != "" {
		return c.csrf, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/csrf/", nil), nil)
	if err != nil {
		return "", errors.Wrap(err, "build csrf request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch csrf token")
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == csrfCookie {
			c.csrf = cookie.Value
			return c.csrf, nil
		}
	}
	return "", errors.New("upstream did not set a csrf cookie")
}

func (c *Client) dropCSRF() {
	c.csrfMu.Lock()
	c.csrf = ""
	c.csrfMu.Unlock()
}

// Ping checks upstream reachability; used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/check-auth/", nil), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "upstream unreachable")
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return errors.Errorf("upstream returned %d", resp.StatusCode)
	}
	return nil
}
