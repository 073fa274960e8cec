package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userAgent = "catalog-sync/1.0"

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option customizes a Client.
type Option func(*Client)

// WithSleeper replaces the backoff sleeper. Tests use it to skip real waits.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics attaches request and retry counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// Client performs rate-limited, retried requests against one backend.
// It is safe for concurrent use; the limiter serializes request starts.
type Client struct {
	backend string
	baseURL string
	token   string
	cfg     Config

	http    *http.Client
	limiter *rate.Limiter
	sleep   Sleeper
	logger  *zap.Logger
	metrics *Metrics
}

// New creates a client for the backend reachable at baseURL.
func New(backend, baseURL, token string, cfg Config, opts ...Option) *Client {
	limit := rate.Inf
	if d := cfg.spacing(); d > 0 {
		limit = rate.Every(d)
	}

	c := &Client{
		backend: backend,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.timeout()},
		limiter: rate.NewLimiter(limit, 1),
		sleep:   sleepContext,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the backend name the client was created for.
func (c *Client) Backend() string {
	return c.backend
}

// Request is one logical HTTP operation.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a successful (2xx) reply.
type Response struct {
	StatusCode int
	Header     http.Header

	// Data holds the decoded JSON object. It is empty for an empty body.
	Data map[string]any

	// Raw is the undecoded body.
	Raw []byte

	// Parsed is false when the body was not a JSON object; Raw then carries it.
	Parsed bool
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Raw)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Raw, v)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do executes req with request spacing and the retry policy.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}

	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	attempts := c.cfg.attempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.attempt(ctx, req, target, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !Retryable(err) || attempt == attempts {
			break
		}

		var hint time.Duration
		var apiErr *Error
		if errors.As(err, &apiErr) {
			hint = apiErr.RetryAfter
		}
		delay := c.cfg.backoff(attempt, hint)

		c.metrics.observeRetry(c.backend)
		c.logger.Warn("Retrying backend request",
			zap.String("backend", c.backend),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	if Retryable(lastErr) {
		return nil, &Error{
			Kind:    ErrAPI,
			Backend: c.backend,
			Method:  req.Method,
			Path:    req.Path,
			Err:     fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr),
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, req Request, target string, payload []byte) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(c.backend, req.Method, 0)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Kind: classifyTransport(err), Backend: c.backend, Method: req.Method, Path: req.Path, Err: err}
	}
	defer httpResp.Body.Close()

	c.metrics.observeRequest(c.backend, req.Method, httpResp.StatusCode)

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Backend: c.backend, Method: req.Method, Path: req.Path, Status: httpResp.StatusCode, Err: err}
	}

	if kind := classifyStatus(httpResp.StatusCode); kind != nil {
		e := &Error{
			Kind:    kind,
			Backend: c.backend,
			Method:  req.Method,
			Path:    req.Path,
			Status:  httpResp.StatusCode,
			Body:    truncate(raw),
		}
		if kind == ErrRateLimited {
			e.RetryAfter = parseRetryAfter(httpResp.Header.Get("Retry-After"), time.Now())
		}
		return nil, e
	}

	return decodeResponse(httpResp, raw), nil
}

// decodeResponse never fails: a body that is not a JSON object is kept raw.
func decodeResponse(httpResp *http.Response, raw []byte) *Response {
	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Data:       map[string]any{},
		Raw:        raw,
		Parsed:     true,
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp
	}
	if err := json.Unmarshal(raw, &resp.Data); err != nil {
		resp.Data = map[string]any{}
		resp.Parsed = false
	}
	return resp
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
