// the client package is used by the dashboard handlers and the siports CLI to call the SIPORTS backend API.
// Every call goes through Call (or the typed Do helper): the client builds the request, attaches the bearer token,
// and translates failures into a single *Error so callers can show the backend message verbatim (see client/errors.go)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/siportevent/siports/internal/version"
)

const (
	// RequestIDHeader carries the caller's request id to the backend
	RequestIDHeader = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// TokenProvider supplies the bearer token for calls that do not carry their own.
// Returning an empty token means the call is sent without an Authorization header.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to a TokenProvider
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken is a TokenProvider that always returns the same token
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// Config is read once by New - changing it afterwards has no effect on the client.
type Config struct {
	BaseURL        string            // backend root, e.g https://siportevent-production.up.railway.app
	DefaultHeaders map[string]string // sent with every request (request headers take precedence)
	TokenProvider  TokenProvider     // optional - used when Request.Token is empty
	Timeout        time.Duration     // 0 leaves the transport default in place (no client-side timeout)
	UserAgent      string
	Logger         *slog.Logger
}

// Request describes a single API call
type Request struct {
	Method  string
	Path    string // relative to the base URL, e.g /api/auth/me
	Query   url.Values
	Body    any // string and []byte bodies are sent as-is, anything else is marshaled to JSON
	Headers map[string]string
	Token   string // overrides the TokenProvider for this call
}

// Client handles communication with the SIPORTS API.
// A Client holds no per-call state and is safe for concurrent use.
type Client struct {
	baseURL        string
	defaultHeaders map[string]string
	tokenProvider  TokenProvider
	logger         *slog.Logger
	http           *resty.Client
}

// New validates the config and returns a client bound to cfg.BaseURL
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must use http or https: %s", cfg.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL does not include a host: %s", cfg.BaseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "client"))

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("siports-client/%s", version.Get().Version)
	}

	headers := make(map[string]string, len(cfg.DefaultHeaders))
	for k, v := range cfg.DefaultHeaders {
		headers[k] = v
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetLogger(restyLogger{logger: logger})

	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	return &Client{
		baseURL:        baseURL,
		defaultHeaders: headers,
		tokenProvider:  cfg.TokenProvider,
		logger:         logger,
		http:           httpClient,
	}, nil
}

// BaseURL returns the normalised base URL (no trailing slash)
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call performs a single round trip and returns the parsed JSON body exactly as the backend sent it.
// An empty success body is returned as nil.
func (c *Client) Call(ctx context.Context, req Request) (any, error) {
	body, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, NewDecodeError(err, body)
	}
	return data, nil
}

// Do is the typed form of Call: the response body is decoded into T.
func Do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T

	body, err := c.roundTrip(ctx, req)
	if err != nil {
		return out, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, NewDecodeError(err, body)
	}
	return out, nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	r := c.http.R().SetContext(ctx)

	// precedence: content type default < client defaults < request headers
	r.SetHeader("Content-Type", contentTypeJSON)
	r.SetHeaders(c.defaultHeaders)
	r.SetHeaders(req.Headers)

	if requestID, ok := ContextRequestID(ctx); ok && r.Header.Get(RequestIDHeader) == "" {
		r.SetHeader(RequestIDHeader, requestID)
	}

	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	token, err := c.resolveToken(ctx, req)
	if err != nil {
		return nil, NewRequestError(err, "resolving access token")
	}
	if token != "" {
		r.SetAuthToken(token)
	}

	if req.Body != nil {
		payload, err := encodeBody(req.Body)
		if err != nil {
			return nil, NewRequestError(err, "marshaling request body")
		}
		r.SetBody(payload)
	}

	start := time.Now()
	res, err := r.Execute(method, req.Path)
	if err != nil {
		c.logger.Debug("api call failed",
			slog.String("method", method),
			slog.String("path", req.Path),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return nil, NewNetworkError(err)
	}

	c.logger.Debug("api call completed",
		slog.String("method", method),
		slog.String("path", req.Path),
		slog.Int("status", res.StatusCode()),
		slog.Duration("duration", time.Since(start)),
		slog.Int("bytes", len(res.Body())),
	)

	if !res.IsSuccess() {
		return nil, NewHTTPError(res.StatusCode(), res.Status(), res.Body())
	}

	return res.Body(), nil
}

// resolveToken prefers the per-call token over the provider
func (c *Client) resolveToken(ctx context.Context, req Request) (string, error) {
	if req.Token != "" {
		return req.Token, nil
	}
	if c.tokenProvider == nil {
		return "", nil
	}
	return c.tokenProvider.Token(ctx)
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(body)
	}
}

// restyLogger sends resty's internal log lines to slog
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("source", "resty"))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("source", "resty"))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("source", "resty"))
}
