package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// apiRoot prefixes every request path.
const apiRoot = "/api"

// TokenSource supplies the bearer token for each request.
// An empty token sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// Client is the Veterimap API client.
type Client struct {
	baseURL        string
	tokens         TokenSource
	rc             *resty.Client
	logger         *zap.Logger
	onUnauthorized func(token string)

	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUnauthorizedHandler registers fn to run whenever the API answers 401.
// fn receives the token the rejected request carried.
func WithUnauthorizedHandler(fn func(token string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a new API client. A nil tokens source sends every request unauthenticated.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logger:     zap.NewNop(),
		httpClient: &http.Client{},
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rc = resty.NewWithClient(c.httpClient).
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetLogger(c.logger.Sugar()).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	return c
}

// Request describes a single API call. Path is relative to the API root;
// a leading slash is optional. Header entries override the defaults.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// Do sends req and decodes the response into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	return c.doRequest(ctx, method, req.Path, req.Body, req.Header, out)
}

// URL returns the absolute URL a request path resolves to.
func (c *Client) URL(path string) string {
	return c.baseURL + resolvePath(path)
}

func resolvePath(path string) string {
	return apiRoot + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	r := c.rc.R().SetContext(ctx)
	r.SetHeader("Content-Type", "application/json")
	tok := c.tokens.Token()
	if tok != "" {
		r.SetHeader("Authorization", "Bearer "+tok)
	}
	for k, vals := range header {
		r.Header.Del(k)
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
	if body != nil {
		encoded, err := encodeBody(body, r.Header.Get("Content-Type"))
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		r.SetBody(encoded)
	}

	target := resolvePath(path)
	c.logger.Debug("api request", zap.String("method", method), zap.String("path", target))

	resp, err := r.Execute(method, target)
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", method), zap.String("path", target), zap.Error(err))
		return fmt.Errorf("do request: %w", err)
	}

	status := resp.StatusCode()
	raw := resp.Body()

	switch {
	case status == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized(tok)
		}
		return &HTTPError{StatusCode: status, Message: errorMessage(raw, status)}
	case status == http.StatusPaymentRequired:
		return newPaymentRequired(raw)
	case status >= 400:
		if status >= 500 {
			c.logger.Error("api server error",
				zap.String("method", method), zap.String("path", target), zap.Int("status", status))
		}
		return &HTTPError{StatusCode: status, Message: errorMessage(raw, status)}
	}

	if out == nil {
		return nil
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		setEmpty(out)
		return nil
	}
	if err := json.Unmarshal(unwrapEnvelope(raw), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// envelopeMeta are the members allowed next to "data" in an enveloped response.
var envelopeMeta = map[string]bool{
	"message": true,
	"meta":    true,
	"total":   true,
	"success": true,
	"status":  true,
}

// unwrapEnvelope returns the "data" member when body is a {data: ...} envelope,
// otherwise body itself. Objects that merely contain a "data" field next to
// other payload fields are not envelopes.
func unwrapEnvelope(body []byte) []byte {
	if !gjson.ValidBytes(body) {
		return body
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return body
	}
	data := res.Get("data")
	if !data.Exists() {
		return body
	}
	enveloped := true
	res.ForEach(func(key, _ gjson.Result) bool {
		if k := key.String(); k != "data" && !envelopeMeta[k] {
			enveloped = false
			return false
		}
		return true
	})
	if !enveloped {
		return body
	}
	return []byte(data.Raw)
}

// encodeBody leaves bodies resty can send as is. Under a non-JSON content
// type resty will not marshal, so other values are encoded here.
func encodeBody(body any, contentType string) (any, error) {
	switch body.(type) {
	case []byte, string, io.Reader:
		return body, nil
	}
	if strings.Contains(strings.ToLower(contentType), "json") {
		return body, nil
	}
	return json.Marshal(body)
}

// setEmpty gives out the value of an empty JSON object where the type allows it.
// Slices and scalars cannot hold an object and keep their zero value.
func setEmpty(out any) {
	switch v := out.(type) {
	case *json.RawMessage:
		*v = json.RawMessage("{}")
	case *map[string]any:
		*v = map[string]any{}
	case *any:
		*v = map[string]any{}
	default:
		_ = json.Unmarshal([]byte("{}"), out) //nolint:errcheck
	}
}
