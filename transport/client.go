package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
	"github.com/google/uuid"
)

// HeaderRequestID carries the logical request identifier.
const HeaderRequestID = "X-Request-ID"

// TokenSource is the persisted credential the gateway reads on every attempt and clears
// when the backend or the local expiry check invalidates it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// InvalidationReason tells the session-invalidated hook why the credential was dropped.
type InvalidationReason string

const (
	ReasonTokenExpired InvalidationReason = "token_expired"
	ReasonUnauthorized InvalidationReason = "unauthorized"
)

// RetryEvent describes a scheduled retry.
type RetryEvent struct {
	RequestID string
	Method    string
	Path      string
	Attempt   int
	Limit     int
	Delay     time.Duration
	Status    int
	Err       error
}

// AttemptEvent describes one completed network attempt.
type AttemptEvent struct {
	RequestID string
	Method    string
	Path      string
	Status    int
	Err       error
	Latency   time.Duration
}

// Hooks are optional observers of gateway behavior.
type Hooks struct {
	// OnSessionInvalid runs after the credential has been cleared. The root client wires
	// it to the redirect-to-login side effect.
	OnSessionInvalid func(ctx context.Context, reason InvalidationReason)
	OnRetry          func(ctx context.Context, ev RetryEvent)
	OnRetryExhausted func(ctx context.Context, ev RetryEvent)
	OnAttempt        func(ctx context.Context, ev AttemptEvent)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Retry      RetryPolicy
	Tokens     TokenSource
	Logger     *slog.Logger
	Now        func() time.Time
	Sleep      Sleeper
	UserAgent  string
	Hooks      Hooks
}

// Request is an immutable, replayable request descriptor.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Header http.Header
}

// NewJSONRequest encodes body as JSON. A nil body produces a request without payload.
func NewJSONRequest(method, path string, body any) (Request, error) {
	req := Request{Method: method, Path: path}
	if body == nil {
		return req, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	req.Body = data
	return req, nil
}

// Response is a fully read backend response.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
	Attempts  int
}

// Decode unmarshals the JSON body into v. Empty bodies leave v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Client is the outbound gateway. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	retry  RetryPolicy
	tokens TokenSource
	logger *slog.Logger
	now    func() time.Time
	sleep  Sleeper
	ua     string
	hooks  Hooks
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.New("base url must be http or https")
	}
	if cfg.Retry.Limit < 0 || cfg.Retry.Limit > MaxRetryLimit || cfg.Retry.BaseDelay < 0 {
		return nil, errors.New("invalid retry policy")
	}

	c := &Client{
		base:   base,
		http:   cfg.HTTPClient,
		retry:  cfg.Retry,
		tokens: cfg.Tokens,
		logger: cfg.Logger,
		now:    cfg.Now,
		sleep:  cfg.Sleep,
		ua:     cfg.UserAgent,
		hooks:  cfg.Hooks,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c, nil
}

// Do sends req, applying the interceptor chain and the retry loop.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	state := RetryState{}
	for {
		resp, err := c.attempt(ctx, req, requestID)
		var local *Error
		if errors.As(err, &local) {
			return nil, local
		}

		status := 0
		if resp != nil {
			status = resp.Status
			resp.Attempts = state.Attempt + 1
		}

		if err == nil && status < http.StatusBadRequest {
			return resp, nil
		}

		if status == http.StatusUnauthorized {
			c.invalidate(ctx, ReasonUnauthorized)
			return nil, responseError(KindAuth, resp, requestID, ErrUnauthorized)
		}

		if !retryable(ctx, status, err) {
			if err != nil {
				return nil, err
			}
			return nil, responseError(KindDomain, resp, requestID, nil)
		}

		ev := RetryEvent{
			RequestID: requestID,
			Method:    req.Method,
			Path:      req.Path,
			Limit:     c.retry.Limit,
			Status:    status,
			Err:       err,
		}

		if !c.retry.CanRetry(state) {
			ev.Attempt = state.Attempt
			if c.hooks.OnRetryExhausted != nil {
				c.hooks.OnRetryExhausted(ctx, ev)
			}
			if err != nil {
				return nil, &Error{Kind: KindTransient, Message: err.Error(), RequestID: requestID, Err: err}
			}
			return nil, responseError(KindTransient, resp, requestID, nil)
		}

		next := state.Next()
		ev.Attempt = next.Attempt
		ev.Delay = c.retry.Delay(next.Attempt)

		c.logger.WarnContext(ctx, "retrying request",
			"request_id", requestID,
			"method", req.Method,
			"path", req.Path,
			"attempt", next.Attempt,
			"limit", c.retry.Limit,
			"delay", ev.Delay,
			"status", status,
		)
		if c.hooks.OnRetry != nil {
			c.hooks.OnRetry(ctx, ev)
		}

		if serr := c.sleep(ctx, ev.Delay); serr != nil {
			if err != nil {
				return nil, err
			}
			return nil, serr
		}
		state = next
	}
}

// DoJSON sends a JSON request and decodes the JSON response into out.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	req, err := NewJSONRequest(method, path, in)
	if err != nil {
		return err
	}
	req.Query = query

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// attempt runs the request interceptor and one network round-trip. Local aborts are
// returned as *Error; network failures are returned as plain errors.
func (c *Client) attempt(ctx context.Context, req Request, requestID string) (*Response, error) {
	httpReq, err := c.build(ctx, req, requestID)
	if err != nil {
		return nil, err
	}

	start := c.now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(ctx, req, requestID, 0, err, start)
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.observe(ctx, req, requestID, httpResp.StatusCode, err, start)
		return nil, err
	}
	c.observe(ctx, req, requestID, httpResp.StatusCode, nil, start)

	return &Response{
		Status:    httpResp.StatusCode,
		Header:    httpResp.Header,
		Body:      body,
		RequestID: requestID,
	}, nil
}

func (c *Client) build(ctx context.Context, req Request, requestID string) (*http.Request, error) {
	u := c.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid request", RequestID: requestID, Err: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(HeaderRequestID, requestID)
	if c.ua != "" {
		httpReq.Header.Set("User-Agent", c.ua)
	}

	if c.tokens == nil {
		return httpReq, nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Message: "credential store unavailable", RequestID: requestID, Err: err}
	}
	if token == "" {
		return httpReq, nil
	}
	if jwt.IsExpired(token, c.now()) {
		c.invalidate(ctx, ReasonTokenExpired)
		return nil, &Error{Kind: KindAuth, Message: "token expired", RequestID: requestID, Err: ErrTokenExpired}
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	return httpReq, nil
}

func (c *Client) invalidate(ctx context.Context, reason InvalidationReason) {
	if c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			c.logger.ErrorContext(ctx, "credential clear failed", "reason", string(reason), "error", err)
		}
	}
	c.logger.InfoContext(ctx, "session invalidated", "reason", string(reason))
	if c.hooks.OnSessionInvalid != nil {
		c.hooks.OnSessionInvalid(ctx, reason)
	}
}

func (c *Client) observe(ctx context.Context, req Request, requestID string, status int, err error, start time.Time) {
	if c.hooks.OnAttempt == nil {
		return
	}
	c.hooks.OnAttempt(ctx, AttemptEvent{
		RequestID: requestID,
		Method:    req.Method,
		Path:      req.Path,
		Status:    status,
		Err:       err,
		Latency:   c.now().Sub(start),
	})
}

func responseError(kind Kind, resp *Response, requestID string, cause error) *Error {
	e := &Error{Kind: kind, RequestID: requestID, Err: cause}
	if resp == nil {
		return e
	}
	e.Status = resp.Status

	var body errorBody
	if json.Unmarshal(resp.Body, &body) == nil {
		e.Message = body.text()
		e.Details = body.Details
	}
	return e
}
