package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/abhisek/learnhub/internal/store"
)

// ErrNotFound is wrapped by NetworkError when the backend answers 404.
var ErrNotFound = errors.New("not found")

// RequestRecorder persists one event per REST call.
type RequestRecorder interface {
	AppendAPIRequest(ctx context.Context, data store.APIRequestEventData) error
}

// Client talks to the learning platform REST backend. It is safe for
// concurrent use; the bearer token can be swapped at any time.
type Client struct {
	http     *resty.Client
	recorder RequestRecorder

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the transport timeout for every request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithRecorder records every request as an event.
func WithRecorder(r RequestRecorder) ClientOption {
	return func(c *Client) { c.recorder = r }
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json"),
	}
	c.installHooks()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token sent with authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers fn to run whenever an authenticated call is
// answered with 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) installHooks() {
	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		status := resp.StatusCode()
		data := store.APIRequestEventData{
			RequestID: resp.Request.Header.Get("X-Request-ID"),
			Method:    resp.Request.Method,
			Path:      requestPath(resp.Request),
			Status:    status,
			LatencyMs: resp.Time().Milliseconds(),
			Success:   status < http.StatusBadRequest,
		}
		if !data.Success {
			data.ErrorMessage = http.StatusText(status)
		}
		c.record(resp.Request.Context(), data)
		return nil
	})
	c.http.OnError(func(r *resty.Request, err error) {
		var respErr *resty.ResponseError
		if errors.As(err, &respErr) {
			// Already recorded by the after-response hook.
			return
		}
		c.record(r.Context(), store.APIRequestEventData{
			RequestID:    r.Header.Get("X-Request-ID"),
			Method:       r.Method,
			Path:         requestPath(r),
			ErrorMessage: err.Error(),
		})
	})
}

func (c *Client) record(ctx context.Context, data store.APIRequestEventData) {
	if c.recorder == nil {
		return
	}
	// The request context may already be cancelled; the event should still land.
	if err := c.recorder.AppendAPIRequest(context.WithoutCancel(ctx), data); err != nil {
		slog.Warn("failed to record API request", "path", data.Path, "err", err)
	}
}

func requestPath(r *resty.Request) string {
	if r.RawRequest != nil && r.RawRequest.URL != nil {
		return r.RawRequest.URL.Path
	}
	return r.URL
}

// call describes one REST round-trip.
type call struct {
	op     string
	method string
	path   string
	authed bool
	query  map[string]string
	body   any
	file   string
	schema string
}

// do executes the call and decodes a JSON response into out (may be nil).
func (c *Client) do(ctx context.Context, cl call, out any) error {
	raw, status, err := c.execute(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if cl.schema != "" {
		if err := validateBody(cl.schema, raw); err != nil {
			return &NetworkError{Op: cl.op, StatusCode: status, Err: err}
		}
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &NetworkError{Op: cl.op, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// execute runs the request and maps non-2xx answers onto the error taxonomy.
func (c *Client) execute(ctx context.Context, cl call) ([]byte, int, error) {
	req := c.http.R().SetContext(ctx)
	if cl.authed {
		if tok := c.Token(); tok != "" {
			req.SetAuthToken(tok)
		}
	}
	if len(cl.query) > 0 {
		req.SetQueryParams(cl.query)
	}
	if cl.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}
	if cl.file != "" {
		req.SetFile("file", cl.file)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		return nil, 0, &NetworkError{Op: cl.op, Err: err}
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return resp.Body(), status, nil
	}

	apiErr := decodeError(resp.Body())
	if status == http.StatusUnauthorized && cl.authed {
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook()
		}
	}
	return nil, status, classify(cl.op, status, apiErr, cl.authed)
}

func decodeError(body []byte) errorResponse {
	var e errorResponse
	if len(body) > 0 {
		_ = json.Unmarshal(body, &e)
	}
	return e
}

func classify(op string, status int, e errorResponse, authed bool) error {
	switch status {
	case http.StatusUnauthorized:
		return &AuthError{Message: e.Message, Expired: authed}
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return &ValidationError{Message: e.Message, Fields: e.Errors}
	case http.StatusForbidden:
		return &NotEligibleError{Reason: e.Message}
	case http.StatusNotFound:
		return &NetworkError{Op: op, StatusCode: status, Err: ErrNotFound}
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &NetworkError{Op: op, StatusCode: status, Err: errors.New(msg)}
}
