package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/trussfs/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

// APIError is a non-2xx bridge answer.
type APIError struct {
	Status  int
	Kind    fserr.Kind
	Label   string
	Message string
	TraceID string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bridge: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("bridge: %d %s: %s", e.Status, e.Label, e.Message)
}

// Unwrap exposes the error kind so errors.Is matches the fserr sentinels.
func (e *APIError) Unwrap() error {
	return fserr.New(e.Kind, "bridge", "", nil)
}

// outage reports whether err says the bridge itself is unhealthy.
func outage(err error) bool {
	if err == nil {
		return false
	}
	var api *APIError
	if errors.As(err, &api) {
		return api.Status >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled)
}

// Config tunes the client.
type Config struct {
	Timeout      time.Duration
	Retries      int
	RetryWait    time.Duration
	TripAfter    uint32
	OpenDuration time.Duration
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		Retries:      2,
		RetryWait:    200 * time.Millisecond,
		TripAfter:    5,
		OpenDuration: 10 * time.Second,
	}
}

// Client talks to one bridge.
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
}

// New creates a client for the bridge at baseURL with DefaultConfig.
func New(baseURL string) *Client {
	return NewWithConfig(baseURL, DefaultConfig())
}

// NewWithConfig creates a client for the bridge at baseURL.
func NewWithConfig(baseURL string, cfg Config) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(4*cfg.RetryWait).
		SetHeader("User-Agent", "trussfs-client").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			headers := map[string]string{}
			tracing.InjectTraceContext(req.Context(), headers)
			req.SetHeaders(headers)
			return nil
		}).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// Only reads are retried; a repeated POST would leak a handle.
			if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})

	trip := cfg.TripAfter
	breaker := resilience.New("trussfs-bridge", resilience.Settings{
		MaxRequests: 1,
		Timeout:     cfg.OpenDuration,
		ReadyToTrip: func(c resilience.Counts) bool {
			return trip > 0 && c.ConsecutiveFailures >= trip
		},
		IsSuccessful: func(err error) bool { return !outage(err) },
	})

	return &Client{resty: r, breaker: breaker}
}

// BreakerState reports the circuit state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// do runs one request. out, when set, receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, path string, configure func(*resty.Request), out any) (*resty.Response, error) {
	return resilience.Call(c.breaker, func() (*resty.Response, error) {
		req := c.resty.R().SetContext(ctx).SetError(&types.ErrorResponse{})
		if out != nil {
			req.SetResult(out)
		}
		if configure != nil {
			configure(req)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return resp, apiError(resp)
		}
		return resp, nil
	})
}

func apiError(resp *resty.Response) error {
	e := &APIError{
		Status:  resp.StatusCode(),
		Kind:    fserr.KindIO,
		TraceID: resp.Header().Get(tracing.TraceHeader),
	}
	if body, ok := resp.Error().(*types.ErrorResponse); ok && body != nil {
		e.Label = body.Kind
		e.Message = body.Error
		e.Kind = fserr.ParseKind(body.Kind)
	}
	return e
}

// Health returns the bridge health report.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	_, err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Open creates a bridge session.
func (c *Client) Open(ctx context.Context) (*Session, error) {
	var info types.ContextInfo
	if _, err := c.do(ctx, http.MethodPost, "/contexts", nil, &info); err != nil {
		return nil, err
	}
	return &Session{c: c, info: info}, nil
}

// Attach binds to an existing session without contacting the bridge.
func (c *Client) Attach(id string) *Session {
	return &Session{c: c, info: types.ContextInfo{ID: id}}
}

// Contexts lists the open sessions.
func (c *Client) Contexts(ctx context.Context) ([]types.ContextInfo, error) {
	var out struct {
		Contexts []types.ContextInfo `json:"contexts"`
	}
	_, err := c.do(ctx, http.MethodGet, "/contexts", nil, &out)
	return out.Contexts, err
}
