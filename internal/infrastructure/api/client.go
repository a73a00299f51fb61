package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/baremaai/companion/internal/infrastructure/resilience"
	"github.com/baremaai/companion/internal/observability/metrics"
)

// TokenSource yields the current bearer token, or "" when unauthenticated.
type TokenSource func() string

type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	Token          TokenSource
	OnUnauthorized func()

	Policy  resilience.Policy
	Metrics *metrics.ClientMetrics
	Logger  *slog.Logger
}

// Client is the single HTTP boundary to the Barema backend. Every request
// goes out with the session's bearer token; every unauthorized response
// triggers the session-reset hook, no matter which call produced it.
// Idempotent reads are retried under a circuit breaker; mutations are
// issued exactly once.
type Client struct {
	http    *resty.Client
	exec    *resilience.Executor
	limiter *rate.Limiter
	metrics *metrics.ClientMetrics
	logger  *slog.Logger

	token          TokenSource
	onUnauthorized func()
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		exec:           resilience.NewExecutor(opts.Policy),
		metrics:        opts.Metrics,
		logger:         logger,
		token:          opts.Token,
		onUnauthorized: opts.OnUnauthorized,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if c.limiter != nil {
				if err := c.limiter.Wait(r.Context()); err != nil {
					return err
				}
			}
			if c.token != nil {
				if token := c.token(); token != "" {
					r.SetAuthToken(token)
				}
			}
			return nil
		})

	return c
}

// do issues one logical call. send must build a fresh request on every
// invocation so retries never reuse a consumed body.
func (c *Client) do(ctx context.Context, operation string, idempotent bool, send func(ctx context.Context) (*resty.Response, error)) error {
	attempt := func(ctx context.Context) error {
		start := time.Now()
		resp, err := send(ctx)
		if err != nil {
			c.metrics.ObserveRequest(operation, "", 0, time.Since(start))
			return fmt.Errorf("%s request: %w", operation, err)
		}
		c.metrics.ObserveRequest(operation, resp.Request.Method, resp.StatusCode(), time.Since(start))
		if resp.IsError() {
			return c.failure(operation, resp.StatusCode(), resp.Status(), resp.Body())
		}
		return nil
	}

	if idempotent {
		return c.exec.Do(ctx, operation, classifyError, attempt)
	}
	return attempt(ctx)
}

func (c *Client) failure(operation string, statusCode int, status string, body []byte) error {
	statusErr := newStatusError(operation, statusCode, status, body)
	if statusCode == 401 {
		c.handleUnauthorized(operation)
	}
	return wrapStatusError(statusErr)
}

func (c *Client) handleUnauthorized(operation string) {
	c.logger.Warn("session_invalidated", "operation", operation)
	c.metrics.RecordUnauthorized()
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func (c *Client) getJSON(ctx context.Context, operation, path string, params map[string]string, out any) error {
	return c.do(ctx, operation, true, func(ctx context.Context) (*resty.Response, error) {
		req := c.http.R().SetContext(ctx)
		if len(params) > 0 {
			req.SetQueryParams(params)
		}
		if out != nil {
			req.SetResult(out)
		}
		return req.Get(path)
	})
}

func (c *Client) getBytes(ctx context.Context, operation, path string, params map[string]string) ([]byte, error) {
	var body []byte
	err := c.do(ctx, operation, true, func(ctx context.Context) (*resty.Response, error) {
		req := c.http.R().SetContext(ctx)
		if len(params) > 0 {
			req.SetQueryParams(params)
		}
		resp, err := req.Get(path)
		if err == nil {
			body = resp.Body()
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) postJSON(ctx context.Context, operation, path string, payload, out any) error {
	return c.do(ctx, operation, false, func(ctx context.Context) (*resty.Response, error) {
		req := c.http.R().SetContext(ctx).SetBody(payload)
		if out != nil {
			req.SetResult(out)
		}
		return req.Post(path)
	})
}

func (c *Client) patchJSON(ctx context.Context, operation, path string, payload, out any) error {
	return c.do(ctx, operation, false, func(ctx context.Context) (*resty.Response, error) {
		req := c.http.R().SetContext(ctx).SetBody(payload)
		if out != nil {
			req.SetResult(out)
		}
		return req.Patch(path)
	})
}

func (c *Client) delete(ctx context.Context, operation, path string) error {
	return c.do(ctx, operation, false, func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().SetContext(ctx).Delete(path)
	})
}

// download streams a binary response into out. Downloads are never retried:
// a replay after a partial copy would corrupt the destination.
func (c *Client) download(ctx context.Context, operation, path string, out io.Writer) error {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(path)
	if err != nil {
		c.metrics.ObserveRequest(operation, "", 0, time.Since(start))
		return fmt.Errorf("%s request: %w", operation, err)
	}
	raw := resp.RawBody()
	defer raw.Close()
	c.metrics.ObserveRequest(operation, resp.Request.Method, resp.StatusCode(), time.Since(start))

	if resp.StatusCode() >= 400 {
		body, _ := io.ReadAll(io.LimitReader(raw, 2048))
		return c.failure(operation, resp.StatusCode(), resp.Status(), body)
	}

	if _, err := io.Copy(out, raw); err != nil {
		return fmt.Errorf("%s copy body: %w", operation, err)
	}
	return nil
}

func pathID(format, id string) string {
	return fmt.Sprintf(format, url.PathEscape(id))
}
