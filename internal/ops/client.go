// Package ops is a client for the EPO Open Patent Services REST API (v3.2).
// It authenticates with OAuth2 client credentials and can be fronted by the
// caching and throttling layers of package middleware.
package ops

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ET "github.com/IBM/fp-go/v2/either"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/ops/middleware"
)

const (
	DefaultBaseURL = "https://ops.epo.org/3.2"
	DefaultTimeout = 30 * time.Second

	servicePrefix = "/rest-services"
	tokenPath     = "/auth/accesstoken"
	acceptXML     = "application/xml"
)

// Config holds the OPS credentials and endpoint.
type Config struct {
	Key     string
	Secret  string
	BaseURL string
	Timeout time.Duration
}

// Response is a successful OPS reply.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client is safe for concurrent use.
type Client struct {
	cfg         Config
	http        *http.Client
	transport   http.RoundTripper
	middlewares []middleware.Middleware
	logger      *zap.SugaredLogger
	tracer      trace.Tracer
	meter       metric.Meter

	requestsTotal   metric.Int64Counter
	requestsFailed  metric.Int64Counter
	requestDuration metric.Int64Histogram
	responseBytes   metric.Int64Counter
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the base transport (for testing).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithMiddlewares puts mws in front of the authenticated transport, first one outermost.
func WithMiddlewares(mws ...middleware.Middleware) Option {
	return func(c *Client) {
		c.middlewares = mws
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithTelemetry(tracer trace.Tracer, meter metric.Meter) Option {
	return func(c *Client) {
		c.tracer = tracer
		c.meter = meter
	}
}

// New builds a client. Credentials are not checked here: a bad key or secret
// shows up as ErrAuth on the first request.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		cfg:       cfg,
		transport: http.DefaultTransport,
		logger:    zap.NewNop().Sugar(),
		tracer:    tracenoop.NewTracerProvider().Tracer("ops"),
		meter:     metricnoop.NewMeterProvider().Meter("ops"),
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.requestsTotal, err = c.meter.Int64Counter(
		"ops.requests.total",
		metric.WithDescription("Total number of OPS requests"),
	)
	if err != nil {
		return nil, err
	}
	c.requestsFailed, err = c.meter.Int64Counter(
		"ops.requests.failed",
		metric.WithDescription("Number of OPS requests that failed"),
	)
	if err != nil {
		return nil, err
	}
	c.requestDuration, err = c.meter.Int64Histogram(
		"ops.request.duration",
		metric.WithDescription("Duration of OPS requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	c.responseBytes, err = c.meter.Int64Counter(
		"ops.response.bytes",
		metric.WithDescription("Total bytes received from OPS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	tokens := clientcredentials.Config{
		ClientID:     cfg.Key,
		ClientSecret: cfg.Secret,
		TokenURL:     cfg.BaseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
		Transport: c.transport,
		Timeout:   cfg.Timeout,
	})
	authed := &oauth2.Transport{Source: tokens.TokenSource(tokenCtx), Base: c.transport}
	c.http = &http.Client{
		Transport: middleware.Chain(authed, c.middlewares...),
		Timeout:   cfg.Timeout,
	}
	return c, nil
}

// Middlewares names the layers attached to this client.
func (c *Client) Middlewares() []string {
	return middleware.Names(c.middlewares)
}

func (c *Client) endpoint(segments ...string) string {
	return c.cfg.BaseURL + servicePrefix + "/" + strings.Join(segments, "/")
}

func (c *Client) post(ctx context.Context, op, body string, segments ...string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(segments...), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", acceptXML)
	return c.execute(ctx, op, req)
}

func (c *Client) get(ctx context.Context, op string, query url.Values, accept string, segments ...string) (*Response, error) {
	u := c.endpoint(segments...)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	return c.execute(ctx, op, req)
}

func (c *Client) execute(ctx context.Context, op string, req *http.Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "ops.request", trace.WithAttributes(
		attribute.String("ops.operation", op),
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.String()),
	))
	defer span.End()
	req = req.WithContext(ctx)
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("operation", op))
	c.requestsTotal.Add(ctx, 1, attrs)

	result := IOE.Bracket(
		IOE.TryCatchError(func() (*http.Response, error) {
			resp, err := c.http.Do(req)
			if err != nil {
				return nil, transportError(err)
			}
			return resp, nil
		}),
		func(resp *http.Response) IOE.IOEither[error, *Response] {
			return IOE.TryCatchError(func() (*Response, error) {
				body, err := io.ReadAll(resp.Body)
				if err != nil {
					return nil, transportError(err)
				}
				if resp.StatusCode < 200 || resp.StatusCode >= 300 {
					return nil, newAPIError(resp.StatusCode, body)
				}
				return &Response{
					StatusCode:  resp.StatusCode,
					ContentType: resp.Header.Get("Content-Type"),
					Body:        body,
				}, nil
			})
		},
		func(resp *http.Response, _ ET.Either[error, *Response]) IOE.IOEither[error, any] {
			return IOE.TryCatchError(func() (any, error) { return nil, resp.Body.Close() })
		},
	)()

	c.requestDuration.Record(ctx, time.Since(start).Milliseconds(), attrs)
	out, err := ET.UnwrapError(result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.requestsFailed.Add(ctx, 1, attrs)
		c.logger.Warnw("OPS request failed", "operation", op, "url", req.URL.String(), "err", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("http.status_code", out.StatusCode),
		attribute.Int("ops.response_bytes", len(out.Body)),
	)
	c.responseBytes.Add(ctx, int64(len(out.Body)), attrs)
	c.logger.Debugw("OPS request completed",
		"operation", op,
		"status", out.StatusCode,
		"content_type", out.ContentType,
		"bytes", len(out.Body),
		"duration_ms", time.Since(start).Milliseconds())
	return out, nil
}
