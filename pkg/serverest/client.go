/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package serverest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public demo deployment.
	DefaultBaseURL = "https://serverest.dev"

	DefaultRequestTimeout = 10 * time.Second

	tracerName = "github.com/nscaledev/serverest-e2e/pkg/serverest"
)

type options struct {
	httpClient     HTTPDoer
	timeout        time.Duration
	logger         logr.Logger
	metrics        *Metrics
	tracerProvider trace.TracerProvider
	limiter        *rate.Limiter
	agent          string
	logRequests    bool
	logResponses   bool
}

// Option customises a Client.
type Option func(*options)

// WithHTTPClient replaces the traced default transport.
func WithHTTPClient(client HTTPDoer) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTimeout bounds each request made by the default transport.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = provider
	}
}

// WithRateLimit caps the request rate. The public deployment is shared, so
// long running sweeps should be polite. A non-positive rate disables limiting.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(o *options) {
		if requestsPerSecond <= 0 {
			o.limiter = nil
			return
		}

		o.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithAgent sets the tracestate vendor value sent with every request.
func WithAgent(agent string) Option {
	return func(o *options) {
		o.agent = agent
	}
}

func WithRequestLogging(requests, responses bool) Option {
	return func(o *options) {
		o.logRequests = requests
		o.logResponses = responses
	}
}

// Client maps named domain operations onto HTTP calls. It performs no
// retries and no error translation: every service response, whatever its
// status, is returned to the caller. Errors are only returned when no
// response could be obtained.
type Client struct {
	baseURL      string
	client       HTTPDoer
	endpoints    *Endpoints
	logger       logr.Logger
	metrics      *Metrics
	tracer       trace.Tracer
	propagator   propagation.TextMapPropagator
	limiter      *rate.Limiter
	agent        string
	logRequests  bool
	logResponses bool
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	o := &options{
		timeout: DefaultRequestTimeout,
		logger:  logr.Discard(),
		agent:   "ginkgo",
	}

	for _, opt := range opts {
		opt(o)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// An SDK provider with no exporter still mints real trace IDs, which
	// is all that is needed to correlate failures with server logs.
	if o.tracerProvider == nil {
		o.tracerProvider = sdktrace.NewTracerProvider()
	}

	propagator := propagation.TraceContext{}

	if o.httpClient == nil {
		o.httpClient = &http.Client{
			Timeout: o.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(o.tracerProvider),
				otelhttp.WithPropagators(propagator),
			),
		}
	}

	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		client:       o.httpClient,
		endpoints:    NewEndpoints(),
		logger:       o.logger,
		metrics:      o.metrics,
		tracer:       o.tracerProvider.Tracer(tracerName),
		propagator:   propagator,
		limiter:      o.limiter,
		agent:        o.agent,
		logRequests:  o.logRequests,
		logResponses: o.logResponses,
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// logError logs a transport level failure with trace context.
func (c *Client) logError(method, path string, duration time.Duration, traceID string, err error, context string) {
	c.logger.Error(err, context, "method", method, "path", path, "duration", duration, "traceID", traceID)
	c.logTraceContext(traceID)
}

// logTraceContext logs the trace context information.
func (c *Client) logTraceContext(traceID string) {
	c.logger.Info(fmt.Sprintf("TRACE CONTEXT: Use trace ID '%s' to search logs for this request", traceID))
}

//nolint:cyclop // request plumbing is linear but long
func (c *Client) doRequest(ctx context.Context, method, route, path string, payload any, token string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	ctx, span := c.tracer.Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.template", route),
		))
	defer span.End()

	traceID := span.SpanContext().TraceID().String()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// W3C trace context, so a failing request can be found server side.
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	req.Header.Set("Tracestate", "test-automation="+c.agent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Tokens are passed verbatim, the service hands them out with the
	// "Bearer " prefix already applied.
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "http request failed")
		c.metrics.observe(method, route, 0, duration)
		c.logError(method, path, duration, traceID, err, "http request failed")

		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		c.logError(method, path, duration, traceID, err, "reading response body")

		return nil, fmt.Errorf("reading response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.metrics.observe(method, route, resp.StatusCode, duration)

	if c.logRequests {
		c.logger.Info("request", "method", method, "path", path, "status", resp.StatusCode, "duration", duration, "traceID", traceID)
	}

	if c.logResponses && len(respBody) > 0 {
		c.logger.Info("response body", "method", method, "path", path, "body", string(respBody))
	}

	return &Response{
		Method:     method,
		Route:      route,
		Path:       path,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		TraceID:    traceID,
		Duration:   duration,
	}, nil
}

// Do issues an arbitrary request. It exists for payloads the typed
// operations cannot express, such as bodies with missing fields.
func (c *Client) Do(ctx context.Context, method, path string, payload any, token string) (*Response, error) {
	return c.doRequest(ctx, method, RouteOf(path), path, payload, token)
}

// create posts a payload and unwraps the identifier of the new resource.
// The identifier is empty when the service refused the request, a
// malformed one is an error.
func (c *Client) create(ctx context.Context, route, path string, payload any, token, resourceType string) (*Response, string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, route, path, payload, token)
	if err != nil {
		return nil, "", fmt.Errorf("creating %s: %w", resourceType, err)
	}

	if !resp.OK() {
		return resp, "", nil
	}

	var created CreatedResponse

	if err := resp.Decode(&created); err != nil {
		return resp, "", fmt.Errorf("creating %s: %w", resourceType, err)
	}

	return resp, created.ID.String(), nil
}

// Login exchanges credentials for a bearer token. The token is empty when
// the service refused the credentials.
func (c *Client) Login(ctx context.Context, credentials Credentials) (*Response, string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, RouteLogin, c.endpoints.Login(), credentials, "")
	if err != nil {
		return nil, "", fmt.Errorf("logging in: %w", err)
	}

	var login LoginResponse

	if resp.OK() {
		_ = resp.Decode(&login)
	}

	return resp, login.Authorization, nil
}

// CreateUser registers a user.
func (c *Client) CreateUser(ctx context.Context, user User) (*Response, string, error) {
	return c.create(ctx, RouteUsers, c.endpoints.CreateUser(), user, "", "user")
}

// GetUser retrieves a user by ID.
func (c *Client) GetUser(ctx context.Context, userID string) (*Response, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, RouteUser, c.endpoints.GetUser(userID), nil, "")
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return resp, nil
}

// DeleteUser removes a user. The service refuses while the user owns a cart.
func (c *Client) DeleteUser(ctx context.Context, userID string) (*Response, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete, RouteUser, c.endpoints.DeleteUser(userID), nil, "")
	if err != nil {
		return nil, fmt.Errorf("deleting user: %w", err)
	}

	return resp, nil
}

// ListUsers lists users, optionally filtered.
func (c *Client) ListUsers(ctx context.Context, filter *UserFilter) (*Response, error) {
	return c.list(ctx, RouteUsers, c.endpoints.ListUsers(), filter.params(), "users")
}

// CreateProduct registers a product. Requires an administrator token.
func (c *Client) CreateProduct(ctx context.Context, product Product, token string) (*Response, string, error) {
	return c.create(ctx, RouteProducts, c.endpoints.CreateProduct(), product, token, "product")
}

// GetProduct retrieves a product by ID.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Response, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, RouteProduct, c.endpoints.GetProduct(productID), nil, "")
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}

	return resp, nil
}

// DeleteProduct removes a product. Requires an administrator token.
func (c *Client) DeleteProduct(ctx context.Context, productID, token string) (*Response, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete, RouteProduct, c.endpoints.DeleteProduct(productID), nil, token)
	if err != nil {
		return nil, fmt.Errorf("deleting product: %w", err)
	}

	return resp, nil
}

// ListProducts lists products, optionally filtered.
func (c *Client) ListProducts(ctx context.Context, filter *ProductFilter) (*Response, error) {
	return c.list(ctx, RouteProducts, c.endpoints.ListProducts(), filter.params(), "products")
}

// CreateCart opens a cart for the token's user.
func (c *Client) CreateCart(ctx context.Context, cart Cart, token string) (*Response, string, error) {
	return c.create(ctx, RouteCarts, c.endpoints.CreateCart(), cart, token, "cart")
}

// GetCart retrieves a cart by ID.
func (c *Client) GetCart(ctx context.Context, cartID string) (*Response, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, RouteCart, c.endpoints.GetCart(cartID), nil, "")
	if err != nil {
		return nil, fmt.Errorf("getting cart: %w", err)
	}

	return resp, nil
}

// ListCarts lists carts, optionally filtered.
func (c *Client) ListCarts(ctx context.Context, filter *CartFilter) (*Response, error) {
	return c.list(ctx, RouteCarts, c.endpoints.ListCarts(), filter.params(), "carts")
}

// DeleteCart cancels the token user's purchase, restocking its products.
func (c *Client) DeleteCart(ctx context.Context, token string) (*Response, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete, RouteCancelPurchase, c.endpoints.CancelPurchase(), nil, token)
	if err != nil {
		return nil, fmt.Errorf("cancelling purchase: %w", err)
	}

	return resp, nil
}

// CompletePurchase concludes the token user's purchase. Stock stays reserved.
func (c *Client) CompletePurchase(ctx context.Context, token string) (*Response, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete, RouteCompletePurchase, c.endpoints.CompletePurchase(), nil, token)
	if err != nil {
		return nil, fmt.Errorf("completing purchase: %w", err)
	}

	return resp, nil
}

// list is a generic helper for list operations.
func (c *Client) list(ctx context.Context, route, path string, params []queryParam, resourceType string) (*Response, error) {
	query, err := encodeQuery(params)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", resourceType, err)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, route, path+query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", resourceType, err)
	}

	return resp, nil
}
