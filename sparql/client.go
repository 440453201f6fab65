package sparql

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognizone/skoslens/errors"
	"github.com/cognizone/skoslens/pkg/retry"
)

// Transport executes a single HTTP request. *http.Client satisfies it; tests
// and environments with special transport policies substitute their own.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxErrorBodyBytes bounds how much of an error response body is read for
// diagnostics before the connection is released.
const maxErrorBodyBytes = 4 << 10

// Client executes SPARQL queries against remote endpoints over HTTP POST
// with form-encoded parameters, per-attempt timeouts, and exponential
// backoff on retryable failures. A Client is safe for concurrent use.
type Client struct {
	transport Transport
	logger    *slog.Logger
	metrics   *clientMetrics
	defaults  QueryOptions
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithTransport replaces the HTTP transport.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) error {
		if t == nil {
			return fmt.Errorf("transport cannot be nil")
		}
		c.transport = t
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics registers query metrics with the given registerer.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) error {
		m, err := newClientMetrics(reg)
		if err != nil {
			return fmt.Errorf("register client metrics: %w", err)
		}
		c.metrics = m
		return nil
	}
}

// WithDefaults overrides the options applied when Execute receives nil.
func WithDefaults(opts QueryOptions) ClientOption {
	return func(c *Client) error {
		c.defaults = opts
		return nil
	}
}

// NewClient creates a query client. Without options it uses http.Client
// without a client-level timeout (attempts are bounded per call) and the
// default slog logger.
func NewClient(options ...ClientOption) (*Client, error) {
	c := &Client{
		transport: &http.Client{},
		logger:    slog.Default(),
		defaults:  DefaultQueryOptions(),
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Execute runs a SPARQL query against the endpoint and returns the parsed
// result. The endpoint transitions to StatusConnecting for the duration of
// the call and to StatusConnected or StatusError afterward.
//
// Retries apply only to retryable failures (HTTP 5xx, timeouts, aborts) with
// exponential backoff starting at opts.RetryDelay. opts.Retries counts
// additional attempts after the first; the error from the final attempt is
// what callers see, always as a *errors.ClassifiedError.
func (c *Client) Execute(ctx context.Context, ep *Endpoint, query string, opts *QueryOptions) (*Result, error) {
	effective := c.defaults
	if opts != nil {
		effective = *opts
	}
	if effective.Timeout <= 0 {
		effective.Timeout = DefaultQueryOptions().Timeout
	}
	if effective.RetryDelay <= 0 {
		effective.RetryDelay = DefaultQueryOptions().RetryDelay
	}
	if effective.Retries < 0 {
		effective.Retries = 0
	}

	ep.SetStatus(StatusConnecting)
	start := time.Now()

	cfg := retry.Config{
		MaxAttempts:  effective.Retries + 1,
		InitialDelay: effective.RetryDelay,
		MaxDelay:     maxDuration(30*time.Second, effective.RetryDelay),
		Multiplier:   2.0,
		AddJitter:    false,
	}

	attempt := 0
	result, err := retry.DoWithResult(ctx, cfg, func() (*Result, error) {
		attempt++
		c.metrics.recordAttempt()
		res, attemptErr := c.attempt(ctx, ep, query, effective.Timeout)
		if attemptErr != nil {
			c.logger.Debug("query attempt failed",
				"endpoint", ep.ID,
				"attempt", attempt,
				"error", attemptErr)
			if !errors.IsRetryable(attemptErr) {
				return nil, retry.NonRetryable(attemptErr)
			}
		}
		return res, attemptErr
	})

	elapsed := time.Since(start)
	if err != nil {
		classified := c.coerce(err)
		ep.SetStatus(StatusError)
		c.metrics.recordQuery(classified.Code.String(), elapsed, false)
		c.logger.Warn("query failed",
			"endpoint", ep.ID,
			"code", classified.Code,
			"attempts", attempt,
			"duration", elapsed,
			"error", classified)
		return nil, classified
	}

	ep.SetStatus(StatusConnected)
	c.metrics.recordQuery("", elapsed, true)
	c.logger.Debug("query succeeded",
		"endpoint", ep.ID,
		"attempts", attempt,
		"duration", elapsed)
	return result, nil
}

// attempt performs one HTTP round trip and parses the response. Each call
// gets its own deadline derived from the parent context.
func (c *Client) attempt(ctx context.Context, ep *Endpoint, query string, timeout time.Duration) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, ep.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.ClassifyTransport(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	if err := applyAuth(req, ep.Auth); err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, errors.ClassifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, errors.Classify(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ClassifyTransport(err)
	}

	result, err := ParseResult(body)
	if err != nil {
		return nil, errors.InvalidResponse(err)
	}
	return result, nil
}

// applyAuth sets request authentication from the endpoint configuration.
// AuthNone guarantees the Authorization header is absent.
func applyAuth(req *http.Request, auth AuthConfig) error {
	switch auth.Kind {
	case AuthNone, "":
		return nil
	case AuthBasic:
		req.SetBasicAuth(auth.Username, auth.Password)
		return nil
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+auth.Token)
		return nil
	case AuthAPIKey:
		header := auth.HeaderName
		if header == "" {
			header = DefaultAPIKeyHeader
		}
		req.Header.Set(header, auth.APIKey)
		return nil
	default:
		return errors.New(errors.CodeAuthFailed, fmt.Sprintf("unknown auth kind %q", auth.Kind), false)
	}
}

// coerce guarantees every error surfaced by Execute is classified. Retry
// machinery errors (context cancellation during backoff) and anything else
// unclassified are treated as transport failures.
func (c *Client) coerce(err error) *errors.ClassifiedError {
	if ce, ok := errors.AsClassified(err); ok {
		return ce
	}
	return errors.ClassifyTransport(err)
}

// TestConnection issues a minimal probe query with no retries and reports
// reachability and round-trip time.
func (c *Client) TestConnection(ctx context.Context, ep *Endpoint) ConnectionTest {
	start := time.Now()
	_, err := c.Execute(ctx, ep, "SELECT ?s WHERE { ?s ?p ?o } LIMIT 1", &QueryOptions{
		Retries:    0,
		RetryDelay: time.Second,
		Timeout:    10 * time.Second,
	})
	elapsed := time.Since(start)
	if err != nil {
		return ConnectionTest{Success: false, ResponseTime: elapsed, Error: err}
	}
	return ConnectionTest{Success: true, ResponseTime: elapsed}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
