// Package providers is the shared transport for every public-data upstream:
// a JSON GET client with per-call timeouts, a circuit breaker, tracing,
// latency metrics, and the normalized ProviderError taxonomy.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"civicfin/internal/ratelimit"
	"civicfin/pkg/platform/circuit"
)

const maxBodyBytes = 8 << 20

// Observer receives per-call latency and outcome.
type Observer interface {
	ObserveUpstream(provider, endpoint, outcome string, d time.Duration)
}

// Config describes one upstream.
type Config struct {
	ID          string
	BaseURL     string
	APIKey      string
	APIKeyParam string // query parameter carrying the key, e.g. "api_key"
	APIKeyHdr   string // header carrying the key, e.g. "X-API-Key"
	Timeout     time.Duration
}

// JSONClient performs bounded JSON GET requests against one upstream.
type JSONClient struct {
	cfg      Config
	http     *http.Client
	breaker  *circuit.Breaker
	limiter  ratelimit.Limiter
	logger   *slog.Logger
	observer Observer
}

// Option configures a JSONClient.
type Option func(*JSONClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(j *JSONClient) {
		if c != nil {
			j.http = c
		}
	}
}

// WithBreaker installs a circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(j *JSONClient) {
		j.breaker = b
	}
}

// WithLimiter keeps calls inside the upstream's request quota.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(j *JSONClient) {
		j.limiter = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(j *JSONClient) {
		if l != nil {
			j.logger = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(j *JSONClient) {
		j.observer = o
	}
}

// NewJSONClient creates a client. A zero timeout defaults to 10s.
func NewJSONClient(cfg Config, opts ...Option) *JSONClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	j := &JSONClient{
		cfg:    cfg,
		http:   &http.Client{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// ID returns the upstream identifier.
func (j *JSONClient) ID() string {
	return j.cfg.ID
}

// Get fetches path with query and decodes the JSON body into out.
// Every failure is returned as a *ProviderError.
func (j *JSONClient) Get(ctx context.Context, endpoint, path string, query url.Values, out any) (err error) {
	ctx, span := otel.Tracer("civicfin/sources").Start(ctx, j.cfg.ID+"."+endpoint)
	defer span.End()
	span.SetAttributes(attribute.String("upstream.provider", j.cfg.ID), attribute.String("upstream.endpoint", endpoint))

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(GetCategory(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		if j.observer != nil {
			j.observer.ObserveUpstream(j.cfg.ID, endpoint, outcome, time.Since(start))
		}
	}()

	if j.breaker != nil && !j.breaker.Allow() {
		return NewProviderError(ErrorProviderOutage, j.cfg.ID, "circuit open", nil)
	}

	if err := j.reserve(ctx); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, j.buildURL(path, query), nil)
	if err != nil {
		return NewProviderError(ErrorInternal, j.cfg.ID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if j.cfg.APIKeyHdr != "" && j.cfg.APIKey != "" {
		req.Header.Set(j.cfg.APIKeyHdr, j.cfg.APIKey)
	}

	resp, err := j.http.Do(req)
	if err != nil {
		return j.fail(NewProviderError(categoryForTransport(callCtx, ctx, err), j.cfg.ID, "request failed", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		category := categoryForStatus(resp.StatusCode)
		return j.fail(NewProviderError(category, j.cfg.ID, fmt.Sprintf("%s returned %s", endpoint, resp.Status), nil))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		category := ErrorBadData
		if callCtx.Err() != nil {
			category = categoryForTransport(callCtx, ctx, err)
		}
		return j.fail(NewProviderError(category, j.cfg.ID, "decode "+endpoint, err))
	}

	j.succeed()
	return nil
}

func (j *JSONClient) buildURL(path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if j.cfg.APIKeyParam != "" && j.cfg.APIKey != "" {
		q.Set(j.cfg.APIKeyParam, j.cfg.APIKey)
	}
	u := j.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// reserve takes one slot of the quota. A limiter failure lets the call
// through; the upstream's own 429 is the backstop.
func (j *JSONClient) reserve(ctx context.Context) error {
	if j.limiter == nil {
		return nil
	}
	res, err := j.limiter.Allow(ctx, ratelimit.Key(j.cfg.ID))
	if err != nil {
		j.logger.WarnContext(ctx, "upstream quota check failed", "provider", j.cfg.ID, "error", err)
		return nil
	}
	if !res.Allowed {
		return NewProviderError(ErrorRateLimited, j.cfg.ID,
			fmt.Sprintf("local quota exhausted until %s", res.ResetAt.UTC().Format(time.RFC3339)), nil)
	}
	return nil
}

func (j *JSONClient) fail(pe *ProviderError) error {
	if j.breaker != nil && countsAgainstBreaker(pe.Category) {
		if _, change := j.breaker.RecordFailure(); change.Opened {
			j.logger.Warn("upstream circuit opened", "provider", j.cfg.ID, "error", pe)
		}
	}
	return pe
}

func (j *JSONClient) succeed() {
	if j.breaker == nil {
		return
	}
	if _, change := j.breaker.RecordSuccess(); change.Closed {
		j.logger.Info("upstream circuit closed", "provider", j.cfg.ID)
	}
}
