package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"causelist/internal/causelist/models"
	"causelist/internal/platform/metrics"
	"causelist/pkg/platform/circuit"
	"causelist/pkg/platform/sentinel"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// HTTPClient talks to the backend over HTTP/JSON.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		if c != nil {
			h.http = c
		}
	}
}

// WithTimeout bounds each call; zero means no client-side timeout. It sets
// the timeout on a copy, so a shared client passed to WithHTTPClient is left
// untouched.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		c := *h.http
		c.Timeout = d
		h.http = &c
	}
}

// WithRateLimit throttles outbound calls to rps with the given burst.
// A non-positive rps leaves calls unthrottled.
func WithRateLimit(rps float64, burst int) Option {
	return func(h *HTTPClient) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker fails calls fast while b is open.
func WithBreaker(b *circuit.Breaker) Option {
	return func(h *HTTPClient) {
		h.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HTTPClient) {
		h.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *HTTPClient) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHTTPClient builds a client rooted at baseURL (scheme and host, optional
// path prefix).
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	h := &HTTPClient{
		baseURL: u,
		http:    &http.Client{},
		logger:  slog.Default(),
		tracer:  otel.Tracer("causelist/backend"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Options fetches the option list of level. The ancestors of level must be set in sel.
func (h *HTTPClient) Options(ctx context.Context, level models.Level, sel models.Selection) (models.OptionList, error) {
	if !level.Valid() {
		return models.OptionList{}, fmt.Errorf("unknown level %d", int(level))
	}
	path, ok := sel.Path(level)
	if !ok {
		return models.OptionList{}, fmt.Errorf("%w: %s", ErrIncompletePath, level)
	}
	endpoint := OptionsEndpoint(level)

	var body map[string]json.RawMessage
	if err := h.get(ctx, endpoint, path, &body); err != nil {
		return models.OptionList{}, err
	}

	raw, ok := body[level.ResponseKey()]
	if !ok || string(raw) == "null" {
		return models.OptionList{}, newTransportError(ErrorBadData, endpoint,
			fmt.Sprintf("response has no %q list", level.ResponseKey()), nil)
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return models.OptionList{}, newTransportError(ErrorBadData, endpoint, "decode option list", err)
	}
	return models.NewOptionList(level, labels), nil
}

// Submit sends the cause-list request. date is sent as DD-MM-YYYY.
func (h *HTTPClient) Submit(ctx context.Context, kind models.Kind, sel models.Selection, date models.CauseDate) (*models.SubmitResult, error) {
	if _, err := models.ParseKind(kind.String()); err != nil {
		return nil, err
	}
	path, ok := sel.Path(models.LevelCourt)
	if !ok || sel.Court == "" {
		return nil, fmt.Errorf("%w: submit needs a court", ErrIncompletePath)
	}
	if date.IsZero() {
		return nil, errors.New("submit needs a date")
	}
	endpoint := SubmitEndpoint(kind)
	segments := append(path, sel.Court, date.String())

	var body struct {
		Status  *string            `json:"status"`
		Entries []models.CaseEntry `json:"entries"`
	}
	if err := h.get(ctx, endpoint, segments, &body); err != nil {
		return nil, err
	}
	if body.Status == nil {
		return nil, newTransportError(ErrorBadData, endpoint, "response has no status", nil)
	}
	return &models.SubmitResult{Status: *body.Status, Entries: body.Entries}, nil
}

// get performs one GET and decodes the JSON body into out.
func (h *HTTPClient) get(ctx context.Context, endpoint string, segments []string, out any) (err error) {
	start := time.Now()
	target := h.endpointURL(endpoint, segments)

	ctx, span := h.tracer.Start(ctx, "backend."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", target),
		))
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(GetCategory(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		h.metrics.ObserveBackend(endpoint, outcome, start)
		span.End()
	}()

	if h.breaker != nil && !h.breaker.Allow() {
		return newTransportError(ErrorUnavailable, endpoint, "circuit open", sentinel.ErrUnavailable)
	}
	defer func() {
		h.recordOutcome(ctx, endpoint, err)
	}()

	if h.limiter != nil {
		if werr := h.limiter.Wait(ctx); werr != nil {
			if errors.Is(werr, context.Canceled) {
				return newTransportError(ErrorCanceled, endpoint, "canceled waiting for rate limit", werr)
			}
			return newTransportError(ErrorTimeout, endpoint, "rate limit wait exceeds deadline", werr)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return newTransportError(ErrorInternal, endpoint, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		return classifyRequestError(endpoint, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return classifyRequestError(endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := newTransportError(classifyStatus(resp.StatusCode), endpoint,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
		te.StatusCode = resp.StatusCode
		return te
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newTransportError(ErrorBadData, endpoint, "decode response", err)
	}
	return nil
}

// recordOutcome feeds the breaker. Only calls the backend actually answered
// count as successes; callers giving up and local failures say nothing about
// backend health and are not recorded.
func (h *HTTPClient) recordOutcome(ctx context.Context, endpoint string, err error) {
	if h.breaker == nil {
		return
	}
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			return
		}
		switch {
		case te.Transient():
			if _, change := h.breaker.RecordFailure(); change.Opened {
				h.logger.WarnContext(ctx, "backend circuit opened",
					"breaker", h.breaker.Name(),
					"endpoint", endpoint,
				)
			}
			return
		case te.Category == ErrorCanceled, te.Category == ErrorInternal, te.Category == ErrorUnavailable:
			return
		}
	}
	if _, change := h.breaker.RecordSuccess(); change.Closed {
		h.logger.InfoContext(ctx, "backend circuit closed", "breaker", h.breaker.Name())
	}
}

// endpointURL joins base, endpoint and path-escaped segments.
func (h *HTTPClient) endpointURL(endpoint string, segments []string) string {
	var b strings.Builder
	b.WriteString(h.baseURL.String())
	b.WriteString("/")
	b.WriteString(endpoint)
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func classifyStatus(status int) ErrorCategory {
	switch {
	case status == http.StatusNotFound:
		return ErrorNotFound
	case status == http.StatusTooManyRequests:
		return ErrorRateLimited
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return ErrorTimeout
	case status >= 500:
		return ErrorProviderOutage
	}
	return ErrorBadData
}

func classifyRequestError(endpoint string, err error) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newTransportError(ErrorTimeout, endpoint, "request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return newTransportError(ErrorCanceled, endpoint, "request canceled", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTransportError(ErrorTimeout, endpoint, "request timed out", err)
	}
	return newTransportError(ErrorProviderOutage, endpoint, "request failed", err)
}
