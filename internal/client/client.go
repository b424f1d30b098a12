package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/croftbar/weather-enrichment-service/internal/circuitbreaker"
	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/observability"
)

// Geocoder resolves a city name to geocoding matches.
type Geocoder interface {
	GeocodeCity(ctx context.Context, name string) (models.GeoResult, error)
}

// ForecastFetcher retrieves a raw forecast for coordinates.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, coords models.Coordinates) (*models.RawForecast, error)
}

// ReverseGeocoder resolves coordinates to a display city name.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// WeatherAPI is the full upstream surface the orchestrator depends on.
type WeatherAPI interface {
	Geocoder
	ForecastFetcher
	ReverseGeocoder
}

var (
	// ErrCityNotFound means geocoding succeeded but returned no results.
	ErrCityNotFound = errors.New("city not found")
	// ErrEmptyForecast means the forecast call succeeded at the transport
	// level but the payload was null or empty: an upstream contract
	// violation, not unavailability.
	ErrEmptyForecast = errors.New("empty forecast payload")
	// ErrUpstreamFailure means a network or server-side transport failure.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrRateLimited means the upstream throttled us (HTTP 429).
	ErrRateLimited = errors.New("rate limited")
)

// Config holds upstream endpoints and transport behavior.
type Config struct {
	GeoURL        string // geocoding search endpoint
	ForecastURL   string // forecast endpoint
	ReverseGeoURL string // reverse-geocoding endpoint

	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// Client calls the geocoding, forecast, and reverse-geocoding upstreams with
// shared retry, backoff, and (optional) circuit breaking. Retries live here,
// at the transport layer; callers see a single success or failure.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a Client. Zero retry values fall back to 3 attempts with
// 100ms base / 2s max backoff.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 100 * time.Millisecond
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 2 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// SetCircuitBreaker wraps every upstream attempt with the given breaker.
func (c *Client) SetCircuitBreaker(cb *circuitbreaker.CircuitBreaker) {
	c.breaker = cb
}

// getJSON performs a GET with retries and returns the response body. api is
// the metrics label (geocode, forecast, reverse_geocode).
func (c *Client) getJSON(ctx context.Context, api, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			observability.UpstreamRetriesTotal.WithLabelValues(api).Inc()
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrUpstreamFailure, ctx.Err())
			case <-time.After(delay):
			}
		}

		body, err := c.callOnce(ctx, api, rawURL)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("exhausted retries: %w", lastErr)
}

// callOnce performs a single attempt, through the circuit breaker when set.
func (c *Client) callOnce(ctx context.Context, api, rawURL string) ([]byte, error) {
	if c.breaker == nil {
		return c.doRequest(ctx, api, rawURL)
	}
	var body []byte
	err := c.breaker.Call(ctx, func() error {
		var innerErr error
		body, innerErr = c.doRequest(ctx, api, rawURL)
		return innerErr
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
	return body, err
}

func (c *Client) doRequest(ctx context.Context, api, rawURL string) ([]byte, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(api, "error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if api == observability.APIReverseGeocode {
		// Nominatim requires an identifying User-Agent.
		req.Header.Set("User-Agent", "weather-enrichment-service/1.0")
	}
	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.UpstreamCallsTotal.WithLabelValues(api, "error").Inc()
		observability.UpstreamCallDuration.WithLabelValues(api, "error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: request timeout: %w", ErrUpstreamFailure, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.UpstreamCallsTotal.WithLabelValues(api, status).Inc()
	observability.UpstreamCallDuration.WithLabelValues(api, status).Observe(duration)

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	case code >= 200 && code < 300:
		return nil
	default:
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, code)
	}
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, ErrUpstreamFailure) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled")
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.cfg.RetryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.cfg.RetryMaxDelay) {
		delay = float64(c.cfg.RetryMaxDelay)
	}

	jitter := delay * 0.1 * rand.Float64()
	return time.Duration(delay + jitter)
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
