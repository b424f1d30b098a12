package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/croftbar/weather-enrichment-service/internal/client"
	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/observability"
	"github.com/croftbar/weather-enrichment-service/internal/service"
	"github.com/croftbar/weather-enrichment-service/internal/validation"
)

// WeatherProvider is the orchestrator surface the HTTP layer depends on.
type WeatherProvider interface {
	GetWeather(ctx context.Context, city string, lat, lon *float64) (*models.EnrichedForecast, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weather   WeatherProvider
	logger    *zap.Logger
	startTime time.Time
	// cachePing, when set, is called by the health handler to check cache
	// reachability. Used when the backend is memcached.
	cachePing func() error
}

// NewHandler returns a new Handler. cachePing may be nil.
func NewHandler(weather WeatherProvider, logger *zap.Logger, cachePing func() error) *Handler {
	return &Handler{
		weather:   weather,
		logger:    logger,
		startTime: time.Now(),
		cachePing: cachePing,
	}
}

// GetWeather handles GET /weather?city=...&lat=...&lon=...
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")

	lat, err := parseCoordParam(q.Get("lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lat parameter")
		return
	}
	lon, err := parseCoordParam(q.Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lon parameter")
		return
	}

	result, err := h.weather.GetWeather(r.Context(), city, lat, lon)
	if err != nil {
		status, message := statusForError(err)
		logger := observability.LoggerFromContext(r.Context())
		if status >= 500 {
			logger.Error("weather request failed", zap.Int("status", status), zap.Error(err))
		} else {
			logger.Debug("weather request rejected", zap.Int("status", status), zap.Error(err))
		}
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseCoordParam parses an optional coordinate query parameter. Absent means
// nil, not zero.
func parseCoordParam(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// statusForError maps the service error taxonomy to an HTTP status and a
// response message. Unclassified errors become a sanitized 500.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingLocation):
		return http.StatusBadRequest, service.ErrMissingLocation.Error()
	case errors.Is(err, validation.ErrCityEmpty),
		errors.Is(err, validation.ErrCityTooLong),
		errors.Is(err, validation.ErrCityInvalidChars):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, client.ErrCityNotFound):
		return http.StatusNotFound, "City not found"
	case errors.Is(err, client.ErrEmptyForecast):
		return http.StatusInternalServerError, "Upstream returned an empty or null forecast"
	case errors.Is(err, client.ErrRateLimited), errors.Is(err, client.ErrUpstreamFailure):
		return http.StatusServiceUnavailable, "Unable to fetch weather data"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request timed out"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK

	checks := make(map[string]string)
	if h.cachePing != nil {
		if err := h.cachePing(); err == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
			h.logger.Warn("cache health check failed", zap.Error(err))
		}
	}

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "weather-enrichment-service",
		"checks":    checks,
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the flat error body shared by every error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
