// Package service composes location resolution, forecast fetching, temporal
// normalization, and event classification into enriched weather responses.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/croftbar/weather-enrichment-service/internal/cache"
	"github.com/croftbar/weather-enrichment-service/internal/client"
	"github.com/croftbar/weather-enrichment-service/internal/events"
	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/observability"
	"github.com/croftbar/weather-enrichment-service/internal/temporal"
	"github.com/croftbar/weather-enrichment-service/internal/validation"
)

// ErrMissingLocation is returned when neither a city nor a coordinate pair is
// supplied. The message is the response body text.
var ErrMissingLocation = errors.New("Either city or lat/lon must be provided")

// DefaultForecastTTL is how long enriched forecasts stay cached.
const DefaultForecastTTL = 10 * time.Minute

// dayNameLayout renders "Monday, 02 January 2006" style day headings.
const dayNameLayout = "Monday, 02 January 2006"

// LocationResolver resolves a validated city name to coordinates.
type LocationResolver interface {
	Resolve(ctx context.Context, city string) (models.Coordinates, error)
}

// WeatherService is the request pipeline: validate, resolve, check cache,
// fetch, normalize, classify, cache, return. It holds no per-request state;
// all methods are safe for concurrent use.
type WeatherService struct {
	resolver  LocationResolver
	forecasts client.ForecastFetcher
	reverse   client.ReverseGeocoder
	cache     cache.Cache
	ttl       time.Duration
	now       func() time.Time
}

// New creates a WeatherService. A non-positive ttl falls back to
// DefaultForecastTTL.
func New(resolver LocationResolver, forecasts client.ForecastFetcher, reverse client.ReverseGeocoder, c cache.Cache, ttl time.Duration) *WeatherService {
	if ttl <= 0 {
		ttl = DefaultForecastTTL
	}
	return &WeatherService{
		resolver:  resolver,
		forecasts: forecasts,
		reverse:   reverse,
		cache:     c,
		ttl:       ttl,
		now:       time.Now,
	}
}

// GetWeather returns the enriched forecast for a city name or a coordinate
// pair. When both are supplied the city wins. A cache hit returns the stored
// forecast with no upstream calls at all, including no reverse geocoding.
func (s *WeatherService) GetWeather(ctx context.Context, city string, lat, lon *float64) (*models.EnrichedForecast, error) {
	logger := observability.LoggerFromContext(ctx)

	var (
		coords    models.Coordinates
		knownCity string
		key       string
	)

	switch {
	case strings.TrimSpace(city) != "":
		validated, err := validation.ValidateCity(city)
		if err != nil {
			return nil, err
		}
		coords, err = s.resolver.Resolve(ctx, validated)
		if err != nil {
			return nil, err
		}
		knownCity = validated
		key = cache.ForecastKeyCity(validated)

	case lat != nil && lon != nil:
		coords = models.Coordinates{Latitude: *lat, Longitude: *lon}
		key = cache.ForecastKeyCoords(*lat, *lon)

	default:
		return nil, ErrMissingLocation
	}

	if cached, ok, err := cache.GetJSON[models.EnrichedForecast](ctx, s.cache, key); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get", "forecast").Inc()
		logger.Warn("forecast cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		observability.CacheHitsTotal.WithLabelValues("forecast").Inc()
		observability.RecordWeatherQuery(cityLabel(knownCity, coords))
		logger.Debug("forecast cache hit", zap.String("key", key))
		return &cached, nil
	}

	raw, err := s.forecasts.FetchForecast(ctx, coords)
	if err != nil {
		return nil, err
	}

	enriched := s.enrich(ctx, raw, knownCity, coords, logger)

	if err := cache.SetJSON(ctx, s.cache, key, enriched, s.ttl); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("set", "forecast").Inc()
		logger.Warn("forecast cache write failed", zap.String("key", key), zap.Error(err))
	}

	observability.RecordWeatherQuery(cityLabel(knownCity, coords))
	return enriched, nil
}

// GetCityForecast is the city-only convenience used by cache warming.
func (s *WeatherService) GetCityForecast(ctx context.Context, city string) (*models.EnrichedForecast, error) {
	return s.GetWeather(ctx, city, nil, nil)
}

// enrich derives the normalized and classified fields from a raw forecast.
func (s *WeatherService) enrich(ctx context.Context, raw *models.RawForecast, knownCity string, coords models.Coordinates, logger *zap.Logger) *models.EnrichedForecast {
	norm := temporal.Normalize(raw)
	for _, w := range norm.Warnings {
		observability.NormalizationWarningsTotal.Inc()
		logger.Warn("forecast normalization degraded", zap.String("warning", w))
	}

	enriched := &models.EnrichedForecast{
		RawForecast:  *raw,
		MinTemp:      norm.MinTemp,
		MaxTemp:      norm.MaxTemp,
		MinTempTime:  norm.MinTempTime,
		MaxTempTime:  norm.MaxTempTime,
		TodayEntries: norm.TodayEntries,
		DayName:      s.now().UTC().Format(dayNameLayout),
	}
	if enriched.TodayEntries == nil {
		enriched.TodayEntries = []models.HourlyEntry{}
	}
	if enriched.CurrentWeather != nil && norm.CurrentTimeISO != "" {
		cw := *enriched.CurrentWeather
		cw.Time = norm.CurrentTimeISO
		enriched.CurrentWeather = &cw
	}

	// Day summary: current conditions code paired with the day's max
	// temperature, so a hot afternoon raises heat alerts even on a
	// morning query.
	var currentCode *int
	if raw.CurrentWeather != nil {
		currentCode = raw.CurrentWeather.WeatherCode
	}
	enriched.EventForecast, enriched.Alerts = events.Classify(currentCode, norm.MaxTemp)

	enriched.City = s.displayName(ctx, knownCity, coords, logger)
	return enriched
}

// displayName resolves a human-readable place name. A city supplied by the
// caller is used as-is; otherwise reverse geocoding is attempted best-effort,
// falling back to raw coordinates. Failure here never fails the request.
func (s *WeatherService) displayName(ctx context.Context, knownCity string, coords models.Coordinates, logger *zap.Logger) string {
	if knownCity != "" {
		return knownCity
	}
	name, err := s.reverse.ReverseGeocode(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			zap.Float64("lat", coords.Latitude),
			zap.Float64("lon", coords.Longitude),
			zap.Error(err))
	}
	if name == "" {
		return formatCoord(coords.Latitude) + "," + formatCoord(coords.Longitude)
	}
	return name
}

// cityLabel is the metrics label for a query: the city when known, otherwise
// a lat:lon composite that the tracked-city allow-list folds into "other".
func cityLabel(knownCity string, coords models.Coordinates) string {
	if knownCity != "" {
		return knownCity
	}
	return formatCoord(coords.Latitude) + ":" + formatCoord(coords.Longitude)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
