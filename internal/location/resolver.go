// Package location resolves city names to coordinates, caching results so
// repeated queries for the same city skip the geocoding upstream.
package location

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/croftbar/weather-enrichment-service/internal/cache"
	"github.com/croftbar/weather-enrichment-service/internal/client"
	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/observability"
)

// DefaultTTL is how long resolved coordinates stay cached. Coordinates for a
// city essentially never change, so this is generous relative to forecasts.
const DefaultTTL = 30 * time.Minute

// Resolver turns city names into coordinates via the geocoding upstream,
// with a cache in front keyed by normalized city name.
type Resolver struct {
	geocoder client.Geocoder
	cache    cache.Cache
	ttl      time.Duration
}

// NewResolver creates a Resolver. A non-positive ttl falls back to DefaultTTL.
func NewResolver(geocoder client.Geocoder, c cache.Cache, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{geocoder: geocoder, cache: c, ttl: ttl}
}

// Resolve returns the coordinates for a city, consulting the cache before the
// geocoding upstream. Cache failures degrade to an upstream call; they never
// fail the resolution.
func (r *Resolver) Resolve(ctx context.Context, city string) (models.Coordinates, error) {
	logger := observability.LoggerFromContext(ctx)
	key := cache.CoordsKey(city)

	coords, ok, err := cache.GetJSON[models.Coordinates](ctx, r.cache, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get", "coords").Inc()
		logger.Warn("coords cache read failed", zap.String("city", city), zap.Error(err))
	}
	if ok {
		observability.CacheHitsTotal.WithLabelValues("coords").Inc()
		logger.Debug("coords cache hit", zap.String("city", city))
		return coords, nil
	}

	result, err := r.geocoder.GeocodeCity(ctx, city)
	if err != nil {
		return models.Coordinates{}, err
	}
	coords = models.Coordinates{Latitude: result.Latitude, Longitude: result.Longitude}

	if err := cache.SetJSON(ctx, r.cache, key, coords, r.ttl); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("set", "coords").Inc()
		logger.Warn("coords cache write failed", zap.String("city", city), zap.Error(err))
	}

	logger.Debug("city resolved",
		zap.String("city", city),
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude))
	return coords, nil
}
