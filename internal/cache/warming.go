package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/observability"
)

// CityFetcher is implemented by the service layer to build an enriched
// forecast for a city. Used by Warmer to avoid a circular dependency on the
// service package.
type CityFetcher interface {
	GetCityForecast(ctx context.Context, city string) (*models.EnrichedForecast, error)
}

// Warmer prefetches enriched forecasts for a list of cities so the first real
// request after boot hits the cache.
type Warmer struct {
	fetcher CityFetcher
	logger  *zap.Logger
}

// NewWarmer creates a Warmer that uses the given fetcher and logger.
func NewWarmer(fetcher CityFetcher, logger *zap.Logger) *Warmer {
	return &Warmer{fetcher: fetcher, logger: logger}
}

// Warm fetches forecasts for each city concurrently, populating both the
// coords and forecast namespaces via the fetcher. Returns an error if any
// city failed (aggregated).
func (w *Warmer) Warm(ctx context.Context, cities []string) error {
	start := time.Now()
	observability.CacheWarmingTotal.Inc()
	if w.logger != nil {
		w.logger.Info("warming cache", zap.Int("cities", len(cities)))
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(cities))
	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			if _, err := w.fetcher.GetCityForecast(ctx, city); err != nil {
				errCh <- fmt.Errorf("warm %s: %w", city, err)
			}
		}(city)
	}
	wg.Wait()
	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	duration := time.Since(start).Seconds()
	observability.CacheWarmingDurationSeconds.Observe(duration)
	if w.logger != nil {
		w.logger.Info("cache warming complete", zap.Int("cities", len(cities)), zap.Int("errors", len(errs)), zap.Float64("duration_seconds", duration))
	}
	if len(errs) > 0 {
		observability.CacheWarmingErrorsTotal.Inc()
		return fmt.Errorf("cache warming: %v", errs)
	}
	return nil
}

// WarmPeriodic runs an initial Warm, then refreshes at the given interval
// until ctx is done. The interval should stay below the forecast TTL or the
// warmed entries expire between refreshes.
func (w *Warmer) WarmPeriodic(ctx context.Context, cities []string, interval time.Duration) error {
	if err := w.Warm(ctx, cities); err != nil && w.logger != nil {
		w.logger.Warn("initial cache warm failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Warm(ctx, cities); err != nil && w.logger != nil {
				w.logger.Warn("periodic cache warm failed", zap.Error(err))
			}
		}
	}
}
