package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/croftbar/weather-enrichment-service/internal/cache"
	"github.com/croftbar/weather-enrichment-service/internal/client"
	"github.com/croftbar/weather-enrichment-service/internal/models"
)

type countingGeocoder struct {
	calls  int
	result models.GeoResult
	err    error
}

func (g *countingGeocoder) GeocodeCity(ctx context.Context, name string) (models.GeoResult, error) {
	g.calls++
	if g.err != nil {
		return models.GeoResult{}, g.err
	}
	return g.result, nil
}

// failingCache errors on every operation so degradation paths can be tested.
type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache down")
}

// TestResolve_CachesCoordinates verifies a second resolution for the same
// city is served from cache without another upstream call, and that city
// names differing only in case or whitespace share an entry.
func TestResolve_CachesCoordinates(t *testing.T) {
	geo := &countingGeocoder{result: models.GeoResult{Name: "Tokyo", Latitude: 35.6895, Longitude: 139.6917}}
	r := NewResolver(geo, cache.NewInMemoryCache(), time.Minute)

	first, err := r.Resolve(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if first.Latitude != 35.6895 || first.Longitude != 139.6917 {
		t.Errorf("Resolve() = %+v, want geocoder coordinates", first)
	}

	for _, variant := range []string{"Tokyo", "tokyo", "  TOKYO  "} {
		got, err := r.Resolve(context.Background(), variant)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", variant, err)
		}
		if got != first {
			t.Errorf("Resolve(%q) = %+v, want %+v", variant, got, first)
		}
	}

	if geo.calls != 1 {
		t.Errorf("geocoder called %d times, want 1", geo.calls)
	}
}

// TestResolve_ExpiredEntryRefetches verifies an expired cache entry triggers a
// fresh upstream call.
func TestResolve_ExpiredEntryRefetches(t *testing.T) {
	geo := &countingGeocoder{result: models.GeoResult{Latitude: 1, Longitude: 2}}
	r := NewResolver(geo, cache.NewInMemoryCache(), time.Nanosecond)

	if _, err := r.Resolve(context.Background(), "Oslo"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := r.Resolve(context.Background(), "Oslo"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if geo.calls != 2 {
		t.Errorf("geocoder called %d times, want 2", geo.calls)
	}
}

// TestResolve_NotFoundPassesThrough verifies geocoding failures surface
// unwrapped enough for errors.Is and are not cached.
func TestResolve_NotFoundPassesThrough(t *testing.T) {
	geo := &countingGeocoder{err: client.ErrCityNotFound}
	r := NewResolver(geo, cache.NewInMemoryCache(), time.Minute)

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), "Atlantis")
		if !errors.Is(err, client.ErrCityNotFound) {
			t.Fatalf("Resolve() error = %v, want ErrCityNotFound", err)
		}
	}

	if geo.calls != 2 {
		t.Errorf("geocoder called %d times, want 2 (failures must not be cached)", geo.calls)
	}
}

// TestResolve_CacheFailureDegrades verifies a broken cache backend degrades to
// per-call upstream lookups instead of failing resolution.
func TestResolve_CacheFailureDegrades(t *testing.T) {
	geo := &countingGeocoder{result: models.GeoResult{Latitude: 48.85, Longitude: 2.35}}
	r := NewResolver(geo, failingCache{}, time.Minute)

	got, err := r.Resolve(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Latitude != 48.85 {
		t.Errorf("Resolve() = %+v, want upstream coordinates", got)
	}
	if geo.calls != 1 {
		t.Errorf("geocoder called %d times, want 1", geo.calls)
	}
}
