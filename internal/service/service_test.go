package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/croftbar/weather-enrichment-service/internal/cache"
	"github.com/croftbar/weather-enrichment-service/internal/client"
	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/validation"
)

type fakeResolver struct {
	calls  int
	coords models.Coordinates
	err    error
}

func (r *fakeResolver) Resolve(ctx context.Context, city string) (models.Coordinates, error) {
	r.calls++
	return r.coords, r.err
}

type fakeForecaster struct {
	calls int
	raw   *models.RawForecast
	err   error
}

func (f *fakeForecaster) FetchForecast(ctx context.Context, coords models.Coordinates) (*models.RawForecast, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.raw
	cp.Latitude = coords.Latitude
	cp.Longitude = coords.Longitude
	return &cp, nil
}

type fakeReverser struct {
	calls int
	name  string
	err   error
}

func (r *fakeReverser) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	r.calls++
	return r.name, r.err
}

func tokyoForecast() *models.RawForecast {
	offset := 32400
	code := 1
	return &models.RawForecast{
		CurrentWeather: &models.CurrentWeather{
			Temperature: 22.0,
			Time:        "2025-06-01T09:00",
			WeatherCode: &code,
		},
		Hourly: &models.Hourly{
			Time:        []string{"2025-06-01T00:00", "2025-06-01T01:00"},
			Temperature: []float64{15.0, 16.5},
			WeatherCode: []int{0, 2},
		},
		Daily: &models.Daily{
			Time:        []string{"2025-06-01"},
			TempMin:     []float64{12.0},
			TempMax:     []float64{21.0},
			WeatherCode: []int{1},
		},
		UTCOffsetSeconds: &offset,
	}
}

func newTestService(resolver *fakeResolver, forecaster *fakeForecaster, reverser *fakeReverser) *WeatherService {
	return New(resolver, forecaster, reverser, cache.NewInMemoryCache(), time.Minute)
}

func floatPtr(v float64) *float64 { return &v }

// TestGetWeather_CityLookup verifies the full city pipeline: resolved
// coordinates drive the fetch and the enriched result carries the derived
// fields and the caller's city as display name.
func TestGetWeather_CityLookup(t *testing.T) {
	resolver := &fakeResolver{coords: models.Coordinates{Latitude: 35.0, Longitude: 139.0}}
	forecaster := &fakeForecaster{raw: tokyoForecast()}
	reverser := &fakeReverser{name: "should not be called"}
	svc := newTestService(resolver, forecaster, reverser)

	got, err := svc.GetWeather(context.Background(), "Tokyo", nil, nil)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}

	if got.Latitude != 35.0 || got.Longitude != 139.0 {
		t.Errorf("coordinates = (%v, %v), want (35.0, 139.0)", got.Latitude, got.Longitude)
	}
	if got.CurrentWeather == nil || got.CurrentWeather.Temperature != 22.0 {
		t.Errorf("CurrentWeather = %+v, want temperature 22.0", got.CurrentWeather)
	}
	if got.City != "Tokyo" {
		t.Errorf("City = %q, want Tokyo", got.City)
	}
	if len(got.TodayEntries) != 2 {
		t.Errorf("TodayEntries length = %d, want 2", len(got.TodayEntries))
	}
	if got.MaxTemp == nil || *got.MaxTemp != 16.5 {
		t.Errorf("MaxTemp = %v, want 16.5", got.MaxTemp)
	}
	if got.EventForecast != "Mainly clear" {
		t.Errorf("EventForecast = %q, want Mainly clear", got.EventForecast)
	}
	if len(got.Alerts) != 1 || got.Alerts[0] != "No severe events detected" {
		t.Errorf("Alerts = %v, want the no-events default", got.Alerts)
	}
	if got.DayName == "" {
		t.Error("DayName is empty")
	}
	if reverser.calls != 0 {
		t.Errorf("reverse geocoder called %d times, want 0 when city is known", reverser.calls)
	}
}

// TestGetWeather_CacheHitSkipsUpstream verifies a repeat request within TTL
// performs zero upstream calls, including no reverse geocoding.
func TestGetWeather_CacheHitSkipsUpstream(t *testing.T) {
	resolver := &fakeResolver{coords: models.Coordinates{Latitude: 35, Longitude: 139}}
	forecaster := &fakeForecaster{raw: tokyoForecast()}
	reverser := &fakeReverser{}
	svc := newTestService(resolver, forecaster, reverser)

	first, err := svc.GetWeather(context.Background(), "Tokyo", nil, nil)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	second, err := svc.GetWeather(context.Background(), "Tokyo", nil, nil)
	if err != nil {
		t.Fatalf("GetWeather() second call error = %v", err)
	}

	if forecaster.calls != 1 {
		t.Errorf("forecast fetched %d times, want 1", forecaster.calls)
	}
	if reverser.calls != 0 {
		t.Errorf("reverse geocoder called %d times, want 0", reverser.calls)
	}
	if second.City != first.City || len(second.TodayEntries) != len(first.TodayEntries) {
		t.Errorf("cached result %+v differs from original %+v", second, first)
	}
}

// TestGetWeather_CityWinsOverCoords verifies the city path is taken when both
// a city and coordinates are supplied.
func TestGetWeather_CityWinsOverCoords(t *testing.T) {
	resolver := &fakeResolver{coords: models.Coordinates{Latitude: 35, Longitude: 139}}
	forecaster := &fakeForecaster{raw: tokyoForecast()}
	svc := newTestService(resolver, forecaster, &fakeReverser{})

	got, err := svc.GetWeather(context.Background(), "Tokyo", floatPtr(1.0), floatPtr(2.0))
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if got.Latitude != 35 || got.Longitude != 139 {
		t.Errorf("coordinates = (%v, %v), want resolver's (35, 139)", got.Latitude, got.Longitude)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver called %d times, want 1", resolver.calls)
	}
}

// TestGetWeather_CoordsUseReverseGeocode verifies a coordinate query resolves
// its display name via reverse geocoding.
func TestGetWeather_CoordsUseReverseGeocode(t *testing.T) {
	forecaster := &fakeForecaster{raw: tokyoForecast()}
	reverser := &fakeReverser{name: "Yokohama"}
	svc := newTestService(&fakeResolver{}, forecaster, reverser)

	got, err := svc.GetWeather(context.Background(), "", floatPtr(35.44), floatPtr(139.64))
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if got.City != "Yokohama" {
		t.Errorf("City = %q, want Yokohama", got.City)
	}
	if reverser.calls != 1 {
		t.Errorf("reverse geocoder called %d times, want 1", reverser.calls)
	}
}

// TestGetWeather_ReverseGeocodeFailureFallsBack verifies a reverse-geocoding
// failure degrades to a coordinate display name instead of failing the request.
func TestGetWeather_ReverseGeocodeFailureFallsBack(t *testing.T) {
	forecaster := &fakeForecaster{raw: tokyoForecast()}
	reverser := &fakeReverser{err: client.ErrUpstreamFailure}
	svc := newTestService(&fakeResolver{}, forecaster, reverser)

	got, err := svc.GetWeather(context.Background(), "", floatPtr(35.5), floatPtr(139.25))
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if got.City != "35.5,139.25" {
		t.Errorf("City = %q, want coordinate fallback 35.5,139.25", got.City)
	}
}

// TestGetWeather_MissingLocation verifies the missing-parameters sentinel.
func TestGetWeather_MissingLocation(t *testing.T) {
	svc := newTestService(&fakeResolver{}, &fakeForecaster{raw: tokyoForecast()}, &fakeReverser{})

	for _, tc := range []struct {
		name     string
		city     string
		lat, lon *float64
	}{
		{name: "nothing", city: ""},
		{name: "lat only", lat: floatPtr(35)},
		{name: "lon only", lon: floatPtr(139)},
		{name: "whitespace city", city: "   "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetWeather(context.Background(), tc.city, tc.lat, tc.lon)
			if !errors.Is(err, ErrMissingLocation) {
				t.Errorf("GetWeather() error = %v, want ErrMissingLocation", err)
			}
		})
	}
}

// TestGetWeather_InvalidCity verifies validation failures surface before any
// upstream call.
func TestGetWeather_InvalidCity(t *testing.T) {
	resolver := &fakeResolver{}
	svc := newTestService(resolver, &fakeForecaster{raw: tokyoForecast()}, &fakeReverser{})

	_, err := svc.GetWeather(context.Background(), "tokyo&count=100", nil, nil)
	if !errors.Is(err, validation.ErrCityInvalidChars) {
		t.Errorf("GetWeather() error = %v, want ErrCityInvalidChars", err)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver called %d times, want 0", resolver.calls)
	}
}

// TestGetWeather_CityNotFound verifies geocoding misses pass through.
func TestGetWeather_CityNotFound(t *testing.T) {
	resolver := &fakeResolver{err: client.ErrCityNotFound}
	svc := newTestService(resolver, &fakeForecaster{raw: tokyoForecast()}, &fakeReverser{})

	_, err := svc.GetWeather(context.Background(), "InvalidCity", nil, nil)
	if !errors.Is(err, client.ErrCityNotFound) {
		t.Errorf("GetWeather() error = %v, want ErrCityNotFound", err)
	}
}

// TestGetWeather_EmptyForecast verifies a null upstream payload passes through
// as ErrEmptyForecast and is not cached.
func TestGetWeather_EmptyForecast(t *testing.T) {
	resolver := &fakeResolver{coords: models.Coordinates{Latitude: 35, Longitude: 139}}
	forecaster := &fakeForecaster{err: client.ErrEmptyForecast}
	svc := newTestService(resolver, forecaster, &fakeReverser{})

	for i := 0; i < 2; i++ {
		_, err := svc.GetWeather(context.Background(), "Tokyo", nil, nil)
		if !errors.Is(err, client.ErrEmptyForecast) {
			t.Fatalf("GetWeather() error = %v, want ErrEmptyForecast", err)
		}
	}
	if forecaster.calls != 2 {
		t.Errorf("forecast fetched %d times, want 2 (failures must not be cached)", forecaster.calls)
	}
}

// TestGetWeather_DaySummaryUsesMaxTemp verifies the day-level classification
// pairs the current weather code with the day's max temperature.
func TestGetWeather_DaySummaryUsesMaxTemp(t *testing.T) {
	raw := tokyoForecast()
	code := 95
	raw.CurrentWeather.WeatherCode = &code
	raw.CurrentWeather.Temperature = 25.0
	raw.Hourly.Temperature = []float64{30.0, 39.0} // max 39 -> severe heat tier
	forecaster := &fakeForecaster{raw: raw}
	svc := newTestService(&fakeResolver{coords: models.Coordinates{Latitude: 35, Longitude: 139}}, forecaster, &fakeReverser{})

	got, err := svc.GetWeather(context.Background(), "Tokyo", nil, nil)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if got.EventForecast != "Thunderstorm" {
		t.Errorf("EventForecast = %q, want Thunderstorm", got.EventForecast)
	}
	wantStorm, wantHeat := false, false
	for _, a := range got.Alerts {
		if a == "Severe storm risk" {
			wantStorm = true
		}
		if a == "Severe heat" {
			wantHeat = true
		}
	}
	if !wantStorm || !wantHeat {
		t.Errorf("Alerts = %v, want storm and severe heat alerts", got.Alerts)
	}
}

// TestGetWeather_NoHourlyData verifies a forecast without an hourly series
// still enriches, with an empty (non-nil) todayEntries slice.
func TestGetWeather_NoHourlyData(t *testing.T) {
	raw := tokyoForecast()
	raw.Hourly = nil
	forecaster := &fakeForecaster{raw: raw}
	svc := newTestService(&fakeResolver{coords: models.Coordinates{Latitude: 35, Longitude: 139}}, forecaster, &fakeReverser{})

	got, err := svc.GetWeather(context.Background(), "Tokyo", nil, nil)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if got.TodayEntries == nil {
		t.Error("TodayEntries is nil, want empty slice")
	}
	if len(got.TodayEntries) != 0 {
		t.Errorf("TodayEntries length = %d, want 0", len(got.TodayEntries))
	}
	// Extrema fall back to the daily series.
	if got.MinTemp == nil || *got.MinTemp != 12.0 || got.MaxTemp == nil || *got.MaxTemp != 21.0 {
		t.Errorf("extrema = (%v, %v), want daily fallback (12.0, 21.0)", got.MinTemp, got.MaxTemp)
	}
}
