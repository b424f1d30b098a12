package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/croftbar/weather-enrichment-service/internal/models"
)

// TestInMemoryCache_GetSet verifies that Set stores values and Get retrieves
// them correctly.
func TestInMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	if err := c.Set(ctx, "coords:tokyo", []byte(`{"latitude":35,"longitude":139}`), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(ctx, "coords:tokyo")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if string(got) != `{"latitude":35,"longitude":139}` {
		t.Errorf("Get() = %s, want stored value", got)
	}
}

// TestInMemoryCache_Get_Miss verifies that Get returns ok=false when the
// requested key does not exist.
func TestInMemoryCache_Get_Miss(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	_, ok, err := c.Get(ctx, "forecast:nonexistent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want false for miss")
	}
}

// TestInMemoryCache_Get_Expired verifies that Get returns ok=false for expired
// entries and removes them on access.
func TestInMemoryCache_Get_Expired(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	if err := c.Set(ctx, "forecast:tokyo", []byte("{}"), 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, "forecast:tokyo")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want false for expired entry")
	}
}

// TestInMemoryCache_Overwrite verifies insert-or-update semantics: a second
// Set for the same key replaces the value.
func TestInMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	_ = c.Set(ctx, "coords:paris", []byte("first"), time.Minute)
	_ = c.Set(ctx, "coords:paris", []byte("second"), time.Minute)

	got, ok, _ := c.Get(ctx, "coords:paris")
	if !ok || string(got) != "second" {
		t.Errorf("Get() = %q, ok=%v, want second/true", got, ok)
	}
}

// TestInMemoryCache_ConcurrentAccess verifies the store tolerates concurrent
// readers and writers on overlapping keys (run with -race).
func TestInMemoryCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, "forecast:tokyo", []byte("payload"), time.Minute)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _, _ = c.Get(ctx, "forecast:tokyo")
			}
		}()
	}
	wg.Wait()

	got, ok, err := c.Get(ctx, "forecast:tokyo")
	if err != nil || !ok || string(got) != "payload" {
		t.Errorf("Get() after concurrent access = %q, ok=%v, err=%v", got, ok, err)
	}
}

// TestGetJSON_ReturnsIndependentSnapshot verifies that two reads of the same
// cached value decode into independent objects: mutating one reader's copy
// never leaks into another's.
func TestGetJSON_ReturnsIndependentSnapshot(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	stored := models.EnrichedForecast{
		TodayEntries: []models.HourlyEntry{{TimeISO: "2025-06-01T00:00:00Z", Temperature: 15}},
		Alerts:       []string{"No severe events detected"},
	}
	if err := SetJSON(ctx, c, "forecast:tokyo", stored, time.Minute); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}

	first, ok, err := GetJSON[models.EnrichedForecast](ctx, c, "forecast:tokyo")
	if err != nil || !ok {
		t.Fatalf("GetJSON() = ok=%v, err=%v", ok, err)
	}
	first.TodayEntries[0].Temperature = -99
	first.Alerts[0] = "mutated"

	second, ok, err := GetJSON[models.EnrichedForecast](ctx, c, "forecast:tokyo")
	if err != nil || !ok {
		t.Fatalf("GetJSON() second read = ok=%v, err=%v", ok, err)
	}
	if second.TodayEntries[0].Temperature != 15 {
		t.Errorf("second read temperature = %v, want 15 (snapshot mutated)", second.TodayEntries[0].Temperature)
	}
	if second.Alerts[0] != "No severe events detected" {
		t.Errorf("second read alert = %q, want original", second.Alerts[0])
	}
}

// TestGetJSON_Miss verifies a miss propagates as ok=false without error.
func TestGetJSON_Miss(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	_, ok, err := GetJSON[models.Coordinates](ctx, c, "coords:nowhere")
	if err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if ok {
		t.Error("GetJSON() ok = true, want false")
	}
}
