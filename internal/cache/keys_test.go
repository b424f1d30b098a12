package cache

import "testing"

// TestCoordsKey verifies the coords namespace key format and normalization.
func TestCoordsKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "tokyo", want: "coords:tokyo"},
		{name: "mixed case", in: "ToKyO", want: "coords:tokyo"},
		{name: "padded", in: "  London ", want: "coords:london"},
		{name: "multi word", in: "New York", want: "coords:new york"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoordsKey(tc.in); got != tc.want {
				t.Errorf("CoordsKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// TestForecastKeyCity verifies the forecast namespace key for city requests.
func TestForecastKeyCity(t *testing.T) {
	if got := ForecastKeyCity(" Tokyo "); got != "forecast:tokyo" {
		t.Errorf("ForecastKeyCity = %q, want forecast:tokyo", got)
	}
}

// TestForecastKeyCoords verifies coordinate keys are stable and exact.
func TestForecastKeyCoords(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{name: "whole numbers", lat: 35, lon: 139, want: "forecast:35:139"},
		{name: "fractions", lat: 35.6895, lon: 139.6917, want: "forecast:35.6895:139.6917"},
		{name: "negative", lat: -33.87, lon: 151.21, want: "forecast:-33.87:151.21"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ForecastKeyCoords(tc.lat, tc.lon); got != tc.want {
				t.Errorf("ForecastKeyCoords(%v, %v) = %q, want %q", tc.lat, tc.lon, got, tc.want)
			}
			// Same inputs, same key: reproducibility across calls.
			if again := ForecastKeyCoords(tc.lat, tc.lon); again != tc.want {
				t.Errorf("second call = %q, want %q", again, tc.want)
			}
		})
	}
}
