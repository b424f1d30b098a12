package cache

import (
	"strconv"
	"strings"
)

// Key prefixes for the two logical namespaces sharing one store.
const (
	coordsPrefix   = "coords:"
	forecastPrefix = "forecast:"
)

// NormalizeCity canonicalizes a city name for use in cache keys: trimmed and
// lowercased. Keys must be stable across calls regardless of input casing.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// CoordsKey builds the cache key for resolved coordinates of a city.
func CoordsKey(city string) string {
	return coordsPrefix + NormalizeCity(city)
}

// ForecastKeyCity builds the forecast cache key for a city-based request.
func ForecastKeyCity(city string) string {
	return forecastPrefix + NormalizeCity(city)
}

// ForecastKeyCoords builds the forecast cache key for a coordinate-based
// request. Floats are formatted with the shortest exact representation so the
// same coordinates always map to the same key.
func ForecastKeyCoords(lat, lon float64) string {
	return forecastPrefix + formatCoord(lat) + ":" + formatCoord(lon)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
