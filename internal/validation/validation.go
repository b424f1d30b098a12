package validation

import (
	"errors"
	"strings"
)

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooLong is returned when the city length exceeds the maximum.
var ErrCityTooLong = errors.New("city name too long")

// ErrCityInvalidChars is returned when the city contains disallowed characters.
var ErrCityInvalidChars = errors.New("city name contains invalid characters")

// maxCityLen bounds city names well above any real place name.
const maxCityLen = 128

// ValidateCity trims the input and restricts it to letters, spaces, and
// hyphens. Returns the trimmed string or an error suitable for a 400
// response. Validation happens before any network call; normalization
// (lowercasing for cache keys) is left to the cache layer.
func ValidateCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrCityEmpty
	}
	if len(s) > maxCityLen {
		return "", ErrCityTooLong
	}
	for _, r := range s {
		if !isAllowedCityRune(r) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

// isAllowedCityRune returns true for ASCII letters, the plain space, and
// hyphen. Other whitespace (tabs, newlines) is rejected: cache keys derived
// from the city must stay memcached-safe, and the key sanitizer only handles
// U+0020.
func isAllowedCityRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r == ' ' || r == '-':
		return true
	}
	return false
}
