package temporal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/croftbar/weather-enrichment-service/internal/events"
	"github.com/croftbar/weather-enrichment-service/internal/models"
)

// fallbackHours is how many leading hourly entries stand in for "today" when
// no hourly timestamp matches the first daily date.
const fallbackHours = 24

// naiveLayouts are the timestamp layouts the forecast provider emits.
// Timestamps carry no offset; the UTC offset is attached during normalization.
var naiveLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Result holds the derived temporal fields for an enriched forecast.
type Result struct {
	TodayEntries []models.HourlyEntry
	MinTemp      *float64
	MaxTemp      *float64
	MinTempTime  *string
	MaxTempTime  *string

	// CurrentTimeISO is the offset-aware current-conditions time, or "" when
	// the raw payload has none (or it failed to parse).
	CurrentTimeISO string

	// Warnings records non-fatal degradations (fallback slices, parse
	// failures). Logged by the caller, never surfaced as request errors.
	Warnings []string
}

// timedEntry pairs an hourly entry with its parsed instant for sorting.
type timedEntry struct {
	at    time.Time
	entry models.HourlyEntry
}

// Normalize attaches the payload's UTC offset to its naive timestamps,
// partitions the hourly series into today's entries (falling back to the
// first 24 hours when nothing matches today's date), and computes the day's
// temperature extrema. Malformed timestamps never fail normalization: the
// hourly slice degrades to empty and the extrema fall back to the daily
// series.
func Normalize(raw *models.RawForecast) Result {
	var res Result

	offset := 0
	if raw.UTCOffsetSeconds != nil {
		offset = *raw.UTCOffsetSeconds
	}
	zone := time.FixedZone("", offset)

	entries, warnings := buildTodayEntries(raw, zone)
	res.Warnings = warnings

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.Before(entries[j].at)
	})

	res.TodayEntries = make([]models.HourlyEntry, 0, len(entries))
	for _, e := range entries {
		res.TodayEntries = append(res.TodayEntries, e.entry)
	}

	if len(entries) > 0 {
		// Strict comparisons keep the first occurrence on ties.
		minIdx, maxIdx := 0, 0
		for i, e := range entries {
			if e.entry.Temperature < entries[minIdx].entry.Temperature {
				minIdx = i
			}
			if e.entry.Temperature > entries[maxIdx].entry.Temperature {
				maxIdx = i
			}
		}
		minT, maxT := entries[minIdx].entry.Temperature, entries[maxIdx].entry.Temperature
		minTime, maxTime := entries[minIdx].entry.TimeISO, entries[maxIdx].entry.TimeISO
		res.MinTemp, res.MaxTemp = &minT, &maxT
		res.MinTempTime, res.MaxTempTime = &minTime, &maxTime
	} else if raw.Daily != nil {
		if len(raw.Daily.TempMin) > 0 {
			v := raw.Daily.TempMin[0]
			res.MinTemp = &v
		}
		if len(raw.Daily.TempMax) > 0 {
			v := raw.Daily.TempMax[0]
			res.MaxTemp = &v
		}
	}

	if raw.CurrentWeather != nil && raw.CurrentWeather.Time != "" {
		if at, err := parseNaive(raw.CurrentWeather.Time, zone); err == nil {
			res.CurrentTimeISO = at.Format(time.RFC3339)
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("current time %q did not parse", raw.CurrentWeather.Time))
		}
	}

	return res
}

// buildTodayEntries selects hourly indices whose timestamp starts with today's
// date (daily.time[0]); when none match it takes the first 24 hours instead.
// A malformed timestamp in either pass discards the whole slice and reports a
// warning rather than an error.
func buildTodayEntries(raw *models.RawForecast, zone *time.Location) ([]timedEntry, []string) {
	if raw.Hourly == nil {
		return nil, nil
	}
	times, temps := raw.Hourly.Time, raw.Hourly.Temperature
	n := len(times)
	if len(temps) < n {
		n = len(temps)
	}
	if n == 0 {
		return nil, nil
	}

	todayDate := ""
	if raw.Daily != nil && len(raw.Daily.Time) > 0 {
		todayDate = raw.Daily.Time[0]
	}

	var entries []timedEntry
	if todayDate != "" {
		for i := 0; i < n; i++ {
			if times[i] == "" || !strings.HasPrefix(times[i], todayDate) {
				continue
			}
			e, err := makeEntry(raw.Hourly, i, zone)
			if err != nil {
				return nil, []string{fmt.Sprintf("hourly timestamp %q did not parse; dropping today's entries", times[i])}
			}
			entries = append(entries, e)
		}
	}

	if len(entries) > 0 {
		return entries, nil
	}

	limit := n
	if limit > fallbackHours {
		limit = fallbackHours
	}
	for i := 0; i < limit; i++ {
		if times[i] == "" {
			continue
		}
		e, err := makeEntry(raw.Hourly, i, zone)
		if err != nil {
			return nil, []string{fmt.Sprintf("hourly timestamp %q did not parse; dropping today's entries", times[i])}
		}
		entries = append(entries, e)
	}
	if len(entries) > 0 {
		return entries, []string{fmt.Sprintf("no hourly entries matched today's date; using first %d hours as fallback", len(entries))}
	}
	return nil, nil
}

// makeEntry builds the normalized entry for hourly index i. The weather code
// is absent, not zero, when the code array is shorter than i.
func makeEntry(hourly *models.Hourly, i int, zone *time.Location) (timedEntry, error) {
	at, err := parseNaive(hourly.Time[i], zone)
	if err != nil {
		return timedEntry{}, err
	}

	entry := models.HourlyEntry{
		TimeISO:     at.Format(time.RFC3339),
		DisplayTime: at.Format("3:04 PM"),
		Temperature: hourly.Temperature[i],
	}
	if len(hourly.WeatherCode) > i {
		code := hourly.WeatherCode[i]
		entry.WeatherCode = &code
	}
	entry.Event, _ = events.Classify(entry.WeatherCode, &entry.Temperature)

	return timedEntry{at: at, entry: entry}, nil
}

// parseNaive parses a provider timestamp in the given fixed-offset zone.
func parseNaive(s string, zone *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range naiveLayouts {
		at, err := time.ParseInLocation(layout, s, zone)
		if err == nil {
			return at, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
