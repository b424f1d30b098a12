package models

// Coordinates is a resolved geographic position. Immutable value: produced by
// the location resolver, consumed by the forecast fetcher.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoResult is a single geocoding match from the Open-Meteo geocoding API.
type GeoResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1"`
}

// GeoResponse is the Open-Meteo geocoding search payload.
type GeoResponse struct {
	Results []GeoResult `json:"results"`
}

// NominatimResponse is the reverse-geocoding payload shape. Any of the address
// fields may be absent; callers pick the most specific one present.
type NominatimResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
}

// CurrentWeather holds the provider's current-conditions block. Time is a naive
// local timestamp until the normalizer attaches the UTC offset.
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	Time          string  `json:"time"`
	WeatherCode   *int    `json:"weathercode,omitempty"`
}

// Hourly holds the provider's hourly series as parallel, same-indexed arrays.
// Arrays may be unequal length; consumers iterate only to the shortest. An
// absent WeatherCode array means every per-entry code is absent, not zero.
type Hourly struct {
	Time        []string  `json:"time"`
	Temperature []float64 `json:"temperature_2m"`
	WeatherCode []int     `json:"weathercode"`
}

// Daily holds the provider's daily series. By provider convention the first
// entry is "today".
type Daily struct {
	Time        []string  `json:"time"`
	TempMin     []float64 `json:"temperature_2m_min"`
	TempMax     []float64 `json:"temperature_2m_max"`
	WeatherCode []int     `json:"weathercode"`
}

// RawForecast is the provider-shaped forecast payload. UTCOffsetSeconds is set
// when the forecast is requested with automatic timezone resolution; nil means
// the offset is unknown and treated as zero.
type RawForecast struct {
	Latitude             float64         `json:"latitude"`
	Longitude            float64         `json:"longitude"`
	CurrentWeather       *CurrentWeather `json:"current_weather,omitempty"`
	Hourly               *Hourly         `json:"hourly,omitempty"`
	Daily                *Daily          `json:"daily,omitempty"`
	UTCOffsetSeconds     *int            `json:"utc_offset_seconds,omitempty"`
	Timezone             string          `json:"timezone,omitempty"`
	TimezoneAbbreviation string          `json:"timezone_abbreviation,omitempty"`
}

// HourlyEntry is one normalized hour of today's forecast. TimeISO carries the
// UTC offset; DisplayTime is a human-readable local clock time.
type HourlyEntry struct {
	TimeISO     string  `json:"timeIso"`
	DisplayTime string  `json:"displayTime"`
	Temperature float64 `json:"temperature"`
	WeatherCode *int    `json:"weatherCode,omitempty"`
	Event       string  `json:"eventLabel"`
}

// EnrichedForecast is the RawForecast plus derived fields. Created once per
// cache miss and never mutated after caching; cached readers decode a fresh
// snapshot.
type EnrichedForecast struct {
	RawForecast

	MinTemp       *float64      `json:"minTemp,omitempty"`
	MaxTemp       *float64      `json:"maxTemp,omitempty"`
	MinTempTime   *string       `json:"minTempTime,omitempty"`
	MaxTempTime   *string       `json:"maxTempTime,omitempty"`
	TodayEntries  []HourlyEntry `json:"todayEntries"`
	DayName       string        `json:"dayName"`
	City          string        `json:"resolvedCityName,omitempty"`
	EventForecast string        `json:"eventForecast"`
	Alerts        []string      `json:"alerts"`
}
