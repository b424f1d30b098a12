package events

import "fmt"

// weatherCodeLabels maps WMO weather interpretation codes to readable phrases.
var weatherCodeLabels = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Rain showers",
	81: "Heavy rain showers",
	82: "Violent rain showers",
	85: "Snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Severe thunderstorm",
}

// Severity alert messages. AlertNone is returned alone when nothing fired.
const (
	AlertStorm         = "Severe storm risk"
	AlertBlizzard      = "Blizzard risk"
	AlertPrecipitation = "Heavy precipitation / flood risk"
	AlertFog           = "Dense fog"
	AlertNone          = "No severe events detected"
)

// Classify maps a WMO weather code and a temperature to a human-readable label
// and a list of severity alerts. Pure and deterministic: no I/O, same inputs
// always yield the same output, and alerts never contain duplicates.
//
// A nil code yields label "Unknown"; a present but unmapped code yields
// "Code {n}". The temperature may be a current reading (per-hour
// classification) or the day's maximum (day-level summary); heat and cold
// thresholds cascade top-down so at most one tier of each fires.
func Classify(weatherCode *int, temperature *float64) (label string, alerts []string) {
	switch {
	case weatherCode == nil:
		label = "Unknown"
	default:
		var ok bool
		if label, ok = weatherCodeLabels[*weatherCode]; !ok {
			label = fmt.Sprintf("Code %d", *weatherCode)
		}
	}

	if weatherCode != nil {
		switch *weatherCode {
		case 95, 96, 99:
			alerts = append(alerts, AlertStorm)
		}
		switch *weatherCode {
		case 71, 73, 75, 77:
			alerts = append(alerts, AlertBlizzard)
		}
		switch *weatherCode {
		case 63, 65, 81, 82:
			alerts = append(alerts, AlertPrecipitation)
		}
		switch *weatherCode {
		case 45, 48:
			alerts = append(alerts, AlertFog)
		}
	}

	if temperature != nil {
		t := *temperature
		switch {
		case t >= 42:
			alerts = append(alerts, "Extreme heat")
		case t >= 38:
			alerts = append(alerts, "Severe heat")
		case t >= 35:
			alerts = append(alerts, "Heatwave")
		}
		switch {
		case t <= -40:
			alerts = append(alerts, "Extreme polar cold")
		case t <= -30:
			alerts = append(alerts, "Extreme cold")
		case t <= -20:
			alerts = append(alerts, "Severe cold")
		case t <= -5:
			alerts = append(alerts, "Very cold")
		case t <= 0:
			alerts = append(alerts, "Freezing")
		}
	}

	if len(alerts) == 0 {
		return label, []string{AlertNone}
	}
	return label, dedupe(alerts)
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, a := range in {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
