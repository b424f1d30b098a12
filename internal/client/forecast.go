package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/observability"
)

// FetchForecast retrieves the raw forecast for the given coordinates. The
// request asks for hourly temperature and weather code, daily min/max and
// weather code, current conditions, and automatic timezone resolution so the
// provider returns a UTC offset alongside its naive local timestamps.
//
// A transport success with a null or empty payload returns ErrEmptyForecast:
// the upstream broke its contract, which is a different failure from being
// unreachable.
func (c *Client) FetchForecast(ctx context.Context, coords models.Coordinates) (*models.RawForecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("hourly", "temperature_2m,weathercode")
	params.Set("daily", "temperature_2m_min,temperature_2m_max,weathercode")
	params.Set("current_weather", "true")
	params.Set("timezone", "auto")

	body, err := c.getJSON(ctx, observability.APIForecast, c.cfg.ForecastURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyForecast
	}

	var forecast models.RawForecast
	if err := json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("parse forecast response: %w", err)
	}
	return &forecast, nil
}
