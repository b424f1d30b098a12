package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/observability"
)

// ReverseGeocode resolves coordinates to a display city name, preferring the
// most specific address field present (city, then town, village, state).
// Returns "" without error when the response carries no usable name; callers
// fall back to showing the raw coordinates.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	body, err := c.getJSON(ctx, observability.APIReverseGeocode, c.cfg.ReverseGeoURL+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}

	var resp models.NominatimResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse reverse geocode response: %w", err)
	}

	for _, name := range []string{resp.Address.City, resp.Address.Town, resp.Address.Village, resp.Address.State} {
		if name != "" {
			return name, nil
		}
	}
	return "", nil
}
