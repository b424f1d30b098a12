package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/croftbar/weather-enrichment-service/internal/models"
	"github.com/croftbar/weather-enrichment-service/internal/observability"
)

// GeocodeCity resolves a city name to its best geocoding match (count=1).
// Returns ErrCityNotFound when the upstream has no results for the name.
func (c *Client) GeocodeCity(ctx context.Context, name string) (models.GeoResult, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	body, err := c.getJSON(ctx, observability.APIGeocode, c.cfg.GeoURL+"?"+params.Encode())
	if err != nil {
		return models.GeoResult{}, fmt.Errorf("geocode %q: %w", name, err)
	}

	var geo models.GeoResponse
	if err := json.Unmarshal(body, &geo); err != nil {
		return models.GeoResult{}, fmt.Errorf("parse geocode response: %w", err)
	}
	if len(geo.Results) == 0 {
		return models.GeoResult{}, fmt.Errorf("%w: %s", ErrCityNotFound, name)
	}
	return geo.Results[0], nil
}
