package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/intelligrit/histmap/internal/model"
)

// NominatimClient resolves free-text place names to coordinates.
type NominatimClient struct {
	URL        string
	HTTPClient *http.Client
	Limiter    *RateLimiter
}

// NewNominatimClient creates a geocoding client for the given endpoint.
func NewNominatimClient(endpoint string, rps float64) *NominatimClient {
	return &NominatimClient{
		URL:        endpoint,
		HTTPClient: &http.Client{},
		Limiter:    NewRateLimiter(rps),
	}
}

// nominatimResult mirrors one entry of the Nominatim search response.
// Coordinates arrive as strings on the wire.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns the best match for a place name, or nil when nothing
// matched.
func (c *NominatimClient) Search(ctx context.Context, name string) (*model.PlaceMatch, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	params := url.Values{
		"q":      {name},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "histmap/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("parsing nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", results[0].Lon, err)
	}

	return &model.PlaceMatch{
		Lat:         lat,
		Lon:         lon,
		DisplayName: results[0].DisplayName,
	}, nil
}
