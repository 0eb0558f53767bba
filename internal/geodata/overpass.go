package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/intelligrit/histmap/internal/model"
)

// DefaultFilters are the tag keys queried when the caller does not narrow
// the discovery. Elements matching any filter are returned.
var DefaultFilters = []string{"historic", "tourism", "heritage"}

// Client queries an Overpass API endpoint for raw geodata records.
type Client struct {
	URL        string
	HTTPClient *http.Client
	Limiter    *RateLimiter
}

// NewClient creates an Overpass client for the given endpoint, rate-limited
// to rps requests per second.
func NewClient(endpoint string, rps float64) *Client {
	return &Client{
		URL:        endpoint,
		HTTPClient: &http.Client{},
		Limiter:    NewRateLimiter(rps),
	}
}

type overpassResponse struct {
	Elements []model.RawGeoRecord `json:"elements"`
}

// Discover fetches all elements within radiusMeters of (lat, lon) carrying
// any of the given tag keys. The response is raw; normalization is the
// caller's concern.
func (c *Client) Discover(ctx context.Context, lat, lon float64, radiusMeters int, filters []string) ([]model.RawGeoRecord, error) {
	if len(filters) == 0 {
		filters = DefaultFilters
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	query := buildQuery(lat, lon, radiusMeters, filters)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying overpass: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("overpass returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing overpass response: %w", err)
	}

	return parsed.Elements, nil
}

// buildQuery renders an Overpass QL query for nodes, ways and relations
// around a point. "out center" makes ways and relations carry a centroid.
func buildQuery(lat, lon float64, radiusMeters int, filters []string) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, f := range filters {
		fmt.Fprintf(&b, "  node[%q](around:%d,%f,%f);\n", f, radiusMeters, lat, lon)
		fmt.Fprintf(&b, "  way[%q](around:%d,%f,%f);\n", f, radiusMeters, lat, lon)
		fmt.Fprintf(&b, "  relation[%q](around:%d,%f,%f);\n", f, radiusMeters, lat, lon)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}
