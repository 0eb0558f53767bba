package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/intelligrit/histmap/internal/model"
)

// WikidataClient fetches entity labels and descriptions from a Wikidata API.
type WikidataClient struct {
	URL        string
	MaxLen     int
	HTTPClient *http.Client
}

// NewWikidataClient creates a client for the given api.php endpoint.
func NewWikidataClient(endpoint string, maxLen int) *WikidataClient {
	return &WikidataClient{
		URL:        endpoint,
		MaxLen:     maxLen,
		HTTPClient: &http.Client{},
	}
}

type wikidataResponse struct {
	Entities map[string]wikidataEntity `json:"entities"`
}

type wikidataEntity struct {
	Labels       map[string]wikidataValue `json:"labels"`
	Descriptions map[string]wikidataValue `json:"descriptions"`
}

type wikidataValue struct {
	Value string `json:"value"`
}

// Entity fetches the English label and description for an entity id such as
// "Q42". A nil record with a nil error means the entity had no description.
func (c *WikidataClient) Entity(ctx context.Context, id string) (*model.HistoricalTextRecord, error) {
	params := url.Values{
		"action":    {"wbgetentities"},
		"ids":       {id},
		"format":    {"json"},
		"languages": {"en"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying wikidata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("wikidata returned status %d", resp.StatusCode)
	}

	var parsed wikidataResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing wikidata response: %w", err)
	}

	for _, ent := range parsed.Entities {
		desc := ent.Descriptions["en"].Value
		if desc == "" {
			continue
		}

		label := ent.Labels["en"].Value
		if label == "" {
			label = "Unknown"
		}

		text := label + ": " + desc
		if c.MaxLen > 0 && len(text) > c.MaxLen {
			text = text[:c.MaxLen]
		}

		return &model.HistoricalTextRecord{
			Status:    model.StatusSuccess,
			Text:      text,
			Source:    "Wikidata",
			SourceURL: "https://www.wikidata.org/wiki/" + id,
		}, nil
	}

	return nil, nil
}
