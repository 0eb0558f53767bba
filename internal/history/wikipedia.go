package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/intelligrit/histmap/internal/model"
)

// WikipediaClient fetches article intro extracts from a MediaWiki API.
type WikipediaClient struct {
	URL        string
	MaxLen     int
	HTTPClient *http.Client
}

// NewWikipediaClient creates a client for the given api.php endpoint,
// truncating extracts to maxLen bytes.
func NewWikipediaClient(endpoint string, maxLen int) *WikipediaClient {
	return &WikipediaClient{
		URL:        endpoint,
		MaxLen:     maxLen,
		HTTPClient: &http.Client{},
	}
}

type wikipediaResponse struct {
	Query struct {
		Pages map[string]wikipediaPage `json:"pages"`
	} `json:"query"`
}

type wikipediaPage struct {
	PageID  int64  `json:"pageid"`
	Extract string `json:"extract"`
}

// Extract fetches the intro text for an article title. A nil record with a
// nil error means the title resolved to nothing.
func (c *WikipediaClient) Extract(ctx context.Context, title string) (*model.HistoricalTextRecord, error) {
	params := url.Values{
		"action":    {"query"},
		"format":    {"json"},
		"titles":    {title},
		"prop":      {"extracts"},
		"exintro":   {"1"},
		"redirects": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying wikipedia: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	var parsed wikipediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing wikipedia response: %w", err)
	}

	for _, page := range parsed.Query.Pages {
		if page.Extract == "" {
			continue
		}

		text := stripHTML(page.Extract)
		if c.MaxLen > 0 && len(text) > c.MaxLen {
			text = text[:c.MaxLen]
		}

		rec := &model.HistoricalTextRecord{
			Status: model.StatusSuccess,
			Text:   text,
			Source: "Wikipedia",
		}
		if page.PageID > 0 {
			rec.SourceURL = fmt.Sprintf("https://en.wikipedia.org/?curid=%d", page.PageID)
		}
		return rec, nil
	}

	return nil, nil
}

// stripHTML flattens an HTML fragment to plain text.
func stripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(doc.Text())
}
