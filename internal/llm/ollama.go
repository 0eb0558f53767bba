package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// Client calls a local Ollama generate endpoint. It imposes no timeout of
// its own; generation may take many seconds and cancellation comes from the
// caller's context.
type Client struct {
	URL         string
	Model       string
	Temperature float64
	HTTPClient  *http.Client
}

// NewClient creates an Ollama client for the given endpoint and model.
func NewClient(endpoint, model string, temperature float64) *Client {
	return &Client{
		URL:         endpoint,
		Model:       model,
		Temperature: temperature,
		HTTPClient:  &http.Client{},
	}
}

type apiRequest struct {
	Model   string     `json:"model"`
	Prompt  string     `json:"prompt"`
	Stream  bool       `json:"stream"`
	Options apiOptions `json:"options"`
}

type apiOptions struct {
	Temperature float64 `json:"temperature"`
}

type apiResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate submits a prompt and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:   c.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: apiOptions{Temperature: c.Temperature},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return "", fmt.Errorf("ollama not reachable at %s (try: ollama serve): %w", c.URL, err)
		}
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if apiResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", apiResp.Error)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return strings.TrimSpace(apiResp.Response), nil
}
