package stockimage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"json2video/config"
)

// Searcher finds an image URL for a text query. An empty URL means nothing matched.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Pexels searches https://www.pexels.com and returns the original-size URL of the top hit.
// Endpoint: GET {base}/search?query=...&per_page=2 with the key in the Authorization header
type Pexels struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewPexels(apiKey string) *Pexels {
	return &Pexels{apiKey: apiKey, baseURL: config.PexelsBaseURL, httpClient: &http.Client{Timeout: config.HTTPTimeout}}
}

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Original string `json:"original"`
		} `json:"src"`
	} `json:"photos"`
}

func (p *Pexels) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "2")

	var res pexelsResponse
	err := getJSON(ctx, p.httpClient, strings.TrimRight(p.baseURL, "/")+"/search?"+params.Encode(), map[string]string{"Authorization": p.apiKey}, &res)
	if err != nil {
		return "", fmt.Errorf("pexels: %w", err)
	}
	for _, photo := range res.Photos {
		if photo.Src.Original != "" {
			return photo.Src.Original, nil
		}
	}
	return "", nil
}

func (p *Pexels) String() string { return "pexels" }

// Pixabay searches https://pixabay.com and returns the large-image URL of the top hit.
// Endpoint: GET {base}?key=...&q=...&image_type=all&per_page=3
type Pixabay struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewPixabay(apiKey string) *Pixabay {
	return &Pixabay{apiKey: apiKey, baseURL: config.PixabayBaseURL, httpClient: &http.Client{Timeout: config.HTTPTimeout}}
}

type pixabayResponse struct {
	Hits []struct {
		LargeImageURL string `json:"largeImageURL"`
	} `json:"hits"`
}

func (p *Pixabay) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("q", query)
	params.Set("image_type", "all")
	params.Set("per_page", "3")

	var res pixabayResponse
	if err := getJSON(ctx, p.httpClient, p.baseURL+"?"+params.Encode(), nil, &res); err != nil {
		return "", fmt.Errorf("pixabay: %w", err)
	}
	for _, hit := range res.Hits {
		if hit.LargeImageURL != "" {
			return hit.LargeImageURL, nil
		}
	}
	return "", nil
}

func (p *Pixabay) String() string { return "pixabay" }

func getJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
