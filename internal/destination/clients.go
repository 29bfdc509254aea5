package destination

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const httpTimeout = 10 * time.Second

// newHTTPClient returns an http.Client with a 10-second timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// doGet performs a GET request with the given headers and decodes the JSON response into dst.
func doGet(ctx context.Context, client *http.Client, rawURL string, header http.Header, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}

	return nil
}

// ---- Pexels ----

// PexelsClient searches destination photos on Pexels.
type PexelsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

const pexelsDefaultURL = "https://api.pexels.com/v1/search"

// NewPexelsClient constructs a PexelsClient with the given API key.
func NewPexelsClient(apiKey string) *PexelsClient {
	return &PexelsClient{apiKey: apiKey, baseURL: pexelsDefaultURL, client: newHTTPClient()}
}

// NewPexelsClientWithURL constructs a PexelsClient pointing at a custom base URL (for tests).
func NewPexelsClientWithURL(baseURL, apiKey string) *PexelsClient {
	return &PexelsClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient()}
}

type pexelsResponse struct {
	Photos []struct {
		ID  int64 `json:"id"`
		Src struct {
			Large  string `json:"large"`
			Medium string `json:"medium"`
		} `json:"src"`
		Alt             string `json:"alt"`
		Photographer    string `json:"photographer"`
		PhotographerURL string `json:"photographer_url"`
	} `json:"photos"`
}

// Search returns up to count landscape photos of city.
func (c *PexelsClient) Search(ctx context.Context, city string, count int) ([]Image, error) {
	q := url.Values{}
	q.Set("query", city+" city")
	q.Set("per_page", strconv.Itoa(count))
	q.Set("orientation", "landscape")
	endpoint := c.baseURL + "?" + q.Encode()

	header := http.Header{}
	header.Set("Authorization", c.apiKey)

	var raw pexelsResponse
	if err := doGet(ctx, c.client, endpoint, header, &raw); err != nil {
		return nil, fmt.Errorf("pexels search for %s: %w", city, err)
	}

	images := make([]Image, 0, len(raw.Photos))
	for _, p := range raw.Photos {
		alt := p.Alt
		if alt == "" {
			alt = "Photo of " + city
		}
		images = append(images, Image{
			ID:              p.ID,
			URL:             p.Src.Large,
			Thumbnail:       p.Src.Medium,
			Alt:             alt,
			Photographer:    p.Photographer,
			PhotographerURL: p.PhotographerURL,
		})
	}
	return images, nil
}
