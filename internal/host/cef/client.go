package cef

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultIndexURL = "https://cef-builds.spotifycdn.com/index.json"
	DefaultTimeout  = 30 * time.Second

	// The full index is a few MB; anything far beyond that is not the index.
	maxIndexBytes = 64 << 20
)

// Client fetches the CEF builds index.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// FetchIndex performs a single GET of url and returns the raw body.
// Non-200 responses are errors; there is no retry.
func (c *Client) FetchIndex(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	// #nosec G107 -- url comes from configuration
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("index request failed %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	if len(body) > maxIndexBytes {
		return nil, fmt.Errorf("index larger than %d bytes", maxIndexBytes)
	}
	return body, nil
}

func UserAgent(version string) string {
	return fmt.Sprintf("cefcheck/%s", version)
}
