package jma

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Client fetches JMA XML feeds. The source may be a remote HTTP(S) endpoint
// or a local file path (plain path or file:// URL), transparently to callers.
type Client struct {
	feedURL    string
	httpClient *http.Client
}

// NewClient creates a feed client with the given request timeout.
func NewClient(feedURL string, timeout time.Duration) *Client {
	return &Client{
		feedURL: strings.TrimRight(feedURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves the raw feed bytes. Any I/O failure is returned as-is and
// fails the current pipeline run; the next scheduled run retries on its own.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(c.feedURL)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		path := c.feedURL
		if err == nil && u.Scheme == "file" {
			path = u.Path
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read feed file %s: %w", path, readErr)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return data, nil
}
