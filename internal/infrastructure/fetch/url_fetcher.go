// Package fetch retrieves web page content for URL-based imports.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/larderapp/larder/internal/infrastructure/config"
	"github.com/larderapp/larder/internal/ports/outbound"
)

// URLFetcher downloads page content over HTTP. The body is handed to
// the extraction model as-is; the model copes with HTML better than a
// stripped-down text ever ends up being.
type URLFetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

var _ outbound.URLFetcher = (*URLFetcher)(nil)

// NewURLFetcher creates a new URL fetcher
func NewURLFetcher(cfg config.ImportConfig) *URLFetcher {
	return &URLFetcher{
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		maxBytes:   cfg.MaxFetchSize,
	}
}

// FetchText downloads the page body, capped at the configured size
func (f *URLFetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "larder/1.0 (+recipe import)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(body), nil
}
