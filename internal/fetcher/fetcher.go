// Package fetcher defines the observation source boundary: how raw price text
// is obtained for a product. Scraping mechanics beyond a plain HTTP GET live
// outside the engine.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"pricewatch/internal/metrics"
)

// Source obtains the raw observed text for a product locator. Any failure is
// treated uniformly by the caller as "no observation this cycle".
type Source interface {
	Fetch(ctx context.Context, url, selector string) (string, error)
}

// maxBodySize caps how much of a page is read per observation.
const maxBodySize = 4 * 1024 * 1024 // 4MB

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// HTTPSource fetches page text over plain HTTP.
type HTTPSource struct {
	client    *http.Client
	userAgent string
}

// NewHTTPSource creates an HTTP observation source with the given per-request
// timeout.
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

// Fetch retrieves the page body as text. The selector is accepted for
// interface compatibility; a plain HTTP source has no DOM to query, so the
// whole body is returned for the parser to scan.
func (s *HTTPSource) Fetch(ctx context.Context, url, selector string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	return string(body), nil
}
