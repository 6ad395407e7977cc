package cruise

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single report download.
const DefaultTimeout = 30 * time.Second

// maxReportSize caps how much of a report is read.
const maxReportSize = 4 * 1024 * 1024

// HTTPFetcher downloads reports over plain HTTP without authentication.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch returns the report body. A 404 is reported as ErrNotFound.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create report request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch report %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("report %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportSize))
	if err != nil {
		return "", fmt.Errorf("failed to read report %s: %w", url, err)
	}
	return string(body), nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
