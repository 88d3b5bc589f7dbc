package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/feedgist/internal/retry"
)

const (
	defaultUserAgent    = "feedgist/1.0 (+https://github.com/jonesrussell/feedgist)"
	defaultMaxBodyBytes = 10 << 20
	acceptFeedTypes     = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
)

// FetcherOptions configures HTTPFetcher. Zero values use the defaults.
type FetcherOptions struct {
	UserAgent    string
	MaxBodyBytes int64
	Retry        retry.Config
}

// HTTPFetcher retrieves raw feed documents over HTTP.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	retry        retry.Config
}

// NewHTTPFetcher creates an HTTPFetcher backed by the given http.Client.
func NewHTTPFetcher(client *http.Client, opts FetcherOptions) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	opts.Retry.IsRetryable = IsTemporary

	return &HTTPFetcher{
		client:       client,
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
		retry:        opts.Retry,
	}
}

// Fetch performs an HTTP GET bounded by timeout and returns the response body.
// Network failures and statuses >= 400 are returned as *TransportError; temporary
// ones are retried according to the fetcher's retry config.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, f.retry, func(ctx context.Context) error {
		raw, fetchErr := f.fetchOnce(ctx, url, timeout)
		if fetchErr != nil {
			return fetchErr
		}
		body = raw
		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("http fetcher new request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptFeedTypes)

	resp, doErr := f.client.Do(req)
	if doErr != nil {
		return nil, ClassifyNetworkError(doErr, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodyBytes))
		return nil, ClassifyHTTPStatus(resp.StatusCode, url)
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if readErr != nil {
		return nil, ClassifyNetworkError(fmt.Errorf("read body: %w", readErr), url)
	}

	return raw, nil
}
