package feed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonesrussell/feedgist/internal/feed"
	"github.com/jonesrussell/feedgist/internal/retry"
)

// testResponseBody is the body returned by the test server for 200 responses.
const testResponseBody = "<rss>test body</rss>"

// testTimeout bounds every request made in these tests.
const testTimeout = 2 * time.Second

func newTestFetcher(srv *httptest.Server, attempts int) *feed.HTTPFetcher {
	return feed.NewHTTPFetcher(srv.Client(), feed.FetcherOptions{
		UserAgent: "feedgist-test",
		Retry: retry.Config{
			MaxAttempts:  attempts,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
		},
	})
}

func TestHTTPFetcher_Success(t *testing.T) {
	t.Parallel()

	var userAgent, accept string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testResponseBody))
	}))
	defer srv.Close()

	body, err := newTestFetcher(srv, 1).Fetch(context.Background(), srv.URL, testTimeout)
	requireNoError(t, err)

	assertEqual(t, testResponseBody, string(body))
	assertEqual(t, "feedgist-test", userAgent)

	if accept == "" {
		t.Error("expected Accept header to be set")
	}
}

func TestHTTPFetcher_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv, 3).Fetch(context.Background(), srv.URL, testTimeout)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var transportErr *feed.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *feed.TransportError, got %T", err)
	}

	assertEqual(t, feed.ErrTypeNotFound, transportErr.Type)
	assertEqual(t, http.StatusNotFound, transportErr.StatusCode)
	assertEqual(t, int32(1), calls.Load())
}

func TestHTTPFetcher_RetriesUpstreamFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(testResponseBody))
	}))
	defer srv.Close()

	body, err := newTestFetcher(srv, 2).Fetch(context.Background(), srv.URL, testTimeout)
	requireNoError(t, err)

	assertEqual(t, testResponseBody, string(body))
	assertEqual(t, int32(2), calls.Load())
}

func TestHTTPFetcher_ExhaustedRetriesKeepTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv, 2).Fetch(context.Background(), srv.URL, testTimeout)

	if !errors.Is(err, retry.ErrMaxAttemptsExceeded) {
		t.Errorf("expected ErrMaxAttemptsExceeded, got %v", err)
	}

	var transportErr *feed.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *feed.TransportError in chain, got %T", err)
	}

	assertEqual(t, feed.ErrTypeUpstream, transportErr.Type)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestFetcher(srv, 1).Fetch(context.Background(), srv.URL, 20*time.Millisecond)

	var transportErr *feed.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *feed.TransportError, got %T: %v", err, err)
	}

	assertEqual(t, feed.ErrTypeNetwork, transportErr.Type)

	if !transportErr.Temporary() {
		t.Error("expected network error to be temporary")
	}
}

func TestHTTPFetcher_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	fetcher := feed.NewHTTPFetcher(nil, feed.FetcherOptions{Retry: retry.Config{MaxAttempts: 1}})

	_, err := fetcher.Fetch(context.Background(), url, testTimeout)

	if !feed.IsTemporary(err) {
		t.Errorf("expected temporary error, got %v", err)
	}
}
