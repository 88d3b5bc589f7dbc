package selector_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgist/internal/domain"
	"github.com/jonesrussell/feedgist/internal/logger"
	"github.com/jonesrussell/feedgist/internal/selector"
)

var errScrape = errors.New("browser crashed")

// fakeScreener rejects or fails selected links and records every call.
type fakeScreener struct {
	rejected map[string]bool
	failed   map[string]bool
	calls    []string
}

func (f *fakeScreener) Screen(_ context.Context, a domain.Article) (string, error) {
	f.calls = append(f.calls, a.Link)

	switch {
	case f.failed[a.Link]:
		return "", errScrape
	case f.rejected[a.Link]:
		return "", fmt.Errorf("%w: 12 of 300 characters", selector.ErrSubstanceRejected)
	}

	return "<p>content of " + a.Link + "</p>", nil
}

func rankedFeed(n int) domain.RankedFeed {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feed := make(domain.RankedFeed, 0, n)

	for i := range n {
		feed = append(feed, domain.Article{
			Title:       fmt.Sprintf("Article %d", i),
			Link:        fmt.Sprintf("https://example.com/%d", i),
			PublishedAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}

	return feed
}

func acceptedLinks(result selector.Result) []string {
	links := make([]string, 0, len(result.Accepted))
	for _, item := range result.Accepted {
		links = append(links, item.Article.Link)
	}
	return links
}

func defaultOptions() selector.Options {
	return selector.Options{Quota: selector.DefaultQuota, CandidateCap: selector.DefaultCandidateCap}
}

func TestSelect_SkipsRejectedCandidatesInRankOrder(t *testing.T) {
	t.Parallel()

	feed := rankedFeed(12)
	screener := &fakeScreener{rejected: map[string]bool{feed[3].Link: true, feed[7].Link: true}}

	result := selector.Select(context.Background(), feed, defaultOptions(), screener, logger.NewNop())

	require.Len(t, result.Accepted, 5)
	assert.LessOrEqual(t, result.Examined, 10)
	assert.Equal(t, []string{feed[0].Link, feed[1].Link, feed[2].Link, feed[4].Link, feed[5].Link}, acceptedLinks(result))
	assert.Equal(t, 6, result.Examined)
	assert.Equal(t, 1, result.Rejected)
	assert.Zero(t, result.Failed)
	assert.Equal(t, "<p>content of "+feed[0].Link+"</p>", result.Accepted[0].Content)
}

func TestSelect_StopsAtCandidateCap(t *testing.T) {
	t.Parallel()

	feed := rankedFeed(12)
	rejected := make(map[string]bool)
	for i, a := range feed {
		if i != 2 && i != 9 && i != 11 {
			rejected[a.Link] = true
		}
	}
	screener := &fakeScreener{rejected: rejected}

	result := selector.Select(context.Background(), feed, defaultOptions(), screener, logger.NewNop())

	assert.Equal(t, 10, result.Examined)
	assert.Len(t, screener.calls, 10)
	assert.Equal(t, []string{feed[2].Link, feed[9].Link}, acceptedLinks(result))
	assert.Equal(t, 8, result.Rejected)
}

func TestSelect_ScrapeFailuresDoNotConsumeQuota(t *testing.T) {
	t.Parallel()

	feed := rankedFeed(8)
	screener := &fakeScreener{failed: map[string]bool{feed[0].Link: true, feed[1].Link: true}}

	result := selector.Select(context.Background(), feed, defaultOptions(), screener, logger.NewNop())

	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 7, result.Examined)
	assert.Equal(t, []string{feed[2].Link, feed[3].Link, feed[4].Link, feed[5].Link, feed[6].Link}, acceptedLinks(result))
}

func TestSelect_BoundsHoldForAnyFeedLength(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()

	for _, n := range []int{0, opts.Quota - 1, opts.Quota + 50} {
		t.Run(fmt.Sprintf("length_%d", n), func(t *testing.T) {
			t.Parallel()

			screener := &fakeScreener{}
			result := selector.Select(context.Background(), rankedFeed(n), opts, screener, logger.NewNop())

			assert.LessOrEqual(t, len(result.Accepted), opts.Quota)
			assert.LessOrEqual(t, result.Examined, opts.CandidateCap)
			assert.Equal(t, min(n, opts.Quota), len(result.Accepted))
			assert.Len(t, screener.calls, result.Examined)
		})
	}
}

func TestSelect_ZeroQuotaScreensNothing(t *testing.T) {
	t.Parallel()

	screener := &fakeScreener{}
	result := selector.Select(context.Background(), rankedFeed(3), selector.Options{Quota: 0, CandidateCap: 10}, screener, logger.NewNop())

	assert.Empty(t, result.Accepted)
	assert.Zero(t, result.Examined)
	assert.Empty(t, screener.calls)
}

func TestSelect_DuplicateLinksAreScreenedIndependently(t *testing.T) {
	t.Parallel()

	feed := rankedFeed(2)
	feed = append(feed, feed[0])
	screener := &fakeScreener{}

	result := selector.Select(context.Background(), feed, defaultOptions(), screener, logger.NewNop())

	assert.Len(t, result.Accepted, 3)
	assert.Equal(t, []string{feed[0].Link, feed[1].Link, feed[0].Link}, screener.calls)
}

func TestSelect_CancelledContextStopsBeforeNextCandidate(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	screener := &fakeScreener{}
	result := selector.Select(ctx, rankedFeed(4), defaultOptions(), screener, logger.NewNop())

	assert.Zero(t, result.Examined)
	assert.Empty(t, screener.calls)
}
