package selector_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgist/internal/domain"
	"github.com/jonesrussell/feedgist/internal/selector"
)

type stubScraper struct {
	pages map[string]string
	err   error
}

func (s stubScraper) Scrape(_ context.Context, url string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.pages[url], nil
}

func TestSubstanceScreener(t *testing.T) {
	t.Parallel()

	long := "<p>" + strings.Repeat("word ", 80) + "</p>"
	short := "<p>too short</p>"

	screener := selector.NewSubstanceScreener(stubScraper{pages: map[string]string{
		"https://example.com/long":  long,
		"https://example.com/short": short,
	}}, selector.NewSubstanceGate(300))

	content, err := screener.Screen(context.Background(), domain.Article{Link: "https://example.com/long"})
	require.NoError(t, err)
	assert.Equal(t, long, content)

	_, err = screener.Screen(context.Background(), domain.Article{Link: "https://example.com/short"})
	require.ErrorIs(t, err, selector.ErrSubstanceRejected)
}

func TestSubstanceScreener_ScrapeErrorIsNotRejection(t *testing.T) {
	t.Parallel()

	scrapeErr := errors.New("timeout")
	screener := selector.NewSubstanceScreener(stubScraper{err: scrapeErr}, selector.NewSubstanceGate(300))

	_, err := screener.Screen(context.Background(), domain.Article{Link: "https://example.com/x"})

	require.ErrorIs(t, err, scrapeErr)
	assert.NotErrorIs(t, err, selector.ErrSubstanceRejected)
}
