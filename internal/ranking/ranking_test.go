package ranking_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgist/internal/domain"
	"github.com/jonesrussell/feedgist/internal/ranking"
)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func article(title string, hoursAfterBase int) domain.Article {
	return domain.Article{
		Title:       title,
		Link:        "https://example.com/" + title,
		PublishedAt: base.Add(time.Duration(hoursAfterBase) * time.Hour),
	}
}

func titles(feed domain.RankedFeed) []string {
	out := make([]string, 0, len(feed))
	for _, a := range feed {
		out = append(out, a.Title)
	}
	return out
}

func TestAggregate_MergesAndSortsDescending(t *testing.T) {
	t.Parallel()

	results := []ranking.SourceResult{
		{
			Source:   domain.FeedSource{Name: "alpha"},
			Articles: []domain.Article{article("a-new", 5), article("a-old", 1)},
		},
		{
			Source:   domain.FeedSource{Name: "beta"},
			Articles: []domain.Article{article("b-mid", 3), article("b-oldest", 0)},
		},
	}

	ranked := ranking.Aggregate(results)

	assert.Equal(t, []string{"a-new", "b-mid", "a-old", "b-oldest"}, titles(ranked))
	assert.Equal(t, "alpha", ranked[0].Source)
	assert.Equal(t, "beta", ranked[1].Source)
}

func TestAggregate_TiesFollowSourceOrder(t *testing.T) {
	t.Parallel()

	results := []ranking.SourceResult{
		{Source: domain.FeedSource{Name: "first"}, Articles: []domain.Article{article("x", 2), article("y", 2)}},
		{Source: domain.FeedSource{Name: "second"}, Articles: []domain.Article{article("z", 2)}},
	}

	for range 5 {
		assert.Equal(t, []string{"x", "y", "z"}, titles(ranking.Aggregate(results)))
	}
}

func TestAggregate_SkipsFailedSources(t *testing.T) {
	t.Parallel()

	results := []ranking.SourceResult{
		{Source: domain.FeedSource{Name: "broken"}, Err: errors.New("HTTP 404")},
		{Source: domain.FeedSource{Name: "ok"}, Articles: []domain.Article{article("only", 0)}},
	}

	ranked := ranking.Aggregate(results)

	require.Len(t, ranked, 1)
	assert.Equal(t, "only", ranked[0].Title)
	assert.True(t, results[0].Failed())
	assert.False(t, results[1].Failed())
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	ranked := ranking.Aggregate(nil)

	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestAggregate_KeepsExplicitSource(t *testing.T) {
	t.Parallel()

	a := article("tagged", 0)
	a.Source = "upstream"

	ranked := ranking.Aggregate([]ranking.SourceResult{
		{Source: domain.FeedSource{Name: "registry"}, Articles: []domain.Article{a}},
	})

	require.Len(t, ranked, 1)
	assert.Equal(t, "upstream", ranked[0].Source)
}

func TestTop(t *testing.T) {
	t.Parallel()

	feed := domain.RankedFeed{article("a", 3), article("b", 2), article("c", 1)}

	assert.Equal(t, []string{"a", "b"}, titles(ranking.Top(feed, 2)))
	assert.Len(t, ranking.Top(feed, 10), 3)
	assert.Empty(t, ranking.Top(feed, 0))
	assert.Empty(t, ranking.Top(nil, 3))
}
