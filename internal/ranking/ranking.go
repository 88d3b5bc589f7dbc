// Package ranking merges per-source article lists into one deterministic timeline.
package ranking

import (
	"sort"

	"github.com/jonesrussell/feedgist/internal/domain"
)

// SourceResult is the outcome of ingesting one registry entry.
// Err is set when the source could not be fetched or parsed.
type SourceResult struct {
	Source   domain.FeedSource
	Articles []domain.Article
	Err      error
}

// Failed reports whether the source contributed nothing because of an error.
func (r SourceResult) Failed() bool {
	return r.Err != nil
}

// Aggregate concatenates the articles of every successful result in the given
// order and sorts them by PublishedAt, newest first. Ties keep source order, then
// document order. Failed results are skipped; they were logged where they occurred.
func Aggregate(results []SourceResult) domain.RankedFeed {
	total := 0
	for _, r := range results {
		if !r.Failed() {
			total += len(r.Articles)
		}
	}

	ranked := make(domain.RankedFeed, 0, total)

	for _, r := range results {
		if r.Failed() {
			continue
		}

		for _, a := range r.Articles {
			if a.Source == "" {
				a.Source = r.Source.Name
			}
			ranked = append(ranked, a)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
	})

	return ranked
}

// Top returns at most n leading items of feed. The result shares feed's backing array.
func Top(feed domain.RankedFeed, n int) domain.RankedFeed {
	if n <= 0 {
		return feed[:0]
	}
	if n > len(feed) {
		n = len(feed)
	}

	return feed[:n]
}
