// Package feed fetches RSS and Atom documents and turns them into ranked articles.
package feed

import (
	"bytes"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"

	"github.com/jonesrussell/feedgist/internal/domain"
)

// Format names used in ParseError.
const (
	FormatRSS  = "rss"
	FormatAtom = "atom"
)

const (
	httpPrefix   = "http"
	relAlternate = "alternate"
)

var errUnknownFormat = errors.New("document is neither RSS nor Atom")

// Parse detects whether raw is an RSS or Atom document and extracts its items.
// Items whose date cannot be parsed are dropped. The result is sorted newest
// first; items with equal timestamps keep their document order. An empty feed
// returns a non-nil empty slice.
func Parse(raw []byte) ([]domain.Article, error) {
	var (
		articles []domain.Article
		err      error
	)

	switch gofeed.DetectFeedType(bytes.NewReader(raw)) {
	case gofeed.FeedTypeRSS:
		articles, err = parseRSS(raw)
	case gofeed.FeedTypeAtom:
		articles, err = parseAtom(raw)
	case gofeed.FeedTypeJSON, gofeed.FeedTypeUnknown:
		return nil, &ParseError{Cause: errUnknownFormat}
	default:
		return nil, &ParseError{Cause: errUnknownFormat}
	}
	if err != nil {
		return nil, err
	}

	sortNewestFirst(articles)

	return articles, nil
}

func parseRSS(raw []byte) ([]domain.Article, error) {
	doc, err := (&rss.Parser{}).Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Format: FormatRSS, Cause: err}
	}

	articles := make([]domain.Article, 0, len(doc.Items))

	for _, item := range doc.Items {
		if item == nil {
			continue
		}

		published, ok := firstDate(item.PubDate, dublinCoreDate(item))
		if !ok {
			continue
		}

		articles = append(articles, domain.Article{
			Title:       strings.TrimSpace(item.Title),
			Link:        rssLink(item),
			PublishedAt: published,
		})
	}

	return articles, nil
}

func parseAtom(raw []byte) ([]domain.Article, error) {
	doc, err := (&atom.Parser{}).Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Format: FormatAtom, Cause: err}
	}

	articles := make([]domain.Article, 0, len(doc.Entries))

	for _, entry := range doc.Entries {
		if entry == nil {
			continue
		}

		published, ok := firstDate(entry.Updated, entry.Published)
		if !ok {
			continue
		}

		articles = append(articles, domain.Article{
			Title:       strings.TrimSpace(entry.Title),
			Link:        alternateLink(entry.Links),
			PublishedAt: published,
		})
	}

	return articles, nil
}

// firstDate returns the first candidate that normalizes successfully.
func firstDate(candidates ...string) (time.Time, bool) {
	for _, candidate := range candidates {
		if t, err := NormalizeDate(candidate); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func dublinCoreDate(item *rss.Item) string {
	if item.DublinCoreExt == nil || len(item.DublinCoreExt.Date) == 0 {
		return ""
	}

	return item.DublinCoreExt.Date[0]
}

// rssLink prefers <link>, falling back to a <guid> that looks like a URL.
func rssLink(item *rss.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}

	if item.GUID != nil && strings.HasPrefix(strings.TrimSpace(item.GUID.Value), httpPrefix) {
		return strings.TrimSpace(item.GUID.Value)
	}

	return ""
}

// alternateLink returns the href of the rel="alternate" link. A link without
// rel counts as alternate (RFC 4287 section 4.2.7.2).
func alternateLink(links []*atom.Link) string {
	for _, link := range links {
		if link == nil {
			continue
		}

		rel := strings.TrimSpace(link.Rel)
		if rel == "" || strings.EqualFold(rel, relAlternate) {
			return strings.TrimSpace(link.Href)
		}
	}

	return ""
}

func sortNewestFirst(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
