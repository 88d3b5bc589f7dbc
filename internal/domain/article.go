// Package domain holds the records that flow through the selection pipeline.
package domain

import "time"

// FeedSource is one entry of the feed registry.
type FeedSource struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url"  yaml:"url"`
}

// Article is a feed item with a normalized publication time.
// PublishedAt is always in UTC; items without a parseable date never become an Article.
type Article struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source,omitempty"`
}

// RankedFeed is a sequence of articles ordered by PublishedAt, newest first.
type RankedFeed []Article

// AcceptedItem pairs an article with the page content captured while screening it.
type AcceptedItem struct {
	Article Article
	Content string
}
