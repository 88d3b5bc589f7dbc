package pipeline

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"time"

	"github.com/jonesrussell/feedgist/internal/domain"
)

// FeedFetcher downloads a raw feed document.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// Screener scrapes a candidate and applies the substance gate.
type Screener interface {
	Screen(ctx context.Context, article domain.Article) (string, error)
}

// Extractor converts page markup to markdown.
type Extractor interface {
	Extract(ctx context.Context, pageURL, html string) (string, error)
}

// Publisher stores markdown under filename and returns a public URL.
type Publisher interface {
	Publish(ctx context.Context, content, description, filename string) (string, error)
}
