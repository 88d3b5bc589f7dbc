package selector

import (
	"context"

	"github.com/jonesrussell/feedgist/internal/domain"
)

// Screener decides whether a candidate is worth keeping. It returns the page
// content on acceptance, an error wrapping ErrSubstanceRejected when the page is
// too thin, and any other error when the page could not be retrieved.
type Screener interface {
	Screen(ctx context.Context, article domain.Article) (string, error)
}

// PageScraper returns the rendered markup of a page.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// SubstanceScreener scrapes the candidate's page and runs it through a SubstanceGate.
type SubstanceScreener struct {
	scraper PageScraper
	gate    SubstanceGate
}

// NewSubstanceScreener creates a SubstanceScreener.
func NewSubstanceScreener(scraper PageScraper, gate SubstanceGate) *SubstanceScreener {
	return &SubstanceScreener{scraper: scraper, gate: gate}
}

// Screen implements Screener.
func (s *SubstanceScreener) Screen(ctx context.Context, article domain.Article) (string, error) {
	content, err := s.scraper.Scrape(ctx, article.Link)
	if err != nil {
		return "", err
	}

	if checkErr := s.gate.Check(content); checkErr != nil {
		return "", checkErr
	}

	return content, nil
}
