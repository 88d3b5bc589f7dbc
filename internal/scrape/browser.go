// Package scrape retrieves the markup of article pages, either through a
// headless browser session or a plain HTTP request.
package scrape

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/jonesrussell/feedgist/internal/logger"
)

// Browser defaults.
const (
	DefaultPageTimeout    = 30 * time.Second
	DefaultConsentTimeout = 10 * time.Second
	DefaultSettleDelay    = 2 * time.Second

	consentPollInterval = 250 * time.Millisecond
	profilePattern      = "feedgist-profile-*"
)

// Scraper returns the markup of the page at url.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// BrowserOptions configures Browser. Zero durations use the defaults.
type BrowserOptions struct {
	ExecPath        string
	Headless        bool
	UserAgent       string
	PageTimeout     time.Duration
	ConsentTimeout  time.Duration
	SettleDelay     time.Duration
	ConsentMatchers []ConsentMatcher
}

// Browser renders pages in a short-lived Chrome process. Every call gets its
// own process and profile directory, both released before Scrape returns.
type Browser struct {
	opts BrowserOptions
	log  logger.Logger
}

// NewBrowser creates a Browser.
func NewBrowser(opts BrowserOptions, log logger.Logger) *Browser {
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = DefaultPageTimeout
	}
	if opts.ConsentTimeout <= 0 {
		opts.ConsentTimeout = DefaultConsentTimeout
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	if opts.ConsentMatchers == nil {
		opts.ConsentMatchers = MatchersFromLabels(DefaultConsentLabels)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Browser{opts: opts, log: log}
}

// Scrape navigates to url, tries to dismiss a consent banner, and returns the
// document's outer HTML. Banner handling never fails the scrape.
func (b *Browser) Scrape(ctx context.Context, url string) (string, error) {
	profileDir, err := os.MkdirTemp("", profilePattern)
	if err != nil {
		return "", &Error{URL: url, Op: OpProfile, Cause: err}
	}
	defer func() {
		if rmErr := os.RemoveAll(profileDir); rmErr != nil {
			b.log.Warn("Failed to remove browser profile",
				logger.String("profile_dir", profileDir),
				logger.Error(rmErr),
			)
		}
	}()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions(profileDir)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// The first Run launches the process; the page timeout starts after it.
	if startErr := chromedp.Run(browserCtx); startErr != nil {
		return "", &Error{URL: url, Op: OpStart, Cause: startErr}
	}

	pageCtx, cancelPage := context.WithTimeout(browserCtx, b.opts.PageTimeout)
	defer cancelPage()

	if navErr := chromedp.Run(pageCtx, chromedp.Navigate(url)); navErr != nil {
		return "", &Error{URL: url, Op: OpNavigate, Cause: navErr}
	}

	b.dismissConsent(pageCtx, url)

	var html string
	if captureErr := chromedp.Run(pageCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); captureErr != nil {
		return "", &Error{URL: url, Op: OpCapture, Cause: captureErr}
	}

	return html, nil
}

func (b *Browser) allocatorOptions(profileDir string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("headless", b.opts.Headless),
	)

	if b.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.opts.ExecPath))
	}
	if b.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.opts.UserAgent))
	}

	return opts
}

// dismissConsent polls the page for any matcher until ConsentTimeout, clicks
// the first hit, then waits SettleDelay for the page to redraw.
func (b *Browser) dismissConsent(ctx context.Context, url string) {
	if len(b.opts.ConsentMatchers) == 0 {
		return
	}

	consentCtx, cancel := context.WithTimeout(ctx, b.opts.ConsentTimeout)
	defer cancel()

	log := b.log.With(logger.String("link", url))

	for {
		for _, matcher := range b.opts.ConsentMatchers {
			node, found := findNode(consentCtx, matcher)
			if !found {
				continue
			}

			if clickErr := chromedp.Run(consentCtx, chromedp.MouseClickNode(node)); clickErr != nil {
				log.Debug("Consent click failed", logger.String("matcher", matcher.Name()), logger.Error(clickErr))
				continue
			}

			log.Debug("Consent banner dismissed", logger.String("matcher", matcher.Name()))
			settle(ctx, b.opts.SettleDelay)
			return
		}

		select {
		case <-consentCtx.Done():
			log.Debug("No consent banner found")
			return
		case <-time.After(consentPollInterval):
		}
	}
}

func findNode(ctx context.Context, matcher ConsentMatcher) (*cdp.Node, bool) {
	var nodes []*cdp.Node

	err := chromedp.Run(ctx, chromedp.Nodes(matcher.XPath(), &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil || len(nodes) == 0 {
		return nil, false
	}

	return nodes[0], true
}

func settle(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
