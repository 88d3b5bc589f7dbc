package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/gocolly/colly/v2"
)

// DefaultHTTPTimeout bounds a plain HTTP scrape.
const DefaultHTTPTimeout = 15 * time.Second

var errEmptyResponse = errors.New("empty response")

// HTTPOptions configures HTTP.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
}

// HTTP fetches pages with a single GET and no script execution.
type HTTP struct {
	opts HTTPOptions
}

// NewHTTP creates an HTTP scraper.
func NewHTTP(opts HTTPOptions) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultHTTPTimeout
	}

	return &HTTP{opts: opts}
}

// Scrape implements Scraper. Responses with status >= 400 are errors.
func (h *HTTP) Scrape(ctx context.Context, url string) (string, error) {
	options := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	}
	if h.opts.UserAgent != "" {
		options = append(options, colly.UserAgent(h.opts.UserAgent))
	}

	c := colly.NewCollector(options...)
	c.SetRequestTimeout(h.opts.Timeout)

	var (
		body     []byte
		status   int
		received bool
	)

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
		received = true
	})

	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(url); err != nil {
		return "", &Error{URL: url, Op: OpFetch, StatusCode: status, Cause: err}
	}

	if !received {
		return "", &Error{URL: url, Op: OpFetch, StatusCode: status, Cause: errEmptyResponse}
	}

	return string(body), nil
}
