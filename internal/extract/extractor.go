// Package extract turns scraped page markup into a markdown article with an LLM.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"

	"github.com/jonesrussell/feedgist/internal/logger"
)

// DefaultTimeout bounds one completion call.
const DefaultTimeout = 120 * time.Second

// instructions precede the page markup in every prompt.
const instructions = "Extract the following information and format in Markdown:\n" +
	"1. **Title** as H1\n" +
	"2. **Main content**\n" +
	"3. **Images** as ![alt](url)\n" +
	"4. **Links**\n\n"

// ErrEmptyCompletion is returned when the model answers with nothing.
var ErrEmptyCompletion = errors.New("empty completion")

// Completer sends a single-turn prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Options configures an Extractor.
type Options struct {
	// SimplifyHTML reduces the page to its readable article before prompting.
	SimplifyHTML bool
	// MaxInputChars truncates the page markup; 0 means no limit.
	MaxInputChars int
	Timeout       time.Duration
}

// Error is a page that could not be converted to markdown.
type Error struct {
	Provider string
	URL      string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s via %s: %v", e.URL, e.Provider, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Extractor builds the prompt for a page and hands it to a Completer.
type Extractor struct {
	completer Completer
	opts      Options
	log       logger.Logger
}

// New creates an Extractor.
func New(completer Completer, opts Options, log logger.Logger) *Extractor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Extractor{completer: completer, opts: opts, log: log}
}

// BuildPrompt prepends the extraction instructions to html.
func BuildPrompt(html string) string {
	return instructions + html
}

// Extract returns the markdown rendering of the page at pageURL.
func (e *Extractor) Extract(ctx context.Context, pageURL, html string) (string, error) {
	input := html

	if e.opts.SimplifyHTML {
		if simplified, ok := simplify(html, pageURL); ok {
			e.log.Debug("Page simplified",
				logger.String("link", pageURL),
				logger.Int("original_chars", utf8.RuneCountInString(html)),
				logger.Int("simplified_chars", utf8.RuneCountInString(simplified)),
			)
			input = simplified
		}
	}

	input = truncate(input, e.opts.MaxInputChars)

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	start := time.Now()

	markdown, err := e.completer.Complete(ctx, BuildPrompt(input))
	if err != nil {
		return "", &Error{Provider: e.completer.Name(), URL: pageURL, Cause: err}
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", &Error{Provider: e.completer.Name(), URL: pageURL, Cause: ErrEmptyCompletion}
	}

	e.log.Debug("Extraction completed",
		logger.String("link", pageURL),
		logger.String("provider", e.completer.Name()),
		logger.Duration("duration", time.Since(start)),
		logger.Int("markdown_chars", utf8.RuneCountInString(markdown)),
	)

	return markdown, nil
}

// simplify keeps only the readable article content. ok is false when
// readability yields nothing, in which case the original markup is used.
func simplify(html, pageURL string) (string, bool) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return "", false
	}

	content := strings.TrimSpace(article.Content)
	if content == "" {
		return "", false
	}

	if title := strings.TrimSpace(article.Title); title != "" {
		content = "<h1>" + title + "</h1>\n" + content
	}

	return content, true
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)

	return string(runes[:limit])
}
