package cmd

import (
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/jonesrussell/feedgist/internal/config"
	"github.com/jonesrussell/feedgist/internal/extract"
	"github.com/jonesrussell/feedgist/internal/feed"
	"github.com/jonesrussell/feedgist/internal/logger"
	"github.com/jonesrussell/feedgist/internal/metrics"
	"github.com/jonesrussell/feedgist/internal/pipeline"
	"github.com/jonesrussell/feedgist/internal/publish"
	"github.com/jonesrussell/feedgist/internal/retry"
	"github.com/jonesrussell/feedgist/internal/scrape"
	"github.com/jonesrussell/feedgist/internal/selector"
)

// runOverrides are command-line adjustments layered over the loaded config.
type runOverrides struct {
	DryRun       bool
	Quota        int
	CandidateCap int
}

// newFetcher builds the feed fetcher shared by every command that ingests.
func newFetcher(cfg *config.Config) *feed.HTTPFetcher {
	return feed.NewHTTPFetcher(&http.Client{}, feed.FetcherOptions{
		UserAgent:    cfg.Fetcher.UserAgent,
		MaxBodyBytes: cfg.Fetcher.MaxBodyBytes,
		Retry: retry.Config{
			MaxAttempts:  cfg.Fetcher.MaxAttempts,
			InitialDelay: cfg.Fetcher.RetryDelay,
		},
	})
}

func newScraper(cfg config.ScraperConfig, log logger.Logger) selector.PageScraper {
	if cfg.Mode == config.ScraperModeHTTP {
		return scrape.NewHTTP(scrape.HTTPOptions{
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.PageTimeout,
		})
	}

	matchers := scrape.MatchersFromLabels(cfg.ConsentLabels)
	for _, expr := range cfg.ConsentXPaths {
		if expr == "" {
			continue
		}
		matchers = append(matchers, scrape.XPathMatcher{Expr: expr})
	}

	return scrape.NewBrowser(scrape.BrowserOptions{
		ExecPath:        cfg.ExecPath,
		Headless:        cfg.Headless,
		UserAgent:       cfg.UserAgent,
		PageTimeout:     cfg.PageTimeout,
		ConsentTimeout:  cfg.ConsentTimeout,
		SettleDelay:     cfg.SettleDelay,
		ConsentMatchers: matchers,
	}, log)
}

func newCompleter(cfg config.ExtractorConfig) (extract.Completer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return extract.NewGeminiCompleter(cfg.APIKey, cfg.Model), nil
	case config.ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = openai.GPT4oMini
		}
		return extract.NewOpenAICompleter(config.ProviderOpenAI, cfg.APIKey, cfg.BaseURL, model), nil
	case config.ProviderAnthropic:
		return extract.NewAnthropicCompleter(cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown extractor provider %q", cfg.Provider)
	}
}

// newPipeline wires every collaborator of a full run.
func newPipeline(deps *commandDeps, overrides runOverrides) (*pipeline.Pipeline, error) {
	cfg := deps.Config
	log := deps.Logger

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	completer, err := newCompleter(cfg.Extractor)
	if err != nil {
		return nil, err
	}

	screener := selector.NewSubstanceScreener(
		newScraper(cfg.Scraper, log),
		selector.NewSubstanceGate(cfg.Selector.MinTextLength),
	)

	extractor := extract.New(completer, extract.Options{
		SimplifyHTML:  cfg.Extractor.SimplifyHTML,
		MaxInputChars: cfg.Extractor.MaxInputChars,
		Timeout:       cfg.Extractor.Timeout,
	}, log)

	pipelineDeps := pipeline.Deps{
		Fetcher:   newFetcher(cfg),
		Screener:  screener,
		Extractor: extractor,
		Metrics:   metrics.New(nil),
		Logger:    log,
	}

	if !overrides.DryRun {
		publisher, pubErr := publish.NewGistPublisher(nil, publish.Options{
			APIURL:  cfg.Publisher.APIURL,
			Token:   cfg.Publisher.Token,
			Public:  cfg.Publisher.Public,
			Timeout: cfg.Publisher.Timeout,
		})
		if pubErr != nil {
			return nil, pubErr
		}
		pipelineDeps.Publisher = publisher
	}

	return pipeline.New(pipelineDeps, pipeline.Options{
		Sources:      registry.Sources(),
		FetchTimeout: cfg.Fetcher.Timeout,
		Selection: selector.Options{
			Quota:        firstPositive(overrides.Quota, cfg.Selector.Quota),
			CandidateCap: firstPositive(overrides.CandidateCap, cfg.Selector.CandidateCap),
		},
		DryRun:         overrides.DryRun,
		PushgatewayURL: cfg.Metrics.PushgatewayURL,
		MetricsJob:     cfg.Metrics.Job,
	}), nil
}

// newPreviewPipeline wires only what ingestion needs.
func newPreviewPipeline(deps *commandDeps) (*pipeline.Pipeline, error) {
	registry, err := deps.Config.Registry()
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Deps{
		Fetcher: newFetcher(deps.Config),
		Logger:  deps.Logger,
	}, pipeline.Options{
		Sources:      registry.Sources(),
		FetchTimeout: deps.Config.Fetcher.Timeout,
	}), nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
