// Package pipeline runs feed ingestion, candidate selection, extraction, and
// publishing as one sequential pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/feedgist/internal/domain"
	"github.com/jonesrussell/feedgist/internal/feed"
	"github.com/jonesrussell/feedgist/internal/logger"
	"github.com/jonesrussell/feedgist/internal/metrics"
	"github.com/jonesrussell/feedgist/internal/publish"
	"github.com/jonesrussell/feedgist/internal/ranking"
	"github.com/jonesrussell/feedgist/internal/selector"
)

const (
	defaultFetchTimeout = 5 * time.Second
	metricsPushTimeout  = 10 * time.Second
)

var (
	// ErrMissingDependency is returned by Run and Preview when a required collaborator is nil.
	ErrMissingDependency = errors.New("pipeline: missing dependency")
)

// Deps are the collaborators of a Pipeline. Publisher may be nil in dry-run mode.
type Deps struct {
	Fetcher   FeedFetcher
	Screener  Screener
	Extractor Extractor
	Publisher Publisher
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

// Options tune a Pipeline.
type Options struct {
	Sources      []domain.FeedSource
	FetchTimeout time.Duration
	Selection    selector.Options
	// DryRun extracts accepted items but does not publish them.
	DryRun bool
	// PushgatewayURL enables pushing metrics at the end of each run.
	PushgatewayURL string
	MetricsJob     string
}

// Pipeline drives one run over a fixed registry.
type Pipeline struct {
	deps Deps
	opts Options
}

// New creates a Pipeline. Missing collaborators are reported by Run.
func New(deps Deps, opts Options) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.MetricsJob == "" {
		opts.MetricsJob = metrics.DefaultJob
	}

	return &Pipeline{deps: deps, opts: opts}
}

// Run ingests every source, selects candidates, and extracts and publishes each
// accepted one. Operational failures are logged and counted in the Report; the
// returned error is non-nil only when the pipeline is missing a collaborator.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if err := p.checkDeps(true); err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := p.deps.Logger.With(logger.String("run_id", report.RunID))

	log.Info("Run started",
		logger.Int("sources", len(p.opts.Sources)),
		logger.Int("quota", p.opts.Selection.Quota),
		logger.Int("candidate_cap", p.opts.Selection.CandidateCap),
		logger.Bool("dry_run", p.opts.DryRun),
	)

	ranked, sourcesFailed := p.ingest(ctx, log)
	report.SourcesTotal = len(p.opts.Sources)
	report.SourcesFailed = sourcesFailed
	report.ArticlesParsed = len(ranked)

	if len(ranked) == 0 {
		log.Info("No articles found",
			logger.Int("sources", report.SourcesTotal),
			logger.Int("sources_failed", report.SourcesFailed),
		)
		p.finish(ctx, log, report, OutcomeNoArticles)
		return report, nil
	}

	result := selector.Select(ctx, ranked, p.opts.Selection, p.deps.Screener, log)
	report.Examined = result.Examined
	report.Rejected = result.Rejected
	report.ScreenFailed = result.Failed
	report.Accepted = len(result.Accepted)
	p.deps.Metrics.Selection(len(result.Accepted), result.Rejected, result.Failed)

	if len(result.Accepted) == 0 {
		log.Info("No candidate passed screening", logger.Int("examined", result.Examined))
		p.finish(ctx, log, report, OutcomeNoneAccepted)
		return report, nil
	}

	total := len(result.Accepted)
	for i, item := range result.Accepted {
		log.Info(fmt.Sprintf("[%d/%d] %s (%s)", i+1, total, item.Article.Title,
			item.Article.PublishedAt.Format(time.RFC3339)))
		p.process(ctx, log, item, report)
	}

	p.finish(ctx, log, report, OutcomeCompleted)

	return report, nil
}

// Preview ingests and ranks every source without screening, extracting, or publishing.
func (p *Pipeline) Preview(ctx context.Context) (*PreviewResult, error) {
	if err := p.checkDeps(false); err != nil {
		return nil, err
	}

	ranked, failed := p.ingest(ctx, p.deps.Logger)

	return &PreviewResult{
		Ranked:        ranked,
		SourcesTotal:  len(p.opts.Sources),
		SourcesFailed: failed,
	}, nil
}

func (p *Pipeline) checkDeps(full bool) error {
	if p.deps.Fetcher == nil {
		return fmt.Errorf("%w: fetcher", ErrMissingDependency)
	}
	if !full {
		return nil
	}
	if p.deps.Screener == nil {
		return fmt.Errorf("%w: screener", ErrMissingDependency)
	}
	if p.deps.Extractor == nil {
		return fmt.Errorf("%w: extractor", ErrMissingDependency)
	}
	if p.deps.Publisher == nil && !p.opts.DryRun {
		return fmt.Errorf("%w: publisher", ErrMissingDependency)
	}

	return nil
}

// ingest fetches and parses each source in registry order. Failures are
// logged and skipped; the count of failed sources is returned.
func (p *Pipeline) ingest(ctx context.Context, log logger.Logger) (domain.RankedFeed, int) {
	results := make([]ranking.SourceResult, 0, len(p.opts.Sources))
	failed := 0

	for _, src := range p.opts.Sources {
		articles, err := p.ingestSource(ctx, src)
		p.deps.Metrics.FeedFetched(src.Name, err)

		if err != nil {
			failed++
			logSourceFailure(log, src, err)
			results = append(results, ranking.SourceResult{Source: src, Err: err})
			continue
		}

		p.deps.Metrics.ArticlesFound(src.Name, len(articles))
		log.Debug("Source ingested",
			logger.String("source", src.Name),
			logger.Int("articles", len(articles)),
		)
		results = append(results, ranking.SourceResult{Source: src, Articles: articles})
	}

	return ranking.Aggregate(results), failed
}

func (p *Pipeline) ingestSource(ctx context.Context, src domain.FeedSource) ([]domain.Article, error) {
	raw, err := p.deps.Fetcher.Fetch(ctx, src.URL, p.opts.FetchTimeout)
	if err != nil {
		return nil, err
	}

	articles, err := feed.Parse(raw)
	if err != nil {
		return nil, err
	}

	for i := range articles {
		articles[i].Source = src.Name
	}

	return articles, nil
}

func logSourceFailure(log logger.Logger, src domain.FeedSource, err error) {
	fields := []logger.Field{
		logger.String("source", src.Name),
		logger.String("feed_url", src.URL),
		logger.Error(err),
	}

	var transportErr *feed.TransportError
	if errors.As(err, &transportErr) {
		fields = append(fields,
			logger.String("error_type", string(transportErr.Type)),
			logger.Int("status_code", transportErr.StatusCode),
		)
		if transportErr.Level == feed.LevelError {
			log.Error("Feed unreachable, skipping", fields...)
			return
		}
		log.Warn("Feed unreachable, skipping", fields...)
		return
	}

	var parseErr *feed.ParseError
	if errors.As(err, &parseErr) {
		log.Warn("Feed could not be parsed, skipping", fields...)
		return
	}

	log.Warn("Feed failed, skipping", fields...)
}

// process extracts and publishes one accepted item. Failures are logged and
// counted; they never affect the remaining items.
func (p *Pipeline) process(ctx context.Context, log logger.Logger, item domain.AcceptedItem, report *Report) {
	log = log.With(
		logger.String("title", item.Article.Title),
		logger.String("link", item.Article.Link),
	)

	markdown, err := p.deps.Extractor.Extract(ctx, item.Article.Link, item.Content)
	if err != nil {
		report.ExtractFailed++
		p.deps.Metrics.Item(metrics.StageExtract, metrics.StatusFailed)
		log.Error("Extraction failed", logger.Error(err))
		return
	}

	report.Extracted++
	p.deps.Metrics.Item(metrics.StageExtract, metrics.StatusOK)

	filename := publish.SafeFilename(item.Article.Title, item.Article.Link)

	if p.opts.DryRun {
		p.deps.Metrics.Item(metrics.StagePublish, metrics.StatusSkipped)
		log.Info("Dry run, publish skipped",
			logger.String("filename", filename),
			logger.Int("markdown_chars", len(markdown)),
		)
		return
	}

	htmlURL, err := p.deps.Publisher.Publish(ctx, markdown, item.Article.Title, filename)
	if err != nil {
		report.PublishFailed++
		p.deps.Metrics.Item(metrics.StagePublish, metrics.StatusFailed)

		var publishErr *publish.Error
		if errors.As(err, &publishErr) {
			log.Error("Gist publish rejected",
				logger.Int("status_code", publishErr.StatusCode),
				logger.String("body", publishErr.Body),
			)
			return
		}

		log.Error("Gist publish failed", logger.Error(err))
		return
	}

	report.Published++
	report.PublishedURLs = append(report.PublishedURLs, htmlURL)
	p.deps.Metrics.Item(metrics.StagePublish, metrics.StatusOK)
	log.Info("Gist published", logger.String("url", htmlURL), logger.String("filename", filename))
}

func (p *Pipeline) finish(ctx context.Context, log logger.Logger, report *Report, outcome Outcome) {
	report.Outcome = outcome
	report.Duration = time.Since(report.StartedAt)

	p.deps.Metrics.RunFinished(string(outcome), report.Duration)

	log.Info("Run finished",
		logger.String("outcome", string(outcome)),
		logger.Duration("duration", report.Duration),
		logger.Int("articles", report.ArticlesParsed),
		logger.Int("accepted", report.Accepted),
		logger.Int("published", report.Published),
		logger.Int("extract_failed", report.ExtractFailed),
		logger.Int("publish_failed", report.PublishFailed),
	)

	if p.opts.PushgatewayURL == "" {
		return
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsPushTimeout)
	defer cancel()

	if err := p.deps.Metrics.Push(pushCtx, p.opts.PushgatewayURL, p.opts.MetricsJob); err != nil {
		log.Warn("Metrics push failed", logger.Error(err))
	}
}
