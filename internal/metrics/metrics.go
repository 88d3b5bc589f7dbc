// Package metrics records pipeline run statistics in Prometheus collectors.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	// Namespace prefixes every metric name.
	Namespace = "feedgist"

	// DefaultJob is the Pushgateway job label.
	DefaultJob = "feedgist"
)

// Label values.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"

	StageExtract = "extract"
	StagePublish = "publish"

	CandidateAccepted = "accepted"
	CandidateRejected = "rejected"
	CandidateFailed   = "failed"
)

// Metrics holds the collectors for one process. Each instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	FeedsFetched     *prometheus.CounterVec
	ArticlesParsed   *prometheus.CounterVec
	Candidates       *prometheus.CounterVec
	ItemsProcessed   *prometheus.CounterVec
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
}

// New creates and registers all collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FeedsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "feeds_fetched_total",
			Help:      "Feed fetch attempts by source and status",
		}, []string{"source", "status"}),
		ArticlesParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "articles_parsed_total",
			Help:      "Articles with a usable date parsed per source",
		}, []string{"source"}),
		Candidates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "candidates_total",
			Help:      "Screened candidates by outcome",
		}, []string{"outcome"}),
		ItemsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "items_processed_total",
			Help:      "Accepted items handled per stage and status",
		}, []string{"stage", "status"}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// FeedFetched counts one ingest attempt for source.
func (m *Metrics) FeedFetched(source string, err error) {
	m.FeedsFetched.WithLabelValues(source, statusOf(err)).Inc()
}

// ArticlesFound adds n parsed articles for source.
func (m *Metrics) ArticlesFound(source string, n int) {
	m.ArticlesParsed.WithLabelValues(source).Add(float64(n))
}

// Selection records the outcome counts of a selection pass.
func (m *Metrics) Selection(accepted, rejected, failed int) {
	m.Candidates.WithLabelValues(CandidateAccepted).Add(float64(accepted))
	m.Candidates.WithLabelValues(CandidateRejected).Add(float64(rejected))
	m.Candidates.WithLabelValues(CandidateFailed).Add(float64(failed))
}

// Item counts one accepted item passing through stage with status.
func (m *Metrics) Item(stage, status string) {
	m.ItemsProcessed.WithLabelValues(stage, status).Inc()
}

// RunFinished records a run's outcome and duration.
func (m *Metrics) RunFinished(outcome string, elapsed time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.LastRunTimestamp.SetToCurrentTime()
}

// Push sends every collector to the Pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if job == "" {
		job = DefaultJob
	}

	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}

	return nil
}

func statusOf(err error) string {
	if err != nil {
		return StatusFailed
	}
	return StatusOK
}
