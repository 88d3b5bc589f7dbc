package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgist/internal/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := metrics.New(nil)

	m.FeedFetched("Linux.com News", nil)
	m.FeedFetched("Planet Ubuntu", errors.New("HTTP 404"))
	m.ArticlesFound("Linux.com News", 7)
	m.Selection(5, 2, 1)
	m.Item(metrics.StageExtract, metrics.StatusOK)
	m.Item(metrics.StagePublish, metrics.StatusFailed)
	m.RunFinished("completed", 3*time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.FeedsFetched.WithLabelValues("Linux.com News", metrics.StatusOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FeedsFetched.WithLabelValues("Planet Ubuntu", metrics.StatusFailed)), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.ArticlesParsed.WithLabelValues("Linux.com News")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(m.Candidates.WithLabelValues(metrics.CandidateAccepted)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Candidates.WithLabelValues(metrics.CandidateRejected)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Candidates.WithLabelValues(metrics.CandidateFailed)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ItemsProcessed.WithLabelValues(metrics.StagePublish, metrics.StatusFailed)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RunsTotal.WithLabelValues("completed")), 0)
	assert.Positive(t, testutil.ToFloat64(m.LastRunTimestamp))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	t.Parallel()

	first := metrics.New(nil)
	second := metrics.New(nil)

	first.Selection(1, 0, 0)

	assert.InDelta(t, 0, testutil.ToFloat64(second.Candidates.WithLabelValues(metrics.CandidateAccepted)), 0)
	assert.NotSame(t, first.Registry(), second.Registry())
}

func TestMetrics_Push(t *testing.T) {
	t.Parallel()

	var (
		gotMethod string
		gotPath   string
		gotBody   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := metrics.New(nil)
	m.RunFinished("no_articles", time.Second)

	require.NoError(t, m.Push(context.Background(), srv.URL, ""))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.True(t, strings.HasPrefix(gotPath, "/metrics/job/"+metrics.DefaultJob), gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestMetrics_PushFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := metrics.New(nil).Push(context.Background(), srv.URL, "feedgist-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), srv.URL)
}
