package pipeline

import (
	"time"

	"github.com/jonesrussell/feedgist/internal/domain"
)

// Outcome is the terminal state of a run. None of them is a failure.
type Outcome string

const (
	// OutcomeNoArticles means no source produced a single dated article.
	OutcomeNoArticles Outcome = "no_articles"
	// OutcomeNoneAccepted means articles existed but every candidate was rejected or failed.
	OutcomeNoneAccepted Outcome = "none_accepted"
	// OutcomeCompleted means at least one candidate was accepted and processed.
	OutcomeCompleted Outcome = "completed"
)

// Report summarizes one run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	SourcesTotal   int
	SourcesFailed  int
	ArticlesParsed int

	Examined     int
	Rejected     int
	ScreenFailed int
	Accepted     int

	Extracted     int
	ExtractFailed int
	Published     int
	PublishFailed int
	PublishedURLs []string

	Outcome Outcome
}

// PreviewResult is the ranked feed produced without screening anything.
type PreviewResult struct {
	Ranked        domain.RankedFeed
	SourcesTotal  int
	SourcesFailed int
}
