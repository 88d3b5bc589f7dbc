// Package selector walks the ranked feed and keeps the first candidates whose
// pages carry enough text.
package selector

import (
	"context"
	"errors"

	"github.com/jonesrussell/feedgist/internal/domain"
	"github.com/jonesrussell/feedgist/internal/logger"
)

// Selection defaults.
const (
	DefaultQuota        = 5
	DefaultCandidateCap = 10
)

// Options bounds a selection pass.
type Options struct {
	// Quota is the number of accepted items after which selection stops.
	Quota int
	// CandidateCap is the number of ranked items examined at most.
	CandidateCap int
}

// Result summarizes a selection pass.
type Result struct {
	Accepted []domain.AcceptedItem
	Examined int
	Rejected int
	Failed   int
}

// Select screens ranked articles in order until Quota items are accepted or
// CandidateCap items have been examined, whichever comes first. Rejected and
// failed candidates are logged and skipped; they do not count toward the quota.
// Selection also stops early when ctx is done.
func Select(
	ctx context.Context,
	ranked domain.RankedFeed,
	opts Options,
	screener Screener,
	log logger.Logger,
) Result {
	result := Result{Accepted: make([]domain.AcceptedItem, 0, max(opts.Quota, 0))}

	if opts.Quota <= 0 || opts.CandidateCap <= 0 || len(ranked) == 0 {
		return result
	}

	limit := min(opts.CandidateCap, len(ranked))

	for i := 0; i < limit && len(result.Accepted) < opts.Quota; i++ {
		if ctx.Err() != nil {
			log.Warn("Selection interrupted",
				logger.Int("examined", result.Examined),
				logger.Error(ctx.Err()),
			)
			break
		}

		candidate := ranked[i]
		result.Examined++

		candidateLog := log.With(
			logger.Int("rank", i+1),
			logger.String("title", candidate.Title),
			logger.String("link", candidate.Link),
		)

		content, err := screener.Screen(ctx, candidate)

		switch {
		case err == nil:
			result.Accepted = append(result.Accepted, domain.AcceptedItem{Article: candidate, Content: content})
			candidateLog.Info("Candidate accepted",
				logger.Int("accepted", len(result.Accepted)),
				logger.Int("quota", opts.Quota),
			)
		case errors.Is(err, ErrSubstanceRejected):
			result.Rejected++
			candidateLog.Info("Candidate rejected", logger.Error(err))
		default:
			result.Failed++
			candidateLog.Warn("Candidate could not be screened", logger.Error(err))
		}
	}

	return result
}
