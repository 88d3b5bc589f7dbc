// Package scheduler runs a job on a cron schedule, one execution at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/feedgist/internal/logger"
)

// ErrAlreadyStarted is returned by Start on a running scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Job is one scheduled unit of work. It receives the scheduler's context,
// which is cancelled by Stop.
type Job func(ctx context.Context) error

// Scheduler triggers Job on a standard five-field cron expression. A trigger
// that fires while the previous run is still going is skipped.
type Scheduler struct {
	logger     logger.Logger
	cron       *cron.Cron
	cronParser cron.Parser
	spec       string
	job        Job

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	entryID cron.EntryID
	started bool
}

// New validates spec and builds a Scheduler.
func New(spec string, job Job, log logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.NewNop()
	}

	cronParser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := cronParser.Parse(spec); err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}

	cronLog := cronLogger{log: log}
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &Scheduler{
		logger:     log,
		cron:       c,
		cronParser: cronParser,
		spec:       spec,
		job:        job,
	}, nil
}

// Start registers the job and starts the cron loop. It does not block.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.spec, s.trigger)
	if err != nil {
		s.cancel()
		return fmt.Errorf("schedule job: %w", err)
	}
	s.entryID = entryID
	s.started = true

	s.cron.Start()
	s.logger.Info("Scheduler started",
		logger.String("schedule", s.spec),
		logger.Time("next_run", s.Next(time.Now())),
	)

	return nil
}

// Stop cancels the running job, if any, and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")

	cancel()
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()

	s.logger.Info("Scheduler stopped")
}

// Next reports when the job runs next, relative to from.
func (s *Scheduler) Next(from time.Time) time.Time {
	schedule, err := s.cronParser.Parse(s.spec)
	if err != nil {
		return time.Time{}
	}
	return schedule.Next(from)
}

// RunNow executes the job synchronously outside of the cron loop.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.run(ctx)
}

func (s *Scheduler) trigger() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if err := s.run(ctx); err != nil {
		s.logger.Error("Scheduled run failed", logger.Error(err))
	}
}

func (s *Scheduler) run(ctx context.Context) error {
	start := time.Now()
	s.logger.Info("Scheduled run triggered", logger.String("schedule", s.spec))

	err := s.job(ctx)

	s.logger.Info("Scheduled run finished",
		logger.Duration("duration", time.Since(start)),
		logger.Time("next_run", s.Next(time.Now())),
	)

	return err
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, toFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(toFields(keysAndValues), logger.Error(err))...)
}

func toFields(keysAndValues []any) []logger.Field {
	fields := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields = append(fields, logger.Any(key, keysAndValues[i+1]))
	}
	return fields
}
