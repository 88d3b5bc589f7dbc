package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/feedgist/internal/logger"
	"github.com/jonesrussell/feedgist/internal/scheduler"
)

func newScheduleCommand() *cobra.Command {
	var (
		spec      string
		immediate bool
		overrides runOverrides
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule until interrupted",
		Long: `Keep running and trigger a pipeline run on every tick of a standard
five-field cron expression. A tick that arrives while a run is still in
progress is skipped.

Example:
  feedgist schedule --cron "0 7 * * *"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := loadDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			if err = deps.Config.RequireCredentials(overrides.DryRun); err != nil {
				return err
			}

			p, err := newPipeline(deps, overrides)
			if err != nil {
				return err
			}

			if spec == "" {
				spec = deps.Config.Schedule.Cron
			}

			job := func(ctx context.Context) error {
				_, runErr := p.Run(ctx)
				return runErr
			}

			s, err := scheduler.New(spec, job, deps.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if immediate {
				if err = s.RunNow(ctx); err != nil {
					deps.Logger.Error("Initial run failed", logger.Error(err))
				}
			}

			if err = s.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			s.Stop()

			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression (default from config schedule.cron)")
	cmd.Flags().BoolVar(&immediate, "now", false, "run once immediately before waiting for the first tick")
	cmd.Flags().BoolVar(&overrides.DryRun, "dry-run", false, "extract markdown but do not publish gists")
	cmd.Flags().IntVar(&overrides.Quota, "quota", 0, "maximum number of articles to publish per run")
	cmd.Flags().IntVar(&overrides.CandidateCap, "candidate-cap", 0, "maximum number of candidates to screen per run")

	return cmd
}
