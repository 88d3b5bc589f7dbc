package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/feedgist/internal/logger"
)

func newRunCommand() *cobra.Command {
	var overrides runOverrides

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Long: `Fetch every feed in the registry, rank all articles newest first, and
extract and publish up to the quota of candidates that pass screening.

Example:
  # Convert without publishing
  feedgist run --dry-run

  # Publish at most two gists
  feedgist run --quota 2`,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := p.Run(ctx)
			if err != nil {
				return fmt.Errorf("run pipeline: %w", err)
			}

			deps.Logger.Debug("Run report",
				logger.String("run_id", report.RunID),
				logger.Strings("published_urls", report.PublishedURLs),
			)

			for _, u := range report.PublishedURLs {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&overrides.DryRun, "dry-run", false, "extract markdown but do not publish gists")
	cmd.Flags().IntVar(&overrides.Quota, "quota", 0, "maximum number of articles to publish (default from config)")
	cmd.Flags().IntVar(&overrides.CandidateCap, "candidate-cap", 0, "maximum number of candidates to screen (default from config)")

	return cmd
}
