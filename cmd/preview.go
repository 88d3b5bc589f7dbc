package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/feedgist/internal/ranking"
)

const defaultPreviewLimit = 20

func newPreviewCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the ranked feed without screening or publishing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := loadDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			p, err := newPreviewPipeline(deps)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := p.Preview(ctx)
			if err != nil {
				return fmt.Errorf("preview: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Published", "Source", "Title", "Link"})

			for i, article := range ranking.Top(result.Ranked, limit) {
				t.AppendRow(table.Row{
					i + 1,
					article.PublishedAt.Format(time.RFC3339),
					article.Source,
					article.Title,
					article.Link,
				})
			}

			t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d articles", len(result.Ranked)),
				fmt.Sprintf("%d/%d sources failed", result.SourcesFailed, result.SourcesTotal)})
			t.Render()

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultPreviewLimit, "number of ranked articles to show")

	return cmd
}
