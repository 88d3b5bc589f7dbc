package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured feed registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := loadDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			registry, err := deps.Config.Registry()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Name", "URL"})

			for i, src := range registry.Sources() {
				t.AppendRow(table.Row{i + 1, src.Name, src.URL})
			}

			t.Render()

			return nil
		},
	}
}
