// Package cmd implements the feedgist command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/feedgist/internal/config"
	"github.com/jonesrussell/feedgist/internal/logger"
)

// Version is set at build time with -ldflags "-X github.com/jonesrussell/feedgist/cmd.Version=...".
var Version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug forces debug logging.
	debug bool

	// rootCmd represents the root command for the feedgist CLI.
	rootCmd = &cobra.Command{
		Use:   "feedgist",
		Short: "Publish the newest substantial articles from a set of feeds as gists",
		Long: `feedgist reads a fixed registry of RSS and Atom feeds, ranks every article
newest first, screens candidates for real content, converts each accepted page
to markdown with a language model, and publishes the result as a GitHub gist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// commandDeps holds what every subcommand needs once configuration is loaded.
type commandDeps struct {
	Config *config.Config
	Logger logger.Logger
}

// Execute runs the root command.
func Execute() error {
	// .env is optional.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "feedgist version %s\n", Version)
		},
	})

	rootCmd.AddCommand(
		newRunCommand(),
		newPreviewCommand(),
		newSourcesCommand(),
		newScheduleCommand(),
	)
}

// loadDeps reads configuration and builds the logger.
func loadDeps(cmd *cobra.Command) (*commandDeps, error) {
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}

	if err = v.BindPFlag("app.debug", cmd.Root().PersistentFlags().Lookup("debug")); err != nil {
		return nil, fmt.Errorf("failed to bind debug flag: %w", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	log = log.With(logger.String("app", cfg.App.Name))

	return &commandDeps{Config: cfg, Logger: log}, nil
}
