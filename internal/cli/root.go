// Package cli implements the postmetrics command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"postmetrics/internal/app"
	"postmetrics/internal/config"
	"postmetrics/pkg/log"
	"postmetrics/pkg/log/transporters"
)

var (
	envFile    string
	jsonOutput bool
	verbose    bool

	components *app.App
	logger     *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "postmetrics",
	Short: "Read engagement metrics of Facebook, Twitter/X, Instagram and TikTok posts",
	Long: `Read likes, comments, shares, replies, retweets and quotes of public posts.

Configuration is read from the environment (and a .env file):
` + config.Description(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// Execute runs the command line until ctx is cancelled.
func Execute(ctx context.Context) error {
	defer teardown()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	level := cfg.LogLevel()
	if verbose {
		level = log.Debug
	}
	logger = log.New(level, transporters.NewConsole())
	log.SetDefault(logger)

	components, err = app.New(cfg)
	return err
}

func teardown() {
	if components != nil {
		components.Close()
		components = nil
	}
	if logger != nil {
		logger.Close()
		logger = nil
	}
}
