package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"bloglist/internal/app"
	"bloglist/internal/config"
	"bloglist/internal/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bloglist",
	Short: "Blog list - bookmark and like blog posts",
	Long: `bloglist serves a small REST API where registered users bookmark blog
posts, like them and remove the ones they own.

Configuration is read from an optional YAML file and from BLOGLIST_*
environment variables. BLOGLIST_JWT_SECRET is required.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
}

// initApp assembles the service for commands that only need its services.
func initApp() (*app.App, error) {
	a, err := app.New(cfg, logger, app.WithRequestLog(io.Discard))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}
