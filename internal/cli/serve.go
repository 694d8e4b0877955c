package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloglist/internal/app"
	"bloglist/pkg/rabbitmq"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Warn("error during close", "error", err.Error())
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if mq := a.Events(); mq != nil {
			if err := mq.ConsumeEvents(ctx, rabbitmq.AuditLogger(logger.With("component", "audit"))); err != nil {
				logger.Warn("failed to start event consumer", "error", err.Error())
			}
		}

		serverErr := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", cfg.AppPort, "driver", cfg.DBDriver)
			if err := a.Fiber.Listen(cfg.AppPort); err != nil {
				serverErr <- err
			}
		}()

		select {
		case err := <-serverErr:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down server")
		}

		if err := a.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("server gracefully stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
