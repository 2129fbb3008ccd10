package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ticketbot/internal/application"
	"ticketbot/pkg/config"
	"ticketbot/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (long polling in development, webhook in production)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Setup(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := application.NewBot(ctx, cfg)
	if err != nil {
		logger.Error("Failed to start: %v", err)
		return err
	}
	defer bot.Close()

	return bot.Run(ctx)
}
