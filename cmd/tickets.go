package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ticketbot/internal/application"
	"ticketbot/pkg/config"
	"ticketbot/pkg/logger"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Inspect submitted tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the oldest tickets as JSON lines",
	RunE:  runTicketsList,
}

var (
	listLimit int
	listOut   string
)

func init() {
	ticketsListCmd.Flags().IntVar(&listLimit, "limit", 10, "number of tickets to print")
	ticketsListCmd.Flags().StringVar(&listOut, "out", "", "directory to copy ticket media into")
	ticketsCmd.AddCommand(ticketsListCmd)
}

func runTicketsList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Setup(cfg.Environment, cfg.LogLevel)

	return application.ListTickets(cmd.Context(), cfg, listLimit, cmd.OutOrStdout(), listOut)
}
