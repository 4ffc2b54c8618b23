package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matdash/matdash/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the automation backend once and print its state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := buildLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		_, _, statusClient := buildClients(cfg, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Poll.TimeoutSeconds)*time.Second)
		defer cancel()

		health, probeErr := statusClient.Fetch(ctx)
		state := status.Classify(health, probeErr)
		details := ""
		if health != nil {
			details = health.Details
		}
		ind := status.Describe(state, details)

		fmt.Printf("%s — %s\n", ind.Label, ind.Tooltip)
		if health != nil && health.Mode != "" {
			fmt.Printf("Mode: %s\n", health.Mode)
		}

		if count, err := statusClient.PendingSuggestions(ctx); err == nil {
			fmt.Printf("Pending AI suggestions: %d\n", count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
