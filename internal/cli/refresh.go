package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var refreshTimeout time.Duration

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a snapshot refresh from the upstream provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, _, err := buildService(cfg, log)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := svc.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
		fmt.Println("✓ Snapshot refreshed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().DurationVar(&refreshTimeout, "timeout", 2*time.Minute, "overall command timeout")
}
