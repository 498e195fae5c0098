package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	packsGroupBy  string
	packsSize     int
	packsTimeout  time.Duration
	packsNoDigest bool
)

// packsCmd represents the packs command
var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "Build ranked lead packs",
	Long: `Packs groups the full filtered property set by a chosen dimension
(postal_code, city, or state) into ranked, size-capped lead packs.

When an LLM provider is configured, a short digest of the pack build is
attached; the digest never influences scoring or ranking.

Example:
  leadradar packs --group-by city --pack-size 100
  leadradar packs --state tx --min-equity 150000`,
	RunE: runPacks,
}

func init() {
	rootCmd.AddCommand(packsCmd)

	// The listing filter flags apply here too
	packsCmd.Flags().AddFlagSet(listCmd.Flags())
	packsCmd.Flags().StringVar(&packsGroupBy, "group-by", "postal_code", "grouping dimension: postal_code, city, or state")
	packsCmd.Flags().IntVar(&packsSize, "pack-size", 200, "maximum listings per pack")
	packsCmd.Flags().DurationVar(&packsTimeout, "pack-timeout", 2*time.Minute, "overall command timeout")
	packsCmd.Flags().BoolVar(&packsNoDigest, "no-digest", false, "skip the LLM digest even when configured")
}

func runPacks(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if packsNoDigest {
		cfg.LLM.Provider = ""
	}

	svc, _, err := buildService(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), packsTimeout)
	defer cancel()

	response, err := svc.LeadPacks(ctx, listFilters(cmd), packsGroupBy, packsSize)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Built %d lead packs\n", len(response.Packs))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
