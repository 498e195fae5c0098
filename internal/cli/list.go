package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/leadradar/internal/model"
)

var (
	listCity         string
	listState        string
	listPostalCode   string
	listOccupancy    string
	listSearch       string
	listMinEquity    float64
	listMinScore     float64
	listMinValueGap  float64
	listCenterLat    float64
	listCenterLon    float64
	listRadiusMiles  float64
	listLimit        int
	listOffset       int
	listCSV          bool
	listForceRefresh bool
	listTimeout      time.Duration
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scored properties",
	Long: `List fetches the current property snapshot, scores it, applies the
requested filters and prints one page of results ordered by listing score.

Example:
  leadradar list --city austin --min-equity 200000
  leadradar list --center-lat 30.26 --center-lon -97.74 --radius 5
  leadradar list --csv > leads.csv`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listCity, "city", "", "city filter (contains match)")
	listCmd.Flags().StringVar(&listState, "state", "", "state prefix filter")
	listCmd.Flags().StringVar(&listPostalCode, "postal-code", "", "postal code prefix filter")
	listCmd.Flags().StringVar(&listOccupancy, "owner-occupancy", "", "owner_occupied or absentee")
	listCmd.Flags().StringVar(&listSearch, "search", "", "free text search across address, owner and ids")
	listCmd.Flags().Float64Var(&listMinEquity, "min-equity", 0, "minimum available equity in USD")
	listCmd.Flags().Float64Var(&listMinScore, "min-score", 0, "minimum listing score (0-100)")
	listCmd.Flags().Float64Var(&listMinValueGap, "min-value-gap", 0, "minimum value gap in USD")
	listCmd.Flags().Float64Var(&listCenterLat, "center-lat", 0, "latitude for radius filter")
	listCmd.Flags().Float64Var(&listCenterLon, "center-lon", 0, "longitude for radius filter")
	listCmd.Flags().Float64Var(&listRadiusMiles, "radius", 0, "radius in miles for spatial search")
	listCmd.Flags().IntVar(&listLimit, "limit", model.DefaultLimit, "maximum records to return")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "pagination offset")
	listCmd.Flags().BoolVar(&listCSV, "csv", false, "emit CSV instead of JSON")
	listCmd.Flags().BoolVar(&listForceRefresh, "refresh", false, "force a snapshot refresh first")
	listCmd.Flags().DurationVar(&listTimeout, "timeout", 2*time.Minute, "overall command timeout")
}

// listFilters assembles Filters from the shared listing flags
func listFilters(cmd *cobra.Command) model.Filters {
	filters := model.Filters{
		City:           listCity,
		State:          listState,
		PostalCode:     listPostalCode,
		OwnerOccupancy: model.Occupancy(listOccupancy),
		Search:         listSearch,
		Limit:          listLimit,
		Offset:         listOffset,
	}
	if cmd.Flags().Changed("min-equity") {
		filters.MinEquity = model.Float(listMinEquity)
	}
	if cmd.Flags().Changed("min-score") {
		filters.MinScore = model.Float(listMinScore)
	}
	if cmd.Flags().Changed("min-value-gap") {
		filters.MinValueGap = model.Float(listMinValueGap)
	}
	if cmd.Flags().Changed("center-lat") {
		filters.CenterLatitude = model.Float(listCenterLat)
	}
	if cmd.Flags().Changed("center-lon") {
		filters.CenterLongitude = model.Float(listCenterLon)
	}
	if cmd.Flags().Changed("radius") {
		filters.RadiusMiles = model.Float(listRadiusMiles)
	}
	return filters
}

func runList(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, _, err := buildService(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()

	if listForceRefresh {
		if err := svc.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
	}

	filters := listFilters(cmd)

	if listCSV {
		rows, err := svc.ExportRows(ctx, filters)
		if err != nil {
			return err
		}
		writer := csv.NewWriter(os.Stdout)
		return writer.WriteAll(rows)
	}

	response, err := svc.List(ctx, filters)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d of %d matching properties\n", len(response.Items), response.Total)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
