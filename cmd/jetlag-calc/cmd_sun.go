package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chronoplan/go-jetlag/internal/sunlight"
)

var (
	sunLat  float64
	sunLon  float64
	sunFrom string
	sunTo   string
)

var sunCmd = &cobra.Command{
	Use:   "sun",
	Short: "Print daylight windows for a coordinate and date range",
	RunE:  runSun,
}

func init() {
	sunCmd.Flags().Float64Var(&sunLat, "lat", 0, "latitude in decimal degrees")
	sunCmd.Flags().Float64Var(&sunLon, "lon", 0, "longitude in decimal degrees")
	sunCmd.Flags().StringVar(&sunFrom, "from", "", "first date, YYYY-MM-DD (required)")
	sunCmd.Flags().StringVar(&sunTo, "to", "", "last date, YYYY-MM-DD (defaults to --from)")
	_ = sunCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(sunCmd)
}

func runSun(cmd *cobra.Command, args []string) error {
	coord := sunlight.Coordinate{Lat: sunLat, Lon: sunLon}
	if err := coord.Validate(); err != nil {
		return err
	}

	from, err := time.Parse(time.DateOnly, sunFrom)
	if err != nil {
		return fmt.Errorf("invalid --from %q: %w", sunFrom, err)
	}
	to := from
	if sunTo != "" {
		if to, err = time.Parse(time.DateOnly, sunTo); err != nil {
			return fmt.Errorf("invalid --to %q: %w", sunTo, err)
		}
	}

	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"daylight": sunlight.Range(coord, from, to),
	})
}
