package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/intelligrit/histmap/internal/geodata"
	"github.com/intelligrit/histmap/internal/normalize"
	"github.com/intelligrit/histmap/internal/store"
	"github.com/spf13/cobra"
)

var (
	discoverLat     float64
	discoverLon     float64
	discoverPlace   string
	discoverRadius  int
	discoverFilters []string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover historical landmarks around a point and cache them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if discoverPlace == "" && !cmd.Flags().Changed("lat") {
			return fmt.Errorf("either --place or --lat/--lon is required")
		}
		if !cmd.Flags().Changed("radius") {
			discoverRadius = cfg.Geodata.RadiusMeters
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		lat, lon := discoverLat, discoverLon
		if discoverPlace != "" {
			geocoder := geodata.NewNominatimClient(cfg.Geodata.NominatimURL, cfg.Geodata.RateLimit)
			match, err := geocoder.Search(ctx, discoverPlace)
			if err != nil {
				return fmt.Errorf("geocoding %q: %w", discoverPlace, err)
			}
			if match == nil {
				return fmt.Errorf("no match for %q", discoverPlace)
			}
			lat, lon = match.Lat, match.Lon
			fmt.Printf("Resolved %q to %s (%.4f, %.4f)\n", discoverPlace, match.DisplayName, lat, lon)
		}

		client := geodata.NewClient(cfg.Geodata.OverpassURL, cfg.Geodata.RateLimit)

		logVerbose("querying %s around (%.4f, %.4f) radius %dm", cfg.Geodata.OverpassURL, lat, lon, discoverRadius)
		raw, err := client.Discover(ctx, lat, lon, discoverRadius, discoverFilters)
		if err != nil {
			return fmt.Errorf("discovery: %w", err)
		}

		landmarks := normalize.Normalize(raw, lat, lon)
		if len(landmarks) == 0 {
			fmt.Println("No landmarks found.")
			return nil
		}

		now := time.Now().UTC().Format(time.RFC3339)
		if err := s.PutLandmarks(landmarks, now); err != nil {
			return fmt.Errorf("saving landmarks: %w", err)
		}

		fmt.Printf("Found %d landmarks:\n", len(landmarks))
		for _, lm := range landmarks {
			fmt.Printf("  %-14s %-40s %.2f km\n", lm.ID, lm.Name, lm.DistanceKm)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().Float64Var(&discoverLat, "lat", 0, "Latitude of the query point")
	discoverCmd.Flags().Float64Var(&discoverLon, "lon", 0, "Longitude of the query point")
	discoverCmd.Flags().StringVar(&discoverPlace, "place", "", "Place name to geocode instead of coordinates")
	discoverCmd.Flags().IntVar(&discoverRadius, "radius", 1000, "Search radius in meters")
	discoverCmd.Flags().StringSliceVar(&discoverFilters, "filter", nil, "Tag filters (default: historic, tourism, heritage)")
	rootCmd.AddCommand(discoverCmd)
}
