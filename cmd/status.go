package cmd

import (
	"fmt"

	"github.com/intelligrit/histmap/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Printf("Cache Status\n")
		fmt.Printf("============\n")
		fmt.Printf("Landmarks:          %d\n", s.LandmarkCount())
		fmt.Printf("Historical texts:   %d\n", s.TextCount())
		fmt.Printf("Generated answers:  %d\n", s.AnswerCount())
		fmt.Printf("Evaluation results: %d\n", s.EvaluationCount())

		landmarks, err := s.ListLandmarks()
		if err != nil {
			return err
		}
		if len(landmarks) > 0 {
			fmt.Printf("\nLandmarks\n")
			fmt.Printf("---------\n")
			for _, lm := range landmarks {
				fmt.Printf("  %-14s %-40s %.2f km\n", lm.ID, lm.Name, lm.DistanceKm)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
