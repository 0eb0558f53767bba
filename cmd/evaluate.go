package cmd

import (
	"fmt"

	"github.com/intelligrit/histmap/internal/eval"
	"github.com/intelligrit/histmap/internal/store"
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the built-in evaluation suite and record the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		results, err := eval.Run(s)
		if err != nil {
			return fmt.Errorf("recording results: %w", err)
		}

		var failed int
		for _, r := range results {
			mark := "PASS"
			if !r.Passed {
				mark = "FAIL"
				failed++
			}
			fmt.Printf("  [%s] %s/%s\n", mark, r.Category, r.TestName)
			if r.Error != "" {
				fmt.Printf("         %s\n", r.Error)
			}
		}

		fmt.Printf("\n%d checks, %d failed\n", len(results), failed)
		if failed > 0 {
			return fmt.Errorf("%d evaluation checks failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
