package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/intelligrit/histmap/internal/answer"
	"github.com/intelligrit/histmap/internal/history"
	"github.com/intelligrit/histmap/internal/llm"
	"github.com/intelligrit/histmap/internal/model"
	"github.com/intelligrit/histmap/internal/store"
	"github.com/spf13/cobra"
)

var (
	askLandmark string
	askQuestion string
	askYear     int
	askModel    string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a grounded question about a discovered landmark",
	RunE: func(cmd *cobra.Command, args []string) error {
		if askLandmark == "" || askQuestion == "" {
			return fmt.Errorf("--landmark and --question are required")
		}
		if !cmd.Flags().Changed("model") {
			askModel = cfg.Ollama.Model
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		lm, err := s.GetLandmark(askLandmark)
		if err != nil {
			return err
		}
		if lm == nil {
			return fmt.Errorf("unknown landmark %s (run discover first)", askLandmark)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		gateway := &answer.Gateway{
			Store: s,
			Resolver: &history.Resolver{
				Store:     s,
				Wikipedia: history.NewWikipediaClient(cfg.Wiki.WikipediaURL, cfg.Wiki.MaxTextLen),
				Wikidata:  history.NewWikidataClient(cfg.Wiki.WikidataURL, cfg.Wiki.MaxTextLen),
			},
			LLM:         llm.NewClient(cfg.Ollama.URL, askModel, cfg.Ollama.Temperature),
			Model:       askModel,
			Temperature: cfg.Ollama.Temperature,
		}

		var year *int
		if cmd.Flags().Changed("year") {
			year = &askYear
		}

		ans := gateway.Answer(ctx, lm, askQuestion, year)
		if ans.Status == model.StatusError {
			return fmt.Errorf("answer generation failed: %s", ans.Error)
		}

		fmt.Printf("%s\n\n%s\n", lm.Name, ans.Answer)
		logVerbose("model=%s temperature=%.2f", ans.Model, ans.Temperature)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askLandmark, "landmark", "", "Landmark id (e.g. node-42)")
	askCmd.Flags().StringVar(&askQuestion, "question", "", "Question to ask")
	askCmd.Flags().IntVar(&askYear, "year", 0, "Focus the answer on this year")
	askCmd.Flags().StringVar(&askModel, "model", "llama2", "Ollama model to use")
	rootCmd.AddCommand(askCmd)
}
