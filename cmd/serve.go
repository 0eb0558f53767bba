package cmd

import (
	"fmt"

	"github.com/intelligrit/histmap/internal/answer"
	"github.com/intelligrit/histmap/internal/geodata"
	"github.com/intelligrit/histmap/internal/history"
	"github.com/intelligrit/histmap/internal/llm"
	"github.com/intelligrit/histmap/internal/store"
	"github.com/intelligrit/histmap/internal/web"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive history map web app",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("host") {
			serveHost = cfg.Server.Host
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Server.Port
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		resolver := &history.Resolver{
			Store:     s,
			Wikipedia: history.NewWikipediaClient(cfg.Wiki.WikipediaURL, cfg.Wiki.MaxTextLen),
			Wikidata:  history.NewWikidataClient(cfg.Wiki.WikidataURL, cfg.Wiki.MaxTextLen),
		}
		gateway := &answer.Gateway{
			Store:       s,
			Resolver:    resolver,
			LLM:         llm.NewClient(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Ollama.Temperature),
			Model:       cfg.Ollama.Model,
			Temperature: cfg.Ollama.Temperature,
		}

		srv := &web.Server{
			Store:         s,
			Geo:           geodata.NewClient(cfg.Geodata.OverpassURL, cfg.Geodata.RateLimit),
			Geocoder:      geodata.NewNominatimClient(cfg.Geodata.NominatimURL, cfg.Geodata.RateLimit),
			Resolver:      resolver,
			Gateway:       gateway,
			Addr:          fmt.Sprintf("%s:%d", serveHost, servePort),
			DefaultRadius: cfg.Geodata.RadiusMeters,
		}
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
