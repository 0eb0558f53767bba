package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/intelligrit/histmap/internal/model"
	"github.com/intelligrit/histmap/internal/store"
)

//go:embed all:static
var staticFS embed.FS

// Discoverer queries the geodata API for raw records around a point.
type Discoverer interface {
	Discover(ctx context.Context, lat, lon float64, radiusMeters int, filters []string) ([]model.RawGeoRecord, error)
}

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Search(ctx context.Context, name string) (*model.PlaceMatch, error)
}

// TextResolver produces the historical text record for a landmark.
type TextResolver interface {
	Resolve(ctx context.Context, landmarkID, name, wikipediaRef, wikidataID string) *model.HistoricalTextRecord
}

// Answerer answers a grounded question about a landmark.
type Answerer interface {
	Answer(ctx context.Context, lm *model.Landmark, question string, year *int) *model.GeneratedAnswer
}

// Server serves the interactive map web app and API.
type Server struct {
	Store    *store.Store
	Geo      Discoverer
	Geocoder Geocoder
	Resolver TextResolver
	Gateway  Answerer

	Addr          string
	DefaultRadius int
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/discover", s.handleDiscover)
	mux.HandleFunc("/api/geocode", s.handleGeocode)
	mux.HandleFunc("/api/retrieve-text", s.handleRetrieveText)
	mux.HandleFunc("/api/generate-answer", s.handleGenerateAnswer)
	mux.HandleFunc("/api/landmarks", s.handleLandmarks)
	mux.HandleFunc("/api/statistics", s.handleStatistics)
	mux.HandleFunc("/api/evaluation", s.handleEvaluation)

	// Static files
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("creating sub filesystem: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticSub)))

	fmt.Printf("Serving at http://%s\n", s.Addr)
	return http.ListenAndServe(s.Addr, mux)
}
