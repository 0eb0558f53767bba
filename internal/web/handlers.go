package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/intelligrit/histmap/internal/model"
	"github.com/intelligrit/histmap/internal/normalize"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "ok",
		"service": "histmap API",
		"version": "1.0",
	})
}

type discoverRequest struct {
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	RadiusMeters int      `json:"radius_meters"`
	Filters      []string `json:"filters"`
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "missing lat or lon")
		return
	}

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = s.DefaultRadius
	}

	raw, err := s.Geo.Discover(r.Context(), *req.Lat, *req.Lon, radius, req.Filters)
	if err != nil {
		writeError(w, http.StatusBadGateway, "discovery failed: "+err.Error())
		return
	}

	landmarks := normalize.Normalize(raw, *req.Lat, *req.Lon)

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.Store.PutLandmarks(landmarks, now); err != nil {
		writeError(w, http.StatusInternalServerError, "saving landmarks: "+err.Error())
		return
	}

	writeJSON(w, landmarks)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("q")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}

	match, err := s.Geocoder.Search(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusBadGateway, "geocoding failed: "+err.Error())
		return
	}
	if match == nil {
		writeError(w, http.StatusNotFound, "no match for "+name)
		return
	}

	writeJSON(w, match)
}

type retrieveTextRequest struct {
	LandmarkID   string `json:"landmark_id"`
	LandmarkName string `json:"landmark_name"`
	WikidataID   string `json:"wikidata_id"`
	WikipediaRef string `json:"wikipedia"`
}

func (s *Server) handleRetrieveText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req retrieveTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.LandmarkName == "" && req.LandmarkID == "" {
		writeError(w, http.StatusBadRequest, "missing landmark_name")
		return
	}

	id := req.LandmarkID
	if id == "" {
		id = deriveLandmarkID(req.LandmarkName)
	}

	rec := s.Resolver.Resolve(r.Context(), id, req.LandmarkName, req.WikipediaRef, req.WikidataID)
	writeJSON(w, rec)
}

type generateAnswerRequest struct {
	LandmarkID string `json:"landmark_id"`
	Question   string `json:"question"`
	Year       *int   `json:"year"`
}

func (s *Server) handleGenerateAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req generateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.LandmarkID == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "missing landmark_id or question")
		return
	}

	lm, err := s.Store.GetLandmark(req.LandmarkID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading landmark: "+err.Error())
		return
	}
	if lm == nil {
		writeError(w, http.StatusNotFound, "unknown landmark "+req.LandmarkID+" (run discovery first)")
		return
	}

	ans := s.Gateway.Answer(r.Context(), lm, req.Question, req.Year)
	writeJSON(w, ans)
}

func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	landmarks, err := s.Store.ListLandmarks()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if landmarks == nil {
		writeJSON(w, []any{})
		return
	}
	writeJSON(w, landmarks)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":            "success",
		"total_landmarks":   s.Store.LandmarkCount(),
		"total_texts":       s.Store.TextCount(),
		"total_answers":     s.Store.AnswerCount(),
		"total_evaluations": s.Store.EvaluationCount(),
	})
}

func (s *Server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	results, err := s.Store.ListEvaluations(r.URL.Query().Get("test_name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []model.EvaluationRecord{}
	}
	writeJSON(w, map[string]any{
		"status":  "success",
		"results": results,
		"count":   len(results),
	})
}

// deriveLandmarkID builds a stable identity for text retrieved by bare name,
// outside any discovery result set.
func deriveLandmarkID(name string) string {
	return "lm-" + strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Wildcard CORS: this is a local development tool, not a public API.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if v == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "error",
		"error":  detail,
	})
}
