package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intelligrit/histmap/internal/model"
	"github.com/intelligrit/histmap/internal/store"
)

type fakeGeo struct {
	elements []model.RawGeoRecord
}

func (g *fakeGeo) Discover(_ context.Context, _, _ float64, _ int, _ []string) ([]model.RawGeoRecord, error) {
	return g.elements, nil
}

type fakeGeocoder struct {
	match *model.PlaceMatch
}

func (g *fakeGeocoder) Search(_ context.Context, _ string) (*model.PlaceMatch, error) {
	return g.match, nil
}

type fakeTextResolver struct {
	lastID string
}

func (r *fakeTextResolver) Resolve(_ context.Context, landmarkID, _, _, _ string) *model.HistoricalTextRecord {
	r.lastID = landmarkID
	return &model.HistoricalTextRecord{LandmarkID: landmarkID, Status: model.StatusSuccess, Text: "text", Source: "Wikipedia"}
}

type fakeAnswerer struct{}

func (a *fakeAnswerer) Answer(_ context.Context, lm *model.Landmark, question string, year *int) *model.GeneratedAnswer {
	return &model.GeneratedAnswer{
		LandmarkID: lm.ID, Question: question, Year: year,
		Answer: "generated", Status: model.StatusSuccess,
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := filepath.Join(os.TempDir(), "histmap-web-test-"+t.Name())
	os.RemoveAll(dir)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := store.New(dir)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Server{
		Store:         s,
		Geo:           &fakeGeo{},
		Geocoder:      &fakeGeocoder{},
		Resolver:      &fakeTextResolver{},
		Gateway:       &fakeAnswerer{},
		Addr:          "localhost:0",
		DefaultRadius: 1000,
	}
}

func coord(v float64) *float64 { return &v }

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected ok status, got %q", body["status"])
	}
}

func TestHandleDiscover(t *testing.T) {
	srv := testServer(t)

	tags := model.NewTagMap()
	tags.Set("name", "Old Fort")
	srv.Geo = &fakeGeo{elements: []model.RawGeoRecord{
		{Type: model.KindNode, ID: 42, Lat: coord(51.9), Lon: coord(-8.47), Tags: tags},
		{Type: model.KindRelation, ID: 9}, // no coordinate, dropped
	}}

	body := strings.NewReader(`{"lat": 51.8985, "lon": -8.4756}`)
	req := httptest.NewRequest("POST", "/api/discover", body)
	w := httptest.NewRecorder()
	srv.handleDiscover(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var landmarks []model.Landmark
	if err := json.NewDecoder(w.Body).Decode(&landmarks); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(landmarks) != 1 {
		t.Fatalf("expected 1 landmark, got %d", len(landmarks))
	}
	if landmarks[0].ID != "node-42" {
		t.Errorf("unexpected landmark id %q", landmarks[0].ID)
	}

	// Discovery persists the result set.
	stored, err := srv.Store.GetLandmark("node-42")
	if err != nil || stored == nil {
		t.Fatalf("landmark not persisted: %v", err)
	}
}

func TestHandleDiscoverMissingCoordinates(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/discover", strings.NewReader(`{"lat": 51.9}`))
	w := httptest.NewRecorder()
	srv.handleDiscover(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleGeocode(t *testing.T) {
	srv := testServer(t)
	srv.Geocoder = &fakeGeocoder{match: &model.PlaceMatch{Lat: 51.8985, Lon: -8.4756, DisplayName: "Cork"}}

	req := httptest.NewRequest("GET", "/api/geocode?q=Cork", nil)
	w := httptest.NewRecorder()
	srv.handleGeocode(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var match model.PlaceMatch
	if err := json.NewDecoder(w.Body).Decode(&match); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if match.DisplayName != "Cork" {
		t.Errorf("unexpected match: %+v", match)
	}
}

func TestHandleGeocodeNoMatch(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/geocode?q=nowhere", nil)
	w := httptest.NewRecorder()
	srv.handleGeocode(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandleRetrieveText(t *testing.T) {
	srv := testServer(t)
	res := &fakeTextResolver{}
	srv.Resolver = res

	body := strings.NewReader(`{"landmark_name": "Old Fort", "wikidata_id": "Q1"}`)
	req := httptest.NewRequest("POST", "/api/retrieve-text", body)
	w := httptest.NewRecorder()
	srv.handleRetrieveText(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if res.lastID != "lm-old-fort" {
		t.Errorf("expected derived id lm-old-fort, got %q", res.lastID)
	}

	var rec model.HistoricalTextRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if rec.Status != model.StatusSuccess {
		t.Errorf("unexpected status %s", rec.Status)
	}
}

func TestHandleRetrieveTextMissingName(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/retrieve-text", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.handleRetrieveText(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleGenerateAnswer(t *testing.T) {
	srv := testServer(t)

	tags := model.NewTagMap()
	tags.Set("historic", "fort")
	lm := model.Landmark{ID: "node-42", Name: "Old Fort", Lat: 51.9, Lon: -8.47,
		Kind: model.KindNode, UpstreamID: 42, Tags: tags}
	if err := srv.Store.PutLandmarks([]model.Landmark{lm}, "t"); err != nil {
		t.Fatalf("seeding landmark: %v", err)
	}

	body := strings.NewReader(`{"landmark_id": "node-42", "question": "Who built it?", "year": 1601}`)
	req := httptest.NewRequest("POST", "/api/generate-answer", body)
	w := httptest.NewRecorder()
	srv.handleGenerateAnswer(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var ans model.GeneratedAnswer
	if err := json.NewDecoder(w.Body).Decode(&ans); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if ans.Answer != "generated" || ans.Question != "Who built it?" {
		t.Errorf("unexpected answer: %+v", ans)
	}
	if ans.Year == nil || *ans.Year != 1601 {
		t.Error("year filter lost")
	}
}

func TestHandleGenerateAnswerUnknownLandmark(t *testing.T) {
	srv := testServer(t)

	body := strings.NewReader(`{"landmark_id": "node-1", "question": "Q"}`)
	req := httptest.NewRequest("POST", "/api/generate-answer", body)
	w := httptest.NewRecorder()
	srv.handleGenerateAnswer(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandleStatistics(t *testing.T) {
	srv := testServer(t)

	if err := srv.Store.PutHistoricalText(&model.HistoricalTextRecord{
		LandmarkID: "node-42", Status: model.StatusNoData}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/statistics", nil)
	w := httptest.NewRecorder()
	srv.handleStatistics(w, req)

	var stats map[string]any
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if stats["status"] != "success" {
		t.Errorf("expected success, got %v", stats["status"])
	}
	if stats["total_texts"].(float64) != 1 {
		t.Errorf("expected 1 text, got %v", stats["total_texts"])
	}
}

func TestHandleEvaluationFilter(t *testing.T) {
	srv := testServer(t)

	for _, name := range []string{"distance", "distance", "determinism"} {
		if err := srv.Store.AppendEvaluation(&model.EvaluationRecord{
			TestName: name, Category: "core", Passed: true, Timestamp: "t"}); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest("GET", "/api/evaluation?test_name=distance", nil)
	w := httptest.NewRecorder()
	srv.handleEvaluation(w, req)

	var body struct {
		Status  string                   `json:"status"`
		Results []model.EvaluationRecord `json:"results"`
		Count   int                      `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Count != 2 || len(body.Results) != 2 {
		t.Errorf("expected 2 filtered results, got %d", body.Count)
	}
}

func TestWriteJSONNil(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, nil)

	if w.Body.String() != "[]" {
		t.Errorf("expected '[]' for nil, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}
