package history

import (
	"context"
	"errors"
	"testing"

	"github.com/intelligrit/histmap/internal/model"
	"github.com/intelligrit/histmap/internal/normalize"
)

type fakeStore struct {
	texts  map[string]*model.HistoricalTextRecord
	putErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{texts: make(map[string]*model.HistoricalTextRecord)}
}

func (s *fakeStore) GetHistoricalText(landmarkID string) (*model.HistoricalTextRecord, error) {
	return s.texts[landmarkID], nil
}

func (s *fakeStore) PutHistoricalText(rec *model.HistoricalTextRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.texts[rec.LandmarkID] = rec
	return nil
}

type fakeWikipedia struct {
	byTitle map[string]string
	err     error
	calls   int
}

func (w *fakeWikipedia) Extract(_ context.Context, title string) (*model.HistoricalTextRecord, error) {
	w.calls++
	if w.err != nil {
		return nil, w.err
	}
	text, ok := w.byTitle[title]
	if !ok {
		return nil, nil
	}
	return &model.HistoricalTextRecord{Status: model.StatusSuccess, Text: text, Source: "Wikipedia"}, nil
}

type fakeWikidata struct {
	byID  map[string]string
	err   error
	calls int
}

func (w *fakeWikidata) Entity(_ context.Context, id string) (*model.HistoricalTextRecord, error) {
	w.calls++
	if w.err != nil {
		return nil, w.err
	}
	text, ok := w.byID[id]
	if !ok {
		return nil, nil
	}
	return &model.HistoricalTextRecord{Status: model.StatusSuccess, Text: text, Source: "Wikidata"}, nil
}

func TestResolveFallbackOrder(t *testing.T) {
	// Both sources can answer; the encyclopedia cross-reference must win.
	wp := &fakeWikipedia{byTitle: map[string]string{"Old Fort": "Fort text."}}
	wd := &fakeWikidata{byID: map[string]string{"Q1": "Entity text."}}
	r := &Resolver{Store: newFakeStore(), Wikipedia: wp, Wikidata: wd}

	rec := r.Resolve(context.Background(), "node-42", "Old Fort", "en:Old_Fort", "Q1")

	if rec.Status != model.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", rec.Status, rec.Error)
	}
	if rec.Source != "Wikipedia" {
		t.Errorf("expected Wikipedia source, got %q", rec.Source)
	}
	if wd.calls != 0 {
		t.Errorf("knowledge base consulted despite encyclopedia hit: %d calls", wd.calls)
	}
}

func TestResolveAdvancesToKnowledgeBase(t *testing.T) {
	// Cross-reference title and name miss; Wikidata has the entity.
	wp := &fakeWikipedia{byTitle: map[string]string{}}
	wd := &fakeWikidata{byID: map[string]string{"Q1": "Old Fort: a fort in Cork."}}
	r := &Resolver{Store: newFakeStore(), Wikipedia: wp, Wikidata: wd}

	rec := r.Resolve(context.Background(), "node-42", "Old Fort", "en:Old_Fort", "Q1")

	if rec.Status != model.StatusSuccess {
		t.Fatalf("expected success, got %s", rec.Status)
	}
	if rec.Source != "Wikidata" {
		t.Errorf("expected Wikidata source, got %q", rec.Source)
	}
}

func TestResolveUpstreamFailureAdvancesChain(t *testing.T) {
	// Wikipedia is down; the chain must still reach Wikidata.
	wp := &fakeWikipedia{err: errors.New("connection refused")}
	wd := &fakeWikidata{byID: map[string]string{"Q1": "Entity text."}}
	r := &Resolver{Store: newFakeStore(), Wikipedia: wp, Wikidata: wd}

	rec := r.Resolve(context.Background(), "node-42", "Old Fort", "en:Old_Fort", "Q1")

	if rec.Status != model.StatusSuccess || rec.Source != "Wikidata" {
		t.Fatalf("expected Wikidata success, got %s from %q", rec.Status, rec.Source)
	}
}

func TestResolveExhaustion(t *testing.T) {
	wp := &fakeWikipedia{byTitle: map[string]string{}}
	wd := &fakeWikidata{byID: map[string]string{}}
	st := newFakeStore()
	r := &Resolver{Store: st, Wikipedia: wp, Wikidata: wd}

	rec := r.Resolve(context.Background(), "node-42", "Completely Unknown Place", "", "")

	if rec.Status != model.StatusNoData {
		t.Fatalf("expected no_data, got %s", rec.Status)
	}
	if rec.Text != "" {
		t.Errorf("no_data record must carry no text, got %q", rec.Text)
	}
	if rec.Error != "" {
		t.Errorf("no_data record must carry no error detail, got %q", rec.Error)
	}
	if st.texts["node-42"] == nil {
		t.Error("definitive no_data outcome was not cached")
	}
}

func TestResolveCacheHitSuppressesUpstream(t *testing.T) {
	wp := &fakeWikipedia{byTitle: map[string]string{"Old Fort": "Fort text."}}
	r := &Resolver{Store: newFakeStore(), Wikipedia: wp, Wikidata: &fakeWikidata{}}

	first := r.Resolve(context.Background(), "node-42", "Old Fort", "en:Old_Fort", "")
	callsAfterFirst := wp.calls

	second := r.Resolve(context.Background(), "node-42", "Old Fort", "en:Old_Fort", "")

	if wp.calls != callsAfterFirst {
		t.Errorf("second resolve hit upstream: %d calls, expected %d", wp.calls, callsAfterFirst)
	}
	if first.Text != second.Text || first.Source != second.Source || first.Status != second.Status {
		t.Error("cached record differs from original")
	}
}

func TestResolveAllSourcesFailed(t *testing.T) {
	wp := &fakeWikipedia{err: errors.New("wikipedia down")}
	wd := &fakeWikidata{err: errors.New("wikidata down")}
	st := newFakeStore()
	r := &Resolver{Store: st, Wikipedia: wp, Wikidata: wd}

	rec := r.Resolve(context.Background(), "node-42", "Old Fort", "en:Old_Fort", "Q1")

	if rec.Status != model.StatusError {
		t.Fatalf("expected error status, got %s", rec.Status)
	}
	if rec.Error == "" {
		t.Error("error record must carry detail")
	}
	if st.texts["node-42"] != nil {
		t.Error("error outcome must not be cached")
	}
}

func TestResolveSkipsPlaceholderName(t *testing.T) {
	wp := &fakeWikipedia{byTitle: map[string]string{}}
	r := &Resolver{Store: newFakeStore(), Wikipedia: wp, Wikidata: &fakeWikidata{}}

	rec := r.Resolve(context.Background(), "way-7", normalize.UnnamedLandmark, "", "")

	if wp.calls != 0 {
		t.Errorf("placeholder name should not be looked up, got %d calls", wp.calls)
	}
	if rec.Status != model.StatusNoData {
		t.Errorf("expected no_data, got %s", rec.Status)
	}
}

func TestTitleFromRef(t *testing.T) {
	tests := []struct {
		ref, want string
	}{
		{"en:Old_Fort", "Old Fort"},
		{"Old_Fort", "Old Fort"},
		{"de:Schloss_Neuschwanstein", "Schloss Neuschwanstein"},
		{"Plain Title", "Plain Title"},
	}

	for _, tt := range tests {
		if got := titleFromRef(tt.ref); got != tt.want {
			t.Errorf("titleFromRef(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
