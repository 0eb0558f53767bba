package history

import (
	"context"
	"strings"
	"time"

	"github.com/intelligrit/histmap/internal/model"
	"github.com/intelligrit/histmap/internal/normalize"
)

// EncyclopediaSource yields a structured article extract for a title.
type EncyclopediaSource interface {
	Extract(ctx context.Context, title string) (*model.HistoricalTextRecord, error)
}

// KnowledgeBaseSource yields a description for an external entity id.
type KnowledgeBaseSource interface {
	Entity(ctx context.Context, id string) (*model.HistoricalTextRecord, error)
}

// TextStore is the slice of the persistent store the resolver uses.
type TextStore interface {
	GetHistoricalText(landmarkID string) (*model.HistoricalTextRecord, error)
	PutHistoricalText(rec *model.HistoricalTextRecord) error
}

// Resolver tries an ordered chain of text sources for a landmark and caches
// definitive outcomes. Callers always receive a tagged record, never an
// error: upstream failures advance the chain instead of aborting it.
type Resolver struct {
	Store     TextStore
	Wikipedia EncyclopediaSource
	Wikidata  KnowledgeBaseSource
}

// Resolve returns the historical text record for a landmark. A cached record
// is returned unchanged; cache entries never expire. On a miss the chain is
// Wikipedia by cross-reference, then Wikidata, then Wikipedia by display
// name. Success and no_data outcomes are written to the store before
// returning; an error record means every reachable source attempt failed, or
// the store write itself did.
func (r *Resolver) Resolve(ctx context.Context, landmarkID, name, wikipediaRef, wikidataID string) *model.HistoricalTextRecord {
	if cached, err := r.Store.GetHistoricalText(landmarkID); err == nil && cached != nil {
		return cached
	}

	type lookup func() (*model.HistoricalTextRecord, error)
	var lookups []lookup

	if wikipediaRef != "" {
		title := titleFromRef(wikipediaRef)
		lookups = append(lookups, func() (*model.HistoricalTextRecord, error) {
			return r.Wikipedia.Extract(ctx, title)
		})
	}
	if wikidataID != "" {
		lookups = append(lookups, func() (*model.HistoricalTextRecord, error) {
			return r.Wikidata.Entity(ctx, wikidataID)
		})
	}
	if name != "" && name != normalize.UnnamedLandmark {
		lookups = append(lookups, func() (*model.HistoricalTextRecord, error) {
			return r.Wikipedia.Extract(ctx, name)
		})
	}

	now := time.Now().UTC().Format(time.RFC3339)

	attempted, failed := 0, 0
	var lastErr error
	for _, fn := range lookups {
		attempted++
		rec, err := fn()
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		if rec == nil || rec.Status != model.StatusSuccess || rec.Text == "" {
			continue
		}

		rec.LandmarkID = landmarkID
		rec.RetrievedAt = now
		if err := r.Store.PutHistoricalText(rec); err != nil {
			return errorRecord(landmarkID, "caching resolved text: "+err.Error(), now)
		}
		return rec
	}

	// Every attempted source failed outright: the chain never got a
	// definitive answer, so surface the failure instead of no_data.
	if attempted > 0 && failed == attempted {
		return errorRecord(landmarkID, lastErr.Error(), now)
	}

	rec := &model.HistoricalTextRecord{
		LandmarkID:  landmarkID,
		Status:      model.StatusNoData,
		RetrievedAt: now,
	}
	if err := r.Store.PutHistoricalText(rec); err != nil {
		return errorRecord(landmarkID, "caching no_data outcome: "+err.Error(), now)
	}
	return rec
}

func errorRecord(landmarkID, detail, now string) *model.HistoricalTextRecord {
	return &model.HistoricalTextRecord{
		LandmarkID:  landmarkID,
		Status:      model.StatusError,
		Error:       detail,
		RetrievedAt: now,
	}
}

// titleFromRef turns an upstream wikipedia cross-reference like
// "en:Old_Fort" into an article title.
func titleFromRef(ref string) string {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.ReplaceAll(ref, "_", " ")
}
