package answer

import (
	"context"
	"time"

	"github.com/intelligrit/histmap/internal/model"
	"github.com/intelligrit/histmap/internal/prompt"
)

// Generator is the inference endpoint: prompt in, text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextResolver produces the historical text record for a landmark.
type TextResolver interface {
	Resolve(ctx context.Context, landmarkID, name, wikipediaRef, wikidataID string) *model.HistoricalTextRecord
}

// AnswerStore is the slice of the persistent store the gateway uses. The
// cache key is (landmark id, exact question text, year or nil).
type AnswerStore interface {
	GetAnswer(landmarkID, question string, year *int) (*model.GeneratedAnswer, error)
	PutAnswer(ans *model.GeneratedAnswer) error
}

// Gateway answers grounded questions about landmarks, caching every outcome.
// Failed generations are cached too, so identical failing requests are not
// retried until the cache is explicitly bypassed. Two simultaneous misses on
// the same key may both reach the endpoint; the last write wins.
type Gateway struct {
	Store       AnswerStore
	Resolver    TextResolver
	LLM         Generator
	Model       string
	Temperature float64
}

// Answer returns the cached answer for (landmark, question, year) or
// generates, stores and returns a new one. Question text is matched exactly:
// no trimming, no case folding.
func (g *Gateway) Answer(ctx context.Context, lm *model.Landmark, question string, year *int) *model.GeneratedAnswer {
	if cached, err := g.Store.GetAnswer(lm.ID, question, year); err == nil && cached != nil {
		return cached
	}

	rec := g.Resolver.Resolve(ctx, lm.ID, lm.Name, lm.WikipediaRef, lm.WikidataID)
	p := prompt.WithQuestion(prompt.Compose(lm, rec), question, year)

	ans := &model.GeneratedAnswer{
		LandmarkID:  lm.ID,
		Question:    question,
		Year:        year,
		Model:       g.Model,
		Temperature: g.Temperature,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	text, err := g.LLM.Generate(ctx, p)
	if err != nil {
		ans.Status = model.StatusError
		ans.Error = err.Error()
	} else {
		ans.Status = model.StatusSuccess
		ans.Answer = text
	}

	// Cached regardless of outcome; a failed store write still returns the
	// generated answer to the caller.
	_ = g.Store.PutAnswer(ans)

	return ans
}
