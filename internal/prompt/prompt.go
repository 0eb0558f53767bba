package prompt

import (
	"fmt"
	"strings"

	"github.com/intelligrit/histmap/internal/model"
)

// systemInstruction pins the model to the supplied context. It is part of
// the grounding prompt shown to the user, so its wording is fixed.
const systemInstruction = "You are a historical expert. Answer ONLY from the provided context. Don't make stuff up. Keep it brief."

// NoContextPlaceholder is rendered when no historical text could be
// resolved for a landmark.
const NoContextPlaceholder = "[No context available]"

// Compose renders the grounding prompt for a landmark and its resolved text
// record. Identical inputs produce byte-identical output: the string is both
// displayed to the user and sent verbatim to the inference endpoint. Tags
// render in stored iteration order and are never truncated or reordered.
func Compose(lm *model.Landmark, rec *model.HistoricalTextRecord) string {
	var b strings.Builder

	b.WriteString(systemInstruction)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "LANDMARK: %s\n", lm.Name)
	fmt.Fprintf(&b, "TYPE: %s\n", lm.Kind)
	fmt.Fprintf(&b, "COORDINATES: %.4f, %.4f\n", lm.Lat, lm.Lon)

	b.WriteString("TAGS:\n")
	if lm.Tags != nil {
		for pair := lm.Tags.Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(&b, "  %s: %s\n", pair.Key, pair.Value)
		}
	}

	b.WriteString("\nCONTEXT:\n")
	if rec != nil && rec.Status == model.StatusSuccess && rec.Text != "" {
		b.WriteString(rec.Text)
	} else {
		b.WriteString(NoContextPlaceholder)
	}

	return b.String()
}

// WithQuestion appends the user's question and optional year focus to a
// grounding prompt. Deterministic for identical inputs.
func WithQuestion(grounding, question string, year *int) string {
	timeHint := ""
	if year != nil {
		timeHint = fmt.Sprintf("\nFocus on the year %d.", *year)
	}
	return fmt.Sprintf("%s\n\nQUESTION: %s%s\n\nANSWER:", grounding, question, timeHint)
}
