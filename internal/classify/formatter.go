package classify

import (
	"math"
	"sort"
)

// Label is one classification outcome: a disease name and the model's
// confidence in it.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Format rounds scores to four decimal places and orders labels by
// descending score. The sort is stable, so labels with equal scores keep
// the order the model produced them in. The result is never nil, even
// for empty input, so it always marshals as a JSON array.
func Format(labels []Label) []Label {
	out := make([]Label, len(labels))
	for i, l := range labels {
		out[i] = Label{
			Label: l.Label,
			Score: math.Round(l.Score*10000) / 10000,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
