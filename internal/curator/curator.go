package curator

import (
	"sort"

	"newsbrief/internal/domain"
)

// Policy carries the ranking knobs. Defaults match the long-standing
// newsletter behavior: keep anything rated 4 or better, call 7+ a top
// story, and cap the digest at 15 items.
type Policy struct {
	MinScore      float64
	TopStoryScore float64
	MaxItems      int
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinScore:      4.0,
		TopStoryScore: 7.0,
		MaxItems:      15,
	}
}

// Curate deduplicates by URL (first occurrence wins), drops items below the
// relevance threshold, sorts descending by score with a stable tie-break,
// and truncates to the digest cap. Pure and deterministic; empty input
// yields empty output.
func Curate(items []domain.ScoredItem, p Policy) []domain.ScoredItem {
	if p.MaxItems <= 0 {
		p.MaxItems = DefaultPolicy().MaxItems
	}

	seen := make(map[string]struct{}, len(items))
	kept := make([]domain.ScoredItem, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.Item.URL]; ok {
			continue
		}
		seen[it.Item.URL] = struct{}{}
		if it.Score < p.MinScore {
			continue
		}
		kept = append(kept, it)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if len(kept) > p.MaxItems {
		kept = kept[:p.MaxItems]
	}

	return kept
}
