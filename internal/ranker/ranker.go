// Package ranker merges the candidate insights of one generation cycle,
// filters out anything the user has already dismissed, and fixes the
// final order.
package ranker

import (
	"sort"

	"github.com/stillharbor/driftline/internal/types"
)

// Rank takes candidates in emission order (statistical insights first,
// then catalog output in catalog order), removes duplicates and
// previously dismissed ids, and sorts by priority descending. The sort
// is stable, so equal-priority insights keep their emission order; the
// ordering of a cycle is fully determined by its inputs. maxCount <= 0
// means no truncation.
func Rank(candidates []types.Insight, dismissed map[string]bool, maxCount int) []types.Insight {
	seen := make(map[string]bool, len(candidates))
	out := make([]types.Insight, 0, len(candidates))
	for _, ins := range candidates {
		if dismissed[ins.ID] || seen[ins.ID] {
			continue
		}
		seen[ins.ID] = true
		out = append(out, ins)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})

	if maxCount > 0 && len(out) > maxCount {
		out = out[:maxCount]
	}
	return out
}
