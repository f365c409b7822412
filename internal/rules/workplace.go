package rules

import (
	"fmt"
	"sort"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/types"
)

// workplaceCompareRule runs the pairwise focus/stress comparison across
// workplaces once at least two of them have enough reflected sessions.
type workplaceCompareRule struct{}

func (workplaceCompareRule) Name() string { return "workplace-compare" }

func (workplaceCompareRule) Evaluate(s *Snapshot) []types.Insight {
	// Deterministic order: map iteration would shuffle equal-priority
	// insights between runs.
	var names []string
	for name, g := range s.ByWorkplace {
		if g.Reflected() >= s.Config.MinWorkplaceSamples {
			names = append(names, name)
		}
	}
	if len(names) < 2 {
		return nil
	}
	sort.Strings(names)

	bestFocus, worstFocus := names[0], names[0]
	calmest, tensest := names[0], names[0]
	total := 0
	var allFocus, allStress []float64
	for _, name := range names {
		g := s.ByWorkplace[name]
		total += g.Reflected()
		allFocus = append(allFocus, g.Focus...)
		allStress = append(allStress, g.Stress...)
		if g.AvgFocus() > s.ByWorkplace[bestFocus].AvgFocus() {
			bestFocus = name
		}
		if g.AvgFocus() < s.ByWorkplace[worstFocus].AvgFocus() {
			worstFocus = name
		}
		if g.AvgStress() < s.ByWorkplace[calmest].AvgStress() {
			calmest = name
		}
		if g.AvgStress() > s.ByWorkplace[tensest].AvgStress() {
			tensest = name
		}
	}

	var out []types.Insight

	hi, lo := s.ByWorkplace[bestFocus].AvgFocus(), s.ByWorkplace[worstFocus].AvgFocus()
	if bestFocus != worstFocus && s.notablyDifferent(hi, lo) {
		conf := stats.Confidence(total, stats.Variance(allFocus))
		id := types.NewInsightID("workplace-focus", bestFocus, worstFocus, fmt.Sprintf("%.2f", hi-lo))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("You focus noticeably better at %s (%.0f%%) than at %s (%.0f%%). Worth saving your hardest work for the former.", bestFocus, hi*100, worstFocus, lo*100),
			Type:       types.TypeWorkplaceSpecific,
			Priority:   6,
			Confidence: conf.ConfidenceScore,
		})
	}

	calm, tense := s.ByWorkplace[calmest].AvgStress(), s.ByWorkplace[tensest].AvgStress()
	if calmest != tensest && s.notablyDifferent(calm, tense) {
		conf := stats.Confidence(total, stats.Variance(allStress))
		id := types.NewInsightID("workplace-stress", calmest, tensest, fmt.Sprintf("%.2f", tense-calm))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("Working at %s runs your stress up to %.0f%%, versus %.0f%% at %s. The environment seems to matter for you.", tensest, tense*100, calm*100, calmest),
			Type:       types.TypeWorkplaceSpecific,
			Priority:   6,
			Confidence: conf.ConfidenceScore,
		})
	}

	return out
}
