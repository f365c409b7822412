// Package rules holds the insight catalog: a fixed, ordered list of
// independent comparison rules evaluated against one immutable aggregate
// snapshot per generation cycle. Each rule gates on minimum sample
// sizes, applies the shared significance tests, and emits zero or more
// typed, prioritized insights.
package rules

import "github.com/stillharbor/driftline/internal/types"

// Rule is one independently evaluable catalog entry. Evaluate must be a
// pure function of the snapshot: rules run concurrently and share it.
type Rule interface {
	// Name is the stable rule identifier, used in insight ids.
	Name() string

	// Evaluate inspects the snapshot and returns any triggered insights.
	Evaluate(s *Snapshot) []types.Insight
}

// Catalog returns the canonical ordered rule list. The order is part of
// the engine's contract: it is the tie-break for equal-priority insights
// in the final ranking, so it must stay stable across releases.
func Catalog() []Rule {
	return []Rule{
		workloadRecoveryRule{},
		sustainedOverloadRule{},
		breathingTrendRule{},
		stressLevelRule{},
		focusLevelRule{},
		lateNightRule{},
		weekendRule{},
		sessionLengthRule{},
		breathingDaysRule{},
		reflectionGapRule{},
		workplaceCompareRule{},
		timeBlockRule{},
		weekdayRule{},
		sentimentRule{},
	}
}

// notablyDifferent applies the shared significance test for two group
// averages on the normalized scale.
func (s *Snapshot) notablyDifferent(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d >= s.Config.DifferenceThreshold
}

// exceedsByMargin reports whether total lands past the threshold by the
// configured relative margin.
func (s *Snapshot) exceedsByMargin(total, thresholdValue float64) bool {
	return thresholdValue > 0 && total > thresholdValue*(1+s.Config.RelativeMargin)
}
