package rules

import (
	"fmt"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/threshold"
	"github.com/stillharbor/driftline/internal/types"
)

// stressLevelRule checks the period's average stress against the
// adaptive highStress threshold and the user's recent average.
type stressLevelRule struct{}

func (stressLevelRule) Name() string { return "stress-level" }

func (stressLevelRule) Evaluate(s *Snapshot) []types.Insight {
	if s.ReflectedCount < 3 {
		return nil
	}

	conf := stats.Confidence(s.ReflectedCount, stats.Variance(s.StressValues))
	high := s.Thresholds.Get(threshold.HighStress)
	id := types.NewInsightID("stress-level", fmt.Sprintf("%.2f", s.AvgStress))

	if s.AvgStress >= high {
		msg := pickTemplate(id,
			fmt.Sprintf("Your average stress sat at %.0f%% this period, above your usual high-water mark. What's been weighing on you?", s.AvgStress*100),
			fmt.Sprintf("Stress averaged %.0f%% across your check-ins this period, higher than is typical for you. Worth taking seriously.", s.AvgStress*100),
		)
		return []types.Insight{{
			ID:         id,
			Message:    msg,
			Type:       types.TypeAlert,
			Priority:   9,
			Confidence: conf.ConfidenceScore,
		}}
	}

	if s.HistWindows >= 2 && s.HistAvgStress > 0 &&
		s.notablyDifferent(s.AvgStress, s.HistAvgStress) && s.AvgStress < s.HistAvgStress {
		return []types.Insight{{
			ID:         types.NewInsightID("stress-easing", fmt.Sprintf("%.2f", s.AvgStress), fmt.Sprintf("%.2f", s.HistAvgStress)),
			Message:    fmt.Sprintf("Stress is easing: %.0f%% this period against a recent average of %.0f%%.", s.AvgStress*100, s.HistAvgStress*100),
			Type:       types.TypeAffirmation,
			Priority:   4,
			Confidence: conf.ConfidenceScore,
		}}
	}

	return nil
}

// focusLevelRule checks the period's average focus against the adaptive
// lowFocus threshold and the user's recent average.
type focusLevelRule struct{}

func (focusLevelRule) Name() string { return "focus-level" }

func (focusLevelRule) Evaluate(s *Snapshot) []types.Insight {
	if s.ReflectedCount < 3 {
		return nil
	}

	conf := stats.Confidence(s.ReflectedCount, stats.Variance(s.FocusValues))
	low := s.Thresholds.Get(threshold.LowFocus)
	id := types.NewInsightID("focus-level", fmt.Sprintf("%.2f", s.AvgFocus))

	if s.AvgFocus <= low {
		msg := pickTemplate(id,
			fmt.Sprintf("Focus averaged just %.0f%% this period. Shorter sessions with clearer goals sometimes help it recover.", s.AvgFocus*100),
			fmt.Sprintf("Your focus ratings came in at %.0f%% on average this period, lower than usual for you. Anything fragmenting your attention?", s.AvgFocus*100),
		)
		return []types.Insight{{
			ID:         id,
			Message:    msg,
			Type:       types.TypeSuggestion,
			Priority:   7,
			Confidence: conf.ConfidenceScore,
		}}
	}

	if s.HistWindows >= 2 && s.HistAvgFocus > 0 &&
		s.notablyDifferent(s.AvgFocus, s.HistAvgFocus) && s.AvgFocus > s.HistAvgFocus {
		return []types.Insight{{
			ID:         types.NewInsightID("focus-climbing", fmt.Sprintf("%.2f", s.AvgFocus), fmt.Sprintf("%.2f", s.HistAvgFocus)),
			Message:    fmt.Sprintf("Focus is climbing: %.0f%% this period versus your recent %.0f%% average.", s.AvgFocus*100, s.HistAvgFocus*100),
			Type:       types.TypeCelebration,
			Priority:   6,
			Confidence: conf.ConfidenceScore,
		}}
	}

	return nil
}
