package rules

import (
	"fmt"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/threshold"
	"github.com/stillharbor/driftline/internal/types"
)

// workloadRecoveryRule compares total work hours against the adaptive
// weekly-hours threshold and the breathing-session count. A heavy period
// with almost no recovery is the single most urgent thing this engine
// can say, hence the top priority.
type workloadRecoveryRule struct{}

func (workloadRecoveryRule) Name() string { return "workload-recovery" }

func (workloadRecoveryRule) Evaluate(s *Snapshot) []types.Insight {
	if s.SessionCount < 2 {
		return nil
	}

	maxHours := s.Thresholds.Get(threshold.MaxWeeklyHours)
	conf := stats.Confidence(s.SessionCount, stats.Variance(s.DailyHours))

	hoursPart := fmt.Sprintf("%.1f", s.TotalWorkHours)
	breathPart := fmt.Sprintf("%d", s.BreathingCount)
	id := types.NewInsightID("workload-recovery", hoursPart, breathPart)

	if s.TotalWorkHours > maxHours && s.BreathingCount < s.Config.MinBreathingForHighWorkload {
		msg := pickTemplate(id,
			fmt.Sprintf("You put in %s work hours this period but logged only %s breathing sessions. A few short resets between long stretches could help you recover.", hoursPart, breathPart),
			fmt.Sprintf("That's %s hours of work against %s breathing sessions this period. Consider scheduling a couple of short breathing breaks before the load catches up with you.", hoursPart, breathPart),
		)
		return []types.Insight{{
			ID:         id,
			Message:    msg,
			Type:       types.TypeSuggestion,
			Priority:   10,
			Confidence: conf.ConfidenceScore,
		}}
	}

	if s.TotalWorkHours <= maxHours && s.BreathingCount >= s.Config.MinBreathingForHighWorkload && s.SessionCount >= 3 {
		msg := pickTemplate(id,
			fmt.Sprintf("Nice balance: %s work hours alongside %s breathing sessions this period. That's a sustainable rhythm.", hoursPart, breathPart),
			fmt.Sprintf("You kept work to %s hours and still fit in %s breathing sessions. Keep that pattern going.", hoursPart, breathPart),
		)
		return []types.Insight{{
			ID:         id,
			Message:    msg,
			Type:       types.TypeAffirmation,
			Priority:   5,
			Confidence: conf.ConfidenceScore,
		}}
	}

	return nil
}

// sustainedOverloadRule fires when the period total blows past the
// adaptive threshold by the relative margin, regardless of recovery, and
// separately when the period sits well above the user's own recent
// rolling average.
type sustainedOverloadRule struct{}

func (sustainedOverloadRule) Name() string { return "sustained-overload" }

func (sustainedOverloadRule) Evaluate(s *Snapshot) []types.Insight {
	if s.SessionCount < 2 {
		return nil
	}

	var out []types.Insight
	conf := stats.Confidence(s.SessionCount, stats.Variance(s.DailyHours))
	maxHours := s.Thresholds.Get(threshold.MaxWeeklyHours)

	if s.exceedsByMargin(s.TotalWorkHours, maxHours) {
		id := types.NewInsightID("sustained-overload", fmt.Sprintf("%.1f", s.TotalWorkHours), fmt.Sprintf("%.1f", maxHours))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("Your %.1f work hours this period are well past your usual ceiling of %.0f. Sustained weeks like this tend to show up later as fatigue.", s.TotalWorkHours, maxHours),
			Type:       types.TypeWarning,
			Priority:   9,
			Confidence: conf.ConfidenceScore,
		})
	}

	if s.HistWindows >= 2 && s.HistWorkHours > 0 && s.exceedsByMargin(s.TotalWorkHours, s.HistWorkHours) {
		id := types.NewInsightID("hours-above-average", fmt.Sprintf("%.1f", s.TotalWorkHours), fmt.Sprintf("%.1f", s.HistWorkHours))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("You worked %.1f hours this period, up from your recent average of %.1f. Is something pulling you in, or just a busy stretch?", s.TotalWorkHours, s.HistWorkHours),
			Type:       types.TypeTrend,
			Priority:   6,
			Confidence: conf.ConfidenceScore,
		})
	}

	return out
}
