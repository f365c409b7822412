package rules

import (
	"fmt"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/types"
)

// breathingTrendRule compares breathing usage between the current and
// the immediately preceding period.
type breathingTrendRule struct{}

func (breathingTrendRule) Name() string { return "breathing-trend" }

func (breathingTrendRule) Evaluate(s *Snapshot) []types.Insight {
	cur, prev := s.BreathingCount, s.PrevBreathingCount
	if cur < s.Config.MinGroupSamples && prev < s.Config.MinGroupSamples {
		return nil
	}

	conf := stats.Confidence(cur+prev, 0)
	id := types.NewInsightID("breathing-trend", fmt.Sprintf("%d", cur), fmt.Sprintf("%d", prev))

	switch {
	case prev > 0 && float64(cur) >= float64(prev)*(1+s.Config.RelativeMargin):
		msg := pickTemplate(id,
			fmt.Sprintf("Breathing practice is trending up: %d sessions this period, %d the one before. That consistency compounds.", cur, prev),
			fmt.Sprintf("You went from %d to %d breathing sessions period over period. Whatever you changed, it's working.", prev, cur),
		)
		return []types.Insight{{
			ID:         id,
			Message:    msg,
			Type:       types.TypeCelebration,
			Priority:   5,
			Confidence: conf.ConfidenceScore,
		}}
	case prev > 0 && float64(cur) <= float64(prev)*(1-s.Config.RelativeMargin):
		msg := pickTemplate(id,
			fmt.Sprintf("Breathing sessions dropped from %d to %d this period. Is something getting in the way of the habit?", prev, cur),
			fmt.Sprintf("You logged %d breathing sessions, down from %d. Even a two-minute exercise keeps the streak alive.", cur, prev),
		)
		return []types.Insight{{
			ID:         id,
			Message:    msg,
			Type:       types.TypeQuestion,
			Priority:   6,
			Confidence: conf.ConfidenceScore,
		}}
	}
	return nil
}

// breathingDaysRule correlates focus and stress on days with at least
// one breathing exercise against days without any.
type breathingDaysRule struct{}

func (breathingDaysRule) Name() string { return "breathing-days" }

func (breathingDaysRule) Evaluate(s *Snapshot) []types.Insight {
	with, without := &s.BreathingDays, &s.NonBreathingDays
	if with.Reflected() < s.Config.MinGroupSamples || without.Reflected() < s.Config.MinGroupSamples {
		return nil
	}

	var out []types.Insight
	n := with.Reflected() + without.Reflected()

	focusDelta := with.AvgFocus() - without.AvgFocus()
	if s.notablyDifferent(with.AvgFocus(), without.AvgFocus()) && focusDelta > 0 {
		conf := stats.Confidence(n, stats.Variance(append(append([]float64(nil), with.Focus...), without.Focus...)))
		id := types.NewInsightID("breathing-days-focus", fmt.Sprintf("%.2f", with.AvgFocus()), fmt.Sprintf("%.2f", without.AvgFocus()))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("On days you do a breathing exercise, your focus averages %.0f%% versus %.0f%% on days you don't. The pattern is worth leaning into.", with.AvgFocus()*100, without.AvgFocus()*100),
			Type:       types.TypeCorrelation,
			Priority:   7,
			Confidence: conf.ConfidenceScore,
		})
	}

	stressDelta := without.AvgStress() - with.AvgStress()
	if s.notablyDifferent(with.AvgStress(), without.AvgStress()) && stressDelta > 0 {
		conf := stats.Confidence(n, stats.Variance(append(append([]float64(nil), with.Stress...), without.Stress...)))
		id := types.NewInsightID("breathing-days-stress", fmt.Sprintf("%.2f", with.AvgStress()), fmt.Sprintf("%.2f", without.AvgStress()))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("Your stress runs lower on breathing days (%.0f%% vs %.0f%%). The exercises seem to be doing their job.", with.AvgStress()*100, without.AvgStress()*100),
			Type:       types.TypeCorrelation,
			Priority:   7,
			Confidence: conf.ConfidenceScore,
		})
	}

	return out
}
