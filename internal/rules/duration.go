package rules

import (
	"fmt"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/types"
)

// sessionLengthRule correlates long sessions (>= LongSessionHours) and
// short ones (<= ShortSessionHours) with focus and stress.
type sessionLengthRule struct{}

func (sessionLengthRule) Name() string { return "session-length" }

func (sessionLengthRule) Evaluate(s *Snapshot) []types.Insight {
	long, short := &s.LongSessions, &s.ShortSessions
	if long.Reflected() < s.Config.MinGroupSamples || short.Reflected() < s.Config.MinGroupSamples {
		return nil
	}

	var out []types.Insight
	n := long.Reflected() + short.Reflected()

	if s.notablyDifferent(long.AvgFocus(), short.AvgFocus()) {
		conf := stats.Confidence(n, stats.Variance(append(append([]float64(nil), long.Focus...), short.Focus...)))
		id := types.NewInsightID("session-length-focus", fmt.Sprintf("%.2f", long.AvgFocus()), fmt.Sprintf("%.2f", short.AvgFocus()))
		var msg string
		if long.AvgFocus() > short.AvgFocus() {
			msg = fmt.Sprintf("Your focus runs higher in long sessions (%.0f%% over %.1f hours-plus) than short ones (%.0f%%). Deep blocks suit you.", long.AvgFocus()*100, s.Config.LongSessionHours, short.AvgFocus()*100)
		} else {
			msg = fmt.Sprintf("Short sessions are where you focus best (%.0f%% vs %.0f%% in sessions over %.1f hours). Long stretches may be past your attention budget.", short.AvgFocus()*100, long.AvgFocus()*100, s.Config.LongSessionHours)
		}
		out = append(out, types.Insight{
			ID:         id,
			Message:    msg,
			Type:       types.TypeCorrelation,
			Priority:   5,
			Confidence: conf.ConfidenceScore,
		})
	}

	if s.notablyDifferent(long.AvgStress(), short.AvgStress()) && long.AvgStress() > short.AvgStress() {
		conf := stats.Confidence(n, stats.Variance(append(append([]float64(nil), long.Stress...), short.Stress...)))
		id := types.NewInsightID("session-length-stress", fmt.Sprintf("%.2f", long.AvgStress()), fmt.Sprintf("%.2f", short.AvgStress()))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("Sessions over %.1f hours leave you notably more stressed (%.0f%% vs %.0f%%). A break in the middle might change that.", s.Config.LongSessionHours, long.AvgStress()*100, short.AvgStress()*100),
			Type:       types.TypeCorrelation,
			Priority:   6,
			Confidence: conf.ConfidenceScore,
		})
	}

	return out
}
