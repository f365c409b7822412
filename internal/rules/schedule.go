package rules

import (
	"fmt"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/types"
)

// lateNightRule counts sessions ending at or after the configured
// late-night hour.
type lateNightRule struct{}

func (lateNightRule) Name() string { return "late-night" }

func (lateNightRule) Evaluate(s *Snapshot) []types.Insight {
	if s.LateNightCount < 2 {
		return nil
	}

	conf := stats.Confidence(s.SessionCount, 0)
	id := types.NewInsightID("late-night", fmt.Sprintf("%d", s.LateNightCount))
	msg := pickTemplate(id,
		fmt.Sprintf("%d of your sessions ran past %d:00 this period. Late finishes tend to eat into the recovery that the next day depends on.", s.LateNightCount, s.Config.LateNightHour),
		fmt.Sprintf("You closed out %d sessions after %d:00 this period. Is the late-evening work a choice or a spillover?", s.LateNightCount, s.Config.LateNightHour),
	)
	return []types.Insight{{
		ID:         id,
		Message:    msg,
		Type:       types.TypeQuestion,
		Priority:   6,
		Confidence: conf.ConfidenceScore,
	}}
}

// weekendRule counts Saturday/Sunday sessions.
type weekendRule struct{}

func (weekendRule) Name() string { return "weekend" }

func (weekendRule) Evaluate(s *Snapshot) []types.Insight {
	if s.WeekendCount < 2 {
		return nil
	}

	conf := stats.Confidence(s.SessionCount, 0)
	id := types.NewInsightID("weekend", fmt.Sprintf("%d", s.WeekendCount))
	msg := pickTemplate(id,
		fmt.Sprintf("You logged %d weekend sessions this period. Are your rest days still giving you an actual rest?", s.WeekendCount),
		fmt.Sprintf("%d work sessions landed on the weekend this period. If that's by design, fine; if it's drift, it's worth noticing.", s.WeekendCount),
	)
	return []types.Insight{{
		ID:         id,
		Message:    msg,
		Type:       types.TypeQuestion,
		Priority:   4,
		Confidence: conf.ConfidenceScore,
	}}
}

// reflectionGapRule nudges when sessions are being completed but none
// carry a reflection.
type reflectionGapRule struct{}

func (reflectionGapRule) Name() string { return "reflection-gap" }

func (reflectionGapRule) Evaluate(s *Snapshot) []types.Insight {
	if s.SessionCount < 3 || s.ReflectedCount > 0 {
		return nil
	}

	id := types.NewInsightID("reflection-gap", fmt.Sprintf("%d", s.SessionCount))
	return []types.Insight{{
		ID:         id,
		Message:    fmt.Sprintf("You completed %d sessions this period without rating any of them. A ten-second check-in afterward is what lets these insights get sharper.", s.SessionCount),
		Type:       types.TypeQuestion,
		Priority:   3,
		Confidence: stats.Confidence(s.SessionCount, 0).ConfidenceScore,
	}}
}
