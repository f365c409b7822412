package rules

import (
	"fmt"
	"time"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/types"
)

// blockOrder fixes the comparison walk so emission is deterministic.
var blockOrder = []TimeBlock{BlockMorning, BlockAfternoon, BlockEvening}

// timeBlockRule compares focus and stress across morning/afternoon/
// evening blocks.
type timeBlockRule struct{}

func (timeBlockRule) Name() string { return "time-block" }

func (timeBlockRule) Evaluate(s *Snapshot) []types.Insight {
	var eligible []TimeBlock
	for _, b := range blockOrder {
		if g, ok := s.ByTimeBlock[b]; ok && g.Reflected() >= s.Config.MinGroupSamples {
			eligible = append(eligible, b)
		}
	}
	if len(eligible) < 2 {
		return nil
	}

	best, worst := eligible[0], eligible[0]
	calmest, tensest := eligible[0], eligible[0]
	total := 0
	var allFocus, allStress []float64
	for _, b := range eligible {
		g := s.ByTimeBlock[b]
		total += g.Reflected()
		allFocus = append(allFocus, g.Focus...)
		allStress = append(allStress, g.Stress...)
		if g.AvgFocus() > s.ByTimeBlock[best].AvgFocus() {
			best = b
		}
		if g.AvgFocus() < s.ByTimeBlock[worst].AvgFocus() {
			worst = b
		}
		if g.AvgStress() < s.ByTimeBlock[calmest].AvgStress() {
			calmest = b
		}
		if g.AvgStress() > s.ByTimeBlock[tensest].AvgStress() {
			tensest = b
		}
	}

	var out []types.Insight

	hi, lo := s.ByTimeBlock[best].AvgFocus(), s.ByTimeBlock[worst].AvgFocus()
	if best != worst && s.notablyDifferent(hi, lo) {
		conf := stats.Confidence(total, stats.Variance(allFocus))
		id := types.NewInsightID("time-block", string(best), string(worst), fmt.Sprintf("%.2f", hi-lo))
		msg := pickTemplate(id,
			fmt.Sprintf("Your sharpest hours are the %s: focus averages %.0f%% there against %.0f%% in the %s.", best, hi*100, lo*100, worst),
			fmt.Sprintf("Focus peaks in the %s (%.0f%%) and dips in the %s (%.0f%%). Scheduling demanding work accordingly could pay off.", best, hi*100, worst, lo*100),
		)
		out = append(out, types.Insight{
			ID:         id,
			Message:    msg,
			Type:       types.TypeObservation,
			Priority:   5,
			Confidence: conf.ConfidenceScore,
		})
	}

	calm, tense := s.ByTimeBlock[calmest].AvgStress(), s.ByTimeBlock[tensest].AvgStress()
	if calmest != tensest && s.notablyDifferent(calm, tense) {
		conf := stats.Confidence(total, stats.Variance(allStress))
		id := types.NewInsightID("time-block-stress", string(tensest), string(calmest), fmt.Sprintf("%.2f", tense-calm))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("Stress runs highest in the %s (%.0f%%) and eases off in the %s (%.0f%%). Placing breaks around the tense stretch could soften it.", tensest, tense*100, calmest, calm*100),
			Type:       types.TypeObservation,
			Priority:   5,
			Confidence: conf.ConfidenceScore,
		})
	}

	return out
}

// weekdayRule compares focus and stress across weekdays.
type weekdayRule struct{}

func (weekdayRule) Name() string { return "weekday" }

func (weekdayRule) Evaluate(s *Snapshot) []types.Insight {
	// Walk Sunday..Saturday for a stable order.
	var eligible []time.Weekday
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if g, ok := s.ByWeekday[wd]; ok && g.Reflected() >= s.Config.MinGroupSamples {
			eligible = append(eligible, wd)
		}
	}
	if len(eligible) < 2 {
		return nil
	}

	best, worst := eligible[0], eligible[0]
	calmest, tensest := eligible[0], eligible[0]
	total := 0
	var allFocus, allStress []float64
	for _, wd := range eligible {
		g := s.ByWeekday[wd]
		total += g.Reflected()
		allFocus = append(allFocus, g.Focus...)
		allStress = append(allStress, g.Stress...)
		if g.AvgFocus() > s.ByWeekday[best].AvgFocus() {
			best = wd
		}
		if g.AvgFocus() < s.ByWeekday[worst].AvgFocus() {
			worst = wd
		}
		if g.AvgStress() < s.ByWeekday[calmest].AvgStress() {
			calmest = wd
		}
		if g.AvgStress() > s.ByWeekday[tensest].AvgStress() {
			tensest = wd
		}
	}

	var out []types.Insight

	hi, lo := s.ByWeekday[best].AvgFocus(), s.ByWeekday[worst].AvgFocus()
	if best != worst && s.notablyDifferent(hi, lo) {
		conf := stats.Confidence(total, stats.Variance(allFocus))
		bestName := best.String()
		worstName := worst.String()
		id := types.NewInsightID("weekday", bestName, worstName, fmt.Sprintf("%.2f", hi-lo))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("%ss are your strongest day for focus (%.0f%%), %ss your weakest (%.0f%%). Patterns like this are useful when planning the week.", bestName, hi*100, worstName, lo*100),
			Type:       types.TypeObservation,
			Priority:   4,
			Confidence: conf.ConfidenceScore,
		})
	}

	calm, tense := s.ByWeekday[calmest].AvgStress(), s.ByWeekday[tensest].AvgStress()
	if calmest != tensest && s.notablyDifferent(calm, tense) {
		conf := stats.Confidence(total, stats.Variance(allStress))
		tenseName := tensest.String()
		calmName := calmest.String()
		id := types.NewInsightID("weekday-stress", tenseName, calmName, fmt.Sprintf("%.2f", tense-calm))
		out = append(out, types.Insight{
			ID:         id,
			Message:    fmt.Sprintf("%ss carry your highest stress (%.0f%%), while %ss stay around %.0f%%. If the tense day has a recurring cause, it may be movable.", tenseName, tense*100, calmName, calm*100),
			Type:       types.TypeObservation,
			Priority:   4,
			Confidence: conf.ConfidenceScore,
		})
	}

	return out
}
