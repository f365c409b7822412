package rules

import (
	"fmt"

	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/types"
)

// sentimentRule classifies the period's journal notes by the scores the
// injected sentiment collaborator produced (>= +0.3 positive, <= -0.3
// negative, else neutral) and responds once a clear majority forms.
type sentimentRule struct{}

func (sentimentRule) Name() string { return "journal-sentiment" }

func (sentimentRule) Evaluate(s *Snapshot) []types.Insight {
	var positive, negative int
	for _, ns := range s.NoteSentiments {
		switch {
		case ns.Score >= s.Config.SentimentPositive:
			positive++
		case ns.Score <= s.Config.SentimentNegative:
			negative++
		}
	}

	total := len(s.NoteSentiments)
	conf := stats.Confidence(total, 0)
	id := types.NewInsightID("journal-sentiment", fmt.Sprintf("%d", positive), fmt.Sprintf("%d", negative), fmt.Sprintf("%d", total))

	if positive >= s.Config.MinSentimentNotes && positive > negative {
		msg := pickTemplate(id,
			fmt.Sprintf("Your journal has been leaning bright lately: %d of %d notes this period read as positive. Hold on to whatever is feeding that.", positive, total),
			fmt.Sprintf("%d of your %d journal notes this period carried a positive tone. That's worth pausing to appreciate.", positive, total),
		)
		return []types.Insight{{
			ID:         id,
			Message:    msg,
			Type:       types.TypeAffirmation,
			Priority:   5,
			Confidence: conf.ConfidenceScore,
		}}
	}

	if negative >= s.Config.MinSentimentNotes && negative > positive {
		msg := pickTemplate(id,
			fmt.Sprintf("%d of your %d journal notes this period read as heavy. What would make the next few days a little lighter?", negative, total),
			fmt.Sprintf("Your journaling has had a harder edge lately (%d of %d notes). Is there one thing you could set down this week?", negative, total),
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
