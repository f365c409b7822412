package rules

import "fmt"

// Config holds the tunables shared by the rule catalog. All ratings are
// on the normalized [0,1] scale, so a "one rating point" difference on
// the app's 1-5 picker is 0.25 here; the default significance threshold
// of 0.2 sits just under that.
type Config struct {
	// Time-of-day block cutoffs (hour of day). Morning is [0,MorningEnd),
	// afternoon [MorningEnd,AfternoonEnd), evening the rest.
	MorningEndHour   int `yaml:"morning_end_hour" json:"morning_end_hour"`
	AfternoonEndHour int `yaml:"afternoon_end_hour" json:"afternoon_end_hour"`

	// LateNightHour flags sessions that end at or past this hour.
	LateNightHour int `yaml:"late_night_hour" json:"late_night_hour"`

	// Session duration buckets, in hours.
	LongSessionHours  float64 `yaml:"long_session_hours" json:"long_session_hours"`
	ShortSessionHours float64 `yaml:"short_session_hours" json:"short_session_hours"`

	// DifferenceThreshold is the minimum gap between two group averages
	// (normalized scale) before they count as notably different.
	DifferenceThreshold float64 `yaml:"difference_threshold" json:"difference_threshold"`

	// RelativeMargin is how far past an adaptive threshold a period
	// total must land before the sustained-overload rules fire.
	RelativeMargin float64 `yaml:"relative_margin" json:"relative_margin"`

	// MinBreathingForHighWorkload is the breathing-session count below
	// which a heavy week counts as "without recovery".
	MinBreathingForHighWorkload int `yaml:"min_breathing_for_high_workload" json:"min_breathing_for_high_workload"`

	// Minimum observations per compared group before a comparison rule
	// emits anything. Sparse groups produce spurious insights.
	MinGroupSamples int `yaml:"min_group_samples" json:"min_group_samples"`

	// MinWorkplaceSamples gates the per-workplace pairwise comparisons.
	MinWorkplaceSamples int `yaml:"min_workplace_samples" json:"min_workplace_samples"`

	// Sentiment classification cutoffs for journal notes, and the
	// majority count needed before the sentiment rules fire.
	SentimentPositive float64 `yaml:"sentiment_positive" json:"sentiment_positive"`
	SentimentNegative float64 `yaml:"sentiment_negative" json:"sentiment_negative"`
	MinSentimentNotes int     `yaml:"min_sentiment_notes" json:"min_sentiment_notes"`
}

// DefaultConfig returns the catalog defaults.
func DefaultConfig() Config {
	return Config{
		MorningEndHour:              12,
		AfternoonEndHour:            18,
		LateNightHour:               22,
		LongSessionHours:            3,
		ShortSessionHours:           1,
		DifferenceThreshold:         0.2,
		RelativeMargin:              0.2,
		MinBreathingForHighWorkload: 3,
		MinGroupSamples:             2,
		MinWorkplaceSamples:         3,
		SentimentPositive:           0.3,
		SentimentNegative:           -0.3,
		MinSentimentNotes:           2,
	}
}

// Validate checks the config for values the catalog cannot work with.
func (c Config) Validate() error {
	if c.MorningEndHour < 0 || c.MorningEndHour > 23 {
		return fmt.Errorf("morning_end_hour must be between 0 and 23 (got %d)", c.MorningEndHour)
	}
	if c.AfternoonEndHour <= c.MorningEndHour || c.AfternoonEndHour > 23 {
		return fmt.Errorf("afternoon_end_hour must be between %d and 23 (got %d)", c.MorningEndHour+1, c.AfternoonEndHour)
	}
	if c.LateNightHour < 0 || c.LateNightHour > 23 {
		return fmt.Errorf("late_night_hour must be between 0 and 23 (got %d)", c.LateNightHour)
	}
	if c.ShortSessionHours <= 0 || c.LongSessionHours <= c.ShortSessionHours {
		return fmt.Errorf("session buckets must satisfy 0 < short < long (got short=%.1f long=%.1f)", c.ShortSessionHours, c.LongSessionHours)
	}
	if c.DifferenceThreshold <= 0 || c.DifferenceThreshold > 1 {
		return fmt.Errorf("difference_threshold must be in (0,1] (got %.2f)", c.DifferenceThreshold)
	}
	if c.RelativeMargin < 0 || c.RelativeMargin > 1 {
		return fmt.Errorf("relative_margin must be in [0,1] (got %.2f)", c.RelativeMargin)
	}
	if c.MinGroupSamples < 1 {
		return fmt.Errorf("min_group_samples must be at least 1 (got %d)", c.MinGroupSamples)
	}
	if c.MinWorkplaceSamples < 1 {
		return fmt.Errorf("min_workplace_samples must be at least 1 (got %d)", c.MinWorkplaceSamples)
	}
	if c.SentimentNegative >= c.SentimentPositive {
		return fmt.Errorf("sentiment_negative must be below sentiment_positive")
	}
	return nil
}
