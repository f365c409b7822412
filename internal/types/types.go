package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Insight represents a single ranked, typed, natural-language observation
// produced for one user in one generation cycle.
type Insight struct {
	// ID is derived deterministically from the rule that produced the
	// insight and the data points that triggered it, so a dismissed
	// insight keeps matching on later cycles. See NewInsightID.
	ID string `json:"id"`

	Message  string      `json:"message"`
	Type     InsightType `json:"type"`
	Priority int         `json:"priority"`

	// Confidence estimates how trustworthy the insight is (0.0-1.0),
	// derived from sample size and variance of the underlying data.
	Confidence float64 `json:"confidence"`

	IsAnomaly  bool              `json:"is_anomaly,omitempty"`
	Prediction *PredictionResult `json:"prediction,omitempty"`
}

// Validate checks if the insight has valid field values
func (i *Insight) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(i.Message) == "" {
		return fmt.Errorf("message is required")
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("invalid insight type: %s", i.Type)
	}
	if i.Priority < 0 || i.Priority > 10 {
		return fmt.Errorf("priority must be between 0 and 10 (got %d)", i.Priority)
	}
	if i.Confidence < 0.0 || i.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0 (got %.2f)", i.Confidence)
	}
	return nil
}

// InsightType categorizes the kind of observation an insight carries
type InsightType string

const (
	TypeObservation       InsightType = "observation"
	TypeQuestion          InsightType = "question"
	TypeSuggestion        InsightType = "suggestion"
	TypeAffirmation       InsightType = "affirmation"
	TypeAlert             InsightType = "alert"
	TypePrediction        InsightType = "prediction"
	TypeAnomaly           InsightType = "anomaly"
	TypeWarning           InsightType = "warning"
	TypeCelebration       InsightType = "celebration"
	TypeTrend             InsightType = "trend"
	TypeCorrelation       InsightType = "correlation"
	TypeGoalProgress      InsightType = "goal_progress"
	TypeWorkplaceSpecific InsightType = "workplace_specific"
)

// IsValid checks if the insight type value is valid
func (t InsightType) IsValid() bool {
	switch t {
	case TypeObservation, TypeQuestion, TypeSuggestion, TypeAffirmation,
		TypeAlert, TypePrediction, TypeAnomaly, TypeWarning, TypeCelebration,
		TypeTrend, TypeCorrelation, TypeGoalProgress, TypeWorkplaceSpecific:
		return true
	}
	return false
}

// TrendDirection classifies the sign of a fitted linear slope
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// PredictionResult carries a linear-trend forecast for a single metric.
type PredictionResult struct {
	ForecastLabel  string         `json:"forecast_label"`
	PredictedValue float64        `json:"predicted_value"`
	TrendDirection TrendDirection `json:"trend_direction"`

	// Fixed unit-width band around the predicted value.
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
}

// ConfidenceMetrics captures the inputs and output of confidence scoring.
type ConfidenceMetrics struct {
	SampleSize      int     `json:"sample_size"`
	StandardError   float64 `json:"standard_error"`
	ConfidenceScore float64 `json:"confidence_score"` // 0.1-1.0
}

// NewInsightID derives a stable insight identifier from the rule that
// fired and the specific data points that triggered it. Two cycles that
// trigger the same rule on the same evidence produce the same id, which
// is what makes dismissal tracking work across cycles. The upstream app
// this engine replaces minted a fresh random id per cycle, so dismissals
// never matched again; content-derived ids are an intentional fix.
func NewInsightID(ruleID string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(ruleID))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return ruleID + "-" + hex.EncodeToString(h.Sum(nil))[:12]
}

// CheckInRecord is one completed work-session check-in. Immutable once
// constructed at the normalization boundary; stress and focus are on the
// normalized [0,1] scale.
type CheckInRecord struct {
	Timestamp              time.Time `json:"timestamp"`
	SessionDurationSeconds int       `json:"session_duration_seconds"`
	StressLevel            float64   `json:"stress_level"`
	FocusLevel             float64   `json:"focus_level"`
	WorkplaceName          string    `json:"workplace_name,omitempty"`
	SessionNote            string    `json:"session_note,omitempty"`
}

// HasReflection reports whether the check-in carries any self-reported
// signal (ratings or a note) beyond the raw session timing.
func (c *CheckInRecord) HasReflection() bool {
	return c.StressLevel > 0 || c.FocusLevel > 0 || strings.TrimSpace(c.SessionNote) != ""
}

// EndTime returns when the session ended (Timestamp marks the start).
func (c *CheckInRecord) EndTime() time.Time {
	return c.Timestamp.Add(time.Duration(c.SessionDurationSeconds) * time.Second)
}

// Hours returns the session duration in hours.
func (c *CheckInRecord) Hours() float64 {
	return float64(c.SessionDurationSeconds) / 3600.0
}

// BreathingRecord is one completed breathing exercise.
type BreathingRecord struct {
	CompletedAt     time.Time `json:"completed_at"`
	DurationSeconds int       `json:"duration_seconds"`
	ExerciseType    string    `json:"exercise_type"`
}

// JournalRecord is one free-text journal note, optionally carrying
// normalized stress/focus self-ratings.
type JournalRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	StressLevel *float64  `json:"stress_level,omitempty"`
	FocusScore  *float64  `json:"focus_score,omitempty"`
}
