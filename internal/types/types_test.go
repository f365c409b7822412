package types

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightValidate(t *testing.T) {
	valid := Insight{
		ID:         "workload-recovery-abc123def456",
		Message:    "You logged a lot of hours this week",
		Type:       TypeSuggestion,
		Priority:   10,
		Confidence: 0.9,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Insight)
	}{
		{"missing id", func(i *Insight) { i.ID = "" }},
		{"blank message", func(i *Insight) { i.Message = "   " }},
		{"unknown type", func(i *Insight) { i.Type = "hunch" }},
		{"priority too high", func(i *Insight) { i.Priority = 11 }},
		{"negative priority", func(i *Insight) { i.Priority = -1 }},
		{"confidence above one", func(i *Insight) { i.Confidence = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.Error(t, in.Validate())
		})
	}
}

func TestInsightTypeIsValid(t *testing.T) {
	for _, typ := range []InsightType{
		TypeObservation, TypeQuestion, TypeSuggestion, TypeAffirmation,
		TypeAlert, TypePrediction, TypeAnomaly, TypeWarning, TypeCelebration,
		TypeTrend, TypeCorrelation, TypeGoalProgress, TypeWorkplaceSpecific,
	} {
		assert.True(t, typ.IsValid(), string(typ))
	}
	assert.False(t, InsightType("").IsValid())
	assert.False(t, InsightType("guess").IsValid())
}

func TestNewInsightID(t *testing.T) {
	a := NewInsightID("late-night", "3", "2026-08-28")
	b := NewInsightID("late-night", "3", "2026-08-28")
	assert.Equal(t, a, b, "same rule and evidence must give the same id")
	assert.True(t, strings.HasPrefix(a, "late-night-"))

	c := NewInsightID("late-night", "4", "2026-08-28")
	assert.NotEqual(t, a, c, "different evidence must change the id")

	// Part boundaries matter: ("ab","c") and ("a","bc") are different ids.
	assert.NotEqual(t, NewInsightID("r", "ab", "c"), NewInsightID("r", "a", "bc"))
}

func TestCheckInRecordHelpers(t *testing.T) {
	start := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	rec := CheckInRecord{
		Timestamp:              start,
		SessionDurationSeconds: 5400,
	}
	assert.Equal(t, start.Add(90*time.Minute), rec.EndTime())
	assert.InDelta(t, 1.5, rec.Hours(), 1e-9)

	assert.False(t, rec.HasReflection())
	rec.SessionNote = "  "
	assert.False(t, rec.HasReflection())
	rec.FocusLevel = 0.75
	assert.True(t, rec.HasReflection())
}

func TestRatingToUnit(t *testing.T) {
	assert.InDelta(t, 0.0, RatingToUnit(1), 1e-9)
	assert.InDelta(t, 0.25, RatingToUnit(2), 1e-9)
	assert.InDelta(t, 0.5, RatingToUnit(3), 1e-9)
	assert.InDelta(t, 1.0, RatingToUnit(5), 1e-9)
	assert.InDelta(t, 0.0, RatingToUnit(0), 1e-9, "out-of-range ratings clamp")
	assert.InDelta(t, 1.0, RatingToUnit(9), 1e-9)
}

func TestNormalizeCheckIns(t *testing.T) {
	start := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	before := start.Add(-time.Hour)
	stress := 4.0
	focus := 2.0
	wp := " Home Office "

	raw := []RawCheckIn{
		{StartedAt: &start, EndedAt: &end, Stress: &stress, Focus: &focus, RatingScale: 5, Workplace: &wp},
		{StartedAt: &start},                // no end time
		{EndedAt: &end},                    // no start time
		{StartedAt: &end, EndedAt: &start}, // ends before it starts
		{StartedAt: &before, EndedAt: &end},
	}
	got := NormalizeCheckIns(raw)
	require.Len(t, got, 2)

	assert.Equal(t, start, got[0].Timestamp)
	assert.Equal(t, 7200, got[0].SessionDurationSeconds)
	assert.InDelta(t, 0.75, got[0].StressLevel, 1e-9)
	assert.InDelta(t, 0.25, got[0].FocusLevel, 1e-9)
	assert.Equal(t, "Home Office", got[0].WorkplaceName)

	assert.Equal(t, 10800, got[1].SessionDurationSeconds)
	assert.Zero(t, got[1].StressLevel, "absent ratings normalize to zero")
}

func TestNormalizeCheckIns_UnitScalePassthrough(t *testing.T) {
	start := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	stress := 0.8
	got := NormalizeCheckIns([]RawCheckIn{
		{StartedAt: &start, EndedAt: &end, Stress: &stress},
	})
	require.Len(t, got, 1)
	assert.InDelta(t, 0.8, got[0].StressLevel, 1e-9)
}

func TestNormalizeBreathing(t *testing.T) {
	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	got := NormalizeBreathing([]RawBreathing{
		{CompletedAt: &at, DurationSeconds: 300, ExerciseType: "box"},
		{CompletedAt: &at, DurationSeconds: 0},
		{DurationSeconds: 300},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "box", got[0].ExerciseType)
}

func TestNormalizeJournal(t *testing.T) {
	at := time.Date(2026, 8, 24, 21, 0, 0, 0, time.UTC)
	stress := 5.0
	got := NormalizeJournal([]RawJournal{
		{Timestamp: &at, Title: " Long day ", Text: " tired but made progress ", Stress: &stress, RatingScale: 5},
		{Timestamp: &at, Title: "  ", Text: ""}, // nothing written
		{Title: "no timestamp", Text: "dropped"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Long day", got[0].Title)
	assert.Equal(t, "tired but made progress", got[0].Text)
	require.NotNil(t, got[0].StressLevel)
	assert.InDelta(t, 1.0, *got[0].StressLevel, 1e-9)
	assert.Nil(t, got[0].FocusScore)
}
