package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillharbor/driftline/internal/threshold"
	"github.com/stillharbor/driftline/internal/types"
)

// ref is the reference date used across engine tests; the window is the
// seven days leading up to it.
var ref = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	return e
}

func checkIn(daysAgo int, startHour int, hours float64) types.CheckInRecord {
	start := ref.AddDate(0, 0, -daysAgo).Add(time.Duration(startHour) * time.Hour)
	return types.CheckInRecord{
		Timestamp:              start,
		SessionDurationSeconds: int(hours * 3600),
	}
}

func reflected(daysAgo int, startHour int, hours, stress, focus float64) types.CheckInRecord {
	c := checkIn(daysAgo, startHour, hours)
	c.StressLevel = stress
	c.FocusLevel = focus
	return c
}

func breathing(daysAgo int, minutes int) types.BreathingRecord {
	return types.BreathingRecord{
		CompletedAt:     ref.AddDate(0, 0, -daysAgo).Add(10 * time.Hour),
		DurationSeconds: minutes * 60,
		ExerciseType:    "box",
	}
}

// heavyWeek is 55 total work hours across the window with a single
// breathing session.
func heavyWeek() GenerateInput {
	var checkIns []types.CheckInRecord
	for d := 1; d <= 5; d++ {
		checkIns = append(checkIns, checkIn(d, 9, 8)) // 40h
	}
	checkIns = append(checkIns, checkIn(6, 9, 7.5), checkIn(7, 9, 7.5)) // 55h total
	return GenerateInput{
		CheckIns:      checkIns,
		BreathingLogs: []types.BreathingRecord{breathing(3, 5)},
		ReferenceDate: ref,
	}
}

func TestGenerate_HighWorkloadWithoutRecovery(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Generate(context.Background(), heavyWeek())
	require.NoError(t, err)
	require.NotEmpty(t, res.Insights)

	top := res.Insights[0]
	assert.Equal(t, types.TypeSuggestion, top.Type)
	assert.Equal(t, 10, top.Priority)
	assert.Contains(t, top.Message, "55.0", "message should reference the hour total")
	assert.Contains(t, top.Message, "1", "message should reference the breathing count")
	assert.Contains(t, top.Message, "breathing")
}

func TestGenerate_EmptyInputs(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Generate(context.Background(), GenerateInput{ReferenceDate: ref})
	require.NoError(t, err)
	assert.Empty(t, res.Insights)
	assert.NotEmpty(t, res.Thresholds, "snapshot still returned on empty input")
}

func TestGenerate_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	in := heavyWeek()
	in.JournalNotes = []types.JournalRecord{
		{Timestamp: ref.AddDate(0, 0, -2), Title: "note", Text: "tired and overwhelmed"},
		{Timestamp: ref.AddDate(0, 0, -4), Title: "note", Text: "stressed and stuck"},
	}

	first, err := e.Generate(context.Background(), in)
	require.NoError(t, err)
	second, err := e.Generate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.Insights, second.Insights)
	assert.Equal(t, first.Thresholds, second.Thresholds)
}

func TestGenerate_PriorityNonIncreasing(t *testing.T) {
	e := newTestEngine(t)
	in := heavyWeek()
	// Add reflections to wake up more of the catalog.
	in.CheckIns = append(in.CheckIns,
		reflected(1, 20, 0.5, 0.9, 0.2),
		reflected(2, 20, 0.5, 0.8, 0.3),
		reflected(3, 20, 0.5, 0.9, 0.2),
	)

	res, err := e.Generate(context.Background(), in)
	require.NoError(t, err)
	for i := 1; i < len(res.Insights); i++ {
		assert.GreaterOrEqual(t, res.Insights[i-1].Priority, res.Insights[i].Priority)
	}
}

func TestGenerate_DismissedInsightsFiltered(t *testing.T) {
	e := newTestEngine(t)
	in := heavyWeek()

	first, err := e.Generate(context.Background(), in)
	require.NoError(t, err)
	require.NotEmpty(t, first.Insights)

	in.DismissedIDs = map[string]bool{first.Insights[0].ID: true}
	second, err := e.Generate(context.Background(), in)
	require.NoError(t, err)
	for _, ins := range second.Insights {
		assert.NotEqual(t, first.Insights[0].ID, ins.ID)
	}
}

func TestGenerate_ThresholdsLearnFromPeriod(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Generate(context.Background(), heavyWeek())
	require.NoError(t, err)

	st, ok := res.Thresholds[threshold.MaxWeeklyHours]
	require.True(t, ok)
	// (1-0.1)*50 + 0.1*55 = 50.5
	assert.InDelta(t, 50.5, st.CurrentValue, 1e-9)
	assert.Len(t, st.History, 1)
}

func TestGenerate_SnapshotRoundTripAcrossCycles(t *testing.T) {
	e := newTestEngine(t)
	in := heavyWeek()

	first, err := e.Generate(context.Background(), in)
	require.NoError(t, err)

	in.Thresholds = first.Thresholds
	second, err := e.Generate(context.Background(), in)
	require.NoError(t, err)

	st := second.Thresholds[threshold.MaxWeeklyHours]
	// (1-0.1)*50.5 + 0.1*55 = 50.95
	assert.InDelta(t, 50.95, st.CurrentValue, 1e-9)
	assert.Len(t, st.History, 2)
}

func TestGenerate_RequiresReferenceDate(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Generate(context.Background(), GenerateInput{})
	assert.Error(t, err)
}

func TestGenerate_MaxCount(t *testing.T) {
	e := newTestEngine(t)
	in := heavyWeek()
	in.MaxCount = 1

	res, err := e.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, res.Insights, 1)
	assert.Equal(t, 10, res.Insights[0].Priority)
}

type failingScorer struct{}

func (failingScorer) Score(context.Context, string) (float64, error) {
	return 0, errors.New("nlp service down")
}

func TestGenerate_ScorerFailureDegradesToNeutral(t *testing.T) {
	e, err := New(DefaultConfig(), failingScorer{})
	require.NoError(t, err)

	in := heavyWeek()
	in.JournalNotes = []types.JournalRecord{
		{Timestamp: ref.AddDate(0, 0, -1), Title: "a", Text: "exhausted and overwhelmed"},
		{Timestamp: ref.AddDate(0, 0, -2), Title: "b", Text: "stressed and anxious"},
	}

	res, err := e.Generate(context.Background(), in)
	require.NoError(t, err, "scorer failure must not abort the cycle")
	for _, ins := range res.Insights {
		assert.NotContains(t, ins.ID, "journal-sentiment",
			"neutral-degraded notes must not trigger the sentiment rules: %s", ins.Message)
	}
}

func TestGenerate_StressTrendPrediction(t *testing.T) {
	e := newTestEngine(t)
	var checkIns []types.CheckInRecord
	// Stress climbing steeply day over day.
	stress := []float64{0.1, 0.25, 0.4, 0.55, 0.7, 0.85, 1.0}
	for d := 0; d < 7; d++ {
		checkIns = append(checkIns, reflected(7-d, 9, 2, stress[d], 0.5))
	}

	res, err := e.Generate(context.Background(), GenerateInput{
		CheckIns:      checkIns,
		ReferenceDate: ref,
	})
	require.NoError(t, err)

	var found *types.Insight
	for i := range res.Insights {
		if res.Insights[i].Type == types.TypePrediction {
			found = &res.Insights[i]
			break
		}
	}
	require.NotNil(t, found, "expected a stress-trend prediction insight")
	require.NotNil(t, found.Prediction)
	assert.Equal(t, types.TrendIncreasing, found.Prediction.TrendDirection)
	assert.LessOrEqual(t, found.Prediction.PredictedValue, 1.0, "prediction clamped to the [0,1] domain")
}

func TestGenerate_DailyHoursAnomaly(t *testing.T) {
	e := newTestEngine(t)
	var checkIns []types.CheckInRecord
	// Six steady ~2h days, then a 14h day far outside their spread.
	hours := []float64{2, 2.1, 1.9, 2, 2.1, 1.9, 14}
	for d := 0; d < 7; d++ {
		checkIns = append(checkIns, checkIn(7-d, 8, hours[d]))
	}

	res, err := e.Generate(context.Background(), GenerateInput{
		CheckIns:      checkIns,
		ReferenceDate: ref,
	})
	require.NoError(t, err)

	var found bool
	for _, ins := range res.Insights {
		if ins.Type == types.TypeAnomaly {
			found = true
			assert.True(t, ins.IsAnomaly)
			assert.Contains(t, ins.Message, "14.0")
		}
	}
	assert.True(t, found, "expected an anomaly insight for the 14-hour day")
}
