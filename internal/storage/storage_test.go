package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillharbor/driftline/internal/threshold"
	"github.com/stillharbor/driftline/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "driftline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestThresholds_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := map[string]threshold.State{
		threshold.MaxWeeklyHours: {
			Name:          threshold.MaxWeeklyHours,
			CurrentValue:  50.5,
			BaselineValue: 50,
			MinValue:      35,
			MaxValue:      60,
			LearningRate:  0.1,
			History:       []float64{55},
		},
	}
	require.NoError(t, s.SaveThresholds(ctx, "user-1", snap))

	got, err := s.LoadThresholds(ctx, "user-1")
	require.NoError(t, err)
	require.Contains(t, got, threshold.MaxWeeklyHours)
	assert.InDelta(t, 50.5, got[threshold.MaxWeeklyHours].CurrentValue, 1e-9)
	assert.Equal(t, []float64{55}, got[threshold.MaxWeeklyHours].History)
}

func TestThresholds_UpsertOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := map[string]threshold.State{"m": {Name: "m", CurrentValue: 1}}
	second := map[string]threshold.State{"m": {Name: "m", CurrentValue: 2}}
	require.NoError(t, s.SaveThresholds(ctx, "u", first))
	require.NoError(t, s.SaveThresholds(ctx, "u", second))

	got, err := s.LoadThresholds(ctx, "u")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got["m"].CurrentValue, 1e-9)
}

func TestThresholds_UnknownUserIsEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.LoadThresholds(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDismissals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordDismissal(ctx, "u", "workload-recovery-abc123"))
	require.NoError(t, s.RecordDismissal(ctx, "u", "workload-recovery-abc123"), "re-dismissing is a no-op")
	require.NoError(t, s.RecordDismissal(ctx, "u", "late-night-def456"))
	require.NoError(t, s.RecordDismissal(ctx, "other", "weekend-xyz"))

	got, err := s.DismissedIDs(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, got["workload-recovery-abc123"])
	assert.False(t, got["weekend-xyz"], "dismissals are per user")
}

func TestGenerations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestGeneration(ctx, "u")
	require.NoError(t, err)
	assert.Nil(t, latest)

	older := []types.Insight{{ID: "a", Message: "old", Type: types.TypeObservation, Priority: 2}}
	newer := []types.Insight{
		{ID: "b", Message: "new", Type: types.TypeSuggestion, Priority: 10},
		{ID: "c", Message: "also new", Type: types.TypeQuestion, Priority: 4},
	}

	id1, err := s.RecordGeneration(ctx, "u", 7, older)
	require.NoError(t, err)
	id2, err := s.RecordGeneration(ctx, "u", 7, newer)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	latest, err = s.LatestGeneration(ctx, "u")
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "b", latest[0].ID)
	assert.Equal(t, types.TypeSuggestion, latest[0].Type)
}
