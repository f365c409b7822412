package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillharbor/driftline/internal/types"
)

func TestConfidence_SampleSizeBuckets(t *testing.T) {
	tests := []struct {
		name       string
		sampleSize int
		variance   float64
		want       float64
	}{
		{"single sample", 1, 0, 0.3},
		{"two samples", 2, 0, 0.3},
		{"three samples", 3, 0, 0.6},
		{"five samples", 5, 0, 0.6},
		{"six samples", 6, 0, 0.8},
		{"ten samples", 10, 0, 0.8},
		{"fifteen samples", 15, 0, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.sampleSize, tt.variance)
			assert.InDelta(t, tt.want, got.ConfidenceScore, 1e-9)
			assert.Equal(t, tt.sampleSize, got.SampleSize)
		})
	}
}

func TestConfidence_VariancePenalty(t *testing.T) {
	// Penalty is variance/10, capped at 0.2.
	got := Confidence(15, 1.0)
	assert.InDelta(t, 0.8, got.ConfidenceScore, 1e-9)

	// Huge variance caps at 0.2 penalty.
	got = Confidence(15, 100.0)
	assert.InDelta(t, 0.7, got.ConfidenceScore, 1e-9)

	// Score never drops below the 0.1 floor.
	got = Confidence(1, 100.0)
	assert.InDelta(t, 0.1, got.ConfidenceScore, 1e-9)
}

func TestDetectAnomalies_FlagsOutlier(t *testing.T) {
	// The 9.0 is nearly 100 standard deviations from its peers, but a
	// whole-series baseline would let it inflate the spread until its
	// own z-score lands just under 2.0. Leave-one-out must flag it.
	flags := DetectAnomalies([]float64{2, 2.1, 1.9, 2.0, 9.0}, DefaultZThreshold)
	require.Len(t, flags, 5)
	assert.Equal(t, []bool{false, false, false, false, true}, flags)
}

func TestDetectAnomalies_ZeroPeerSpread(t *testing.T) {
	// An extreme value whose peers are all identical has no spread to
	// score against; nothing is flagged.
	flags := DetectAnomalies([]float64{2, 2, 2, 9}, DefaultZThreshold)
	require.Len(t, flags, 4)
	assert.Equal(t, []bool{false, false, false, false}, flags)
}

func TestDetectAnomalies_TooFewSamples(t *testing.T) {
	assert.Nil(t, DetectAnomalies([]float64{1, 2}, DefaultZThreshold))
	assert.Nil(t, DetectAnomalies(nil, DefaultZThreshold))
}

func TestDetectAnomalies_ZeroStdDev(t *testing.T) {
	flags := DetectAnomalies([]float64{3, 3, 3, 3}, DefaultZThreshold)
	require.Len(t, flags, 4)
	for i, f := range flags {
		assert.False(t, f, "index %d should not be flagged", i)
	}
}

func TestPredictTrend_Increasing(t *testing.T) {
	pred := PredictTrend([]float64{1, 2, 3, 4, 5}, "stress", 0, 10)
	require.NotNil(t, pred)
	assert.Equal(t, types.TrendIncreasing, pred.TrendDirection)
	assert.InDelta(t, 6.0, pred.PredictedValue, 1e-9)
	assert.InDelta(t, 5.0, pred.ConfidenceLow, 1e-9)
	assert.InDelta(t, 7.0, pred.ConfidenceHigh, 1e-9)
}

func TestPredictTrend_ClampedToDomain(t *testing.T) {
	pred := PredictTrend([]float64{1, 2, 3, 4, 5}, "rating", 0, 5)
	require.NotNil(t, pred)
	assert.Equal(t, types.TrendIncreasing, pred.TrendDirection)
	assert.InDelta(t, 5.0, pred.PredictedValue, 1e-9)
}

func TestPredictTrend_Decreasing(t *testing.T) {
	pred := PredictTrend([]float64{5, 4, 3, 2, 1}, "focus", 0, 10)
	require.NotNil(t, pred)
	assert.Equal(t, types.TrendDecreasing, pred.TrendDirection)
	assert.InDelta(t, 0.0, pred.PredictedValue, 1e-9)
}

func TestPredictTrend_Stable(t *testing.T) {
	pred := PredictTrend([]float64{2.0, 2.05, 1.95, 2.0}, "focus", 0, 5)
	require.NotNil(t, pred)
	assert.Equal(t, types.TrendStable, pred.TrendDirection)
}

func TestPredictTrend_TooFewSamples(t *testing.T) {
	assert.Nil(t, PredictTrend([]float64{1, 2}, "x", 0, 10))
	assert.Nil(t, PredictTrend(nil, "x", 0, 10))
}

func TestStdDev(t *testing.T) {
	// Population (n) vs sample (n-1) denominators.
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, PopulationStdDev(vals), 1e-9)
	assert.InDelta(t, 2.138, SampleStdDev(vals), 0.001)

	assert.Equal(t, 0.0, SampleStdDev([]float64{1}))
	assert.Equal(t, 0.0, PopulationStdDev(nil))
}
