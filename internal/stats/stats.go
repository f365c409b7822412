// Package stats implements the stateless statistical core of the insight
// engine: confidence scoring from sample size and variance, z-score
// anomaly detection, and ordinary-least-squares trend forecasting.
//
// Every function degrades gracefully on sparse input: too few samples or
// zero variance yields an empty/zero result, never an error or a panic.
// Calling rules simply skip emission on those results.
package stats

import (
	"math"

	"github.com/stillharbor/driftline/internal/types"
)

// DefaultZThreshold is the z-score above which a value is flagged anomalous.
const DefaultZThreshold = 2.0

// minTrendSamples is the smallest series worth fitting or scanning.
const minTrendSamples = 3

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStdDev returns the standard deviation with an n denominator.
func PopulationStdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// SampleStdDev returns the standard deviation with an n-1 denominator,
// or 0 when fewer than two values are present.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}
	mean := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Variance returns the population variance (n denominator).
func Variance(values []float64) float64 {
	sd := PopulationStdDev(values)
	return sd * sd
}

// Confidence scores how trustworthy a conclusion drawn from sampleSize
// observations with the given variance is. Base confidence comes from a
// sample-size bucket (0-2 -> 0.3, 3-5 -> 0.6, 6-10 -> 0.8, >10 -> 0.9),
// then a variance penalty of up to 0.2 is subtracted, floored at 0.1.
func Confidence(sampleSize int, variance float64) types.ConfidenceMetrics {
	var base float64
	switch {
	case sampleSize <= 2:
		base = 0.3
	case sampleSize <= 5:
		base = 0.6
	case sampleSize <= 10:
		base = 0.8
	default:
		base = 0.9
	}

	penalty := variance / 10
	if penalty < 0 {
		penalty = 0
	}
	if penalty > 0.2 {
		penalty = 0.2
	}

	score := base - penalty
	if score < 0.1 {
		score = 0.1
	}

	se := 0.0
	if sampleSize > 0 {
		se = math.Sqrt(variance) / math.Sqrt(float64(sampleSize))
	}

	return types.ConfidenceMetrics{
		SampleSize:      sampleSize,
		StandardError:   se,
		ConfidenceScore: score,
	}
}

// DetectAnomalies flags values that sit far outside the rest of the
// series. Each candidate is scored against the mean and population
// standard deviation of the other values (leave-one-out): including the
// candidate in its own baseline lets a single extreme sample inflate
// the spread enough to hide just under the cutoff. Series shorter than
// three samples return nil; a candidate whose peers have zero spread is
// never flagged.
func DetectAnomalies(values []float64, zThreshold float64) []bool {
	n := len(values)
	if n < minTrendSamples {
		return nil
	}

	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}

	flags := make([]bool, n)
	m := float64(n - 1)
	for i, v := range values {
		mean := (sum - v) / m
		variance := (sumSq-v*v)/m - mean*mean
		if variance <= 0 {
			continue
		}
		if math.Abs(v-mean)/math.Sqrt(variance) > zThreshold {
			flags[i] = true
		}
	}
	return flags
}

// PredictTrend fits ordinary least squares over x = 0..n-1 and projects
// one step past the end of the series. The predicted value is clamped to
// [domainMin, domainMax], the metric's valid range. Series shorter than
// three samples return nil. The confidence interval is a fixed unit-width
// band around the prediction.
func PredictTrend(values []float64, label string, domainMin, domainMax float64) *types.PredictionResult {
	n := len(values)
	if n < minTrendSamples {
		return nil
	}

	slope, intercept := fitLine(values)

	direction := types.TrendStable
	if slope > 0.1 {
		direction = types.TrendIncreasing
	} else if slope < -0.1 {
		direction = types.TrendDecreasing
	}

	predicted := slope*float64(n) + intercept
	if predicted < domainMin {
		predicted = domainMin
	}
	if predicted > domainMax {
		predicted = domainMax
	}

	return &types.PredictionResult{
		ForecastLabel:  label,
		PredictedValue: predicted,
		TrendDirection: direction,
		ConfidenceLow:  predicted - 1,
		ConfidenceHigh: predicted + 1,
	}
}

// fitLine returns the OLS slope and intercept for y over x = 0..n-1.
func fitLine(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, Mean(y)
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
