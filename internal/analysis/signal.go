package analysis

import (
	"math"
	"sort"
)

// Sample is a single feature observation anchored to a moment in the video.
type Sample struct {
	T     float64 `json:"t"`
	Value float64 `json:"value"`
}

// Signal is a time-ordered series of samples for one feature dimension.
type Signal []Sample

// Values returns the sample values in order.
func (s Signal) Values() []float64 {
	out := make([]float64, len(s))
	for i, sample := range s {
		out[i] = sample.Value
	}
	return out
}

// WindowMean averages the sample values falling inside [start, end).
// It returns 0 when the window contains no samples.
func (s Signal) WindowMean(start, end float64) float64 {
	sum := 0.0
	count := 0
	for _, sample := range s {
		if sample.T >= start && sample.T < end {
			sum += sample.Value
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// NormalizeMinMax rescales values into [0, 1]. A flat signal maps to all
// zeros so that uniform content never reads as interesting.
func NormalizeMinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span <= 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// PercentileClamp caps values at the given percentile so that a handful of
// extreme spikes cannot flatten the rest of the signal after normalization.
func PercentileClamp(values []float64, percentile float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if len(values) == 0 || percentile <= 0 || percentile >= 100 {
		return out
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	rank := percentile / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	ceiling := sorted[lower]
	if upper != lower {
		frac := rank - float64(lower)
		ceiling = sorted[lower]*(1-frac) + sorted[upper]*frac
	}
	for i, v := range out {
		if v > ceiling {
			out[i] = ceiling
		}
	}
	return out
}

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

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Clamp01 bounds a value to [0, 1].
func Clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
