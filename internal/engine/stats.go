package engine

import "math"

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the n-1 standard deviation. Returns 0 for fewer than two
// values.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// SummaryStats holds descriptive statistics for a value series.
type SummaryStats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Describe computes descriptive statistics for the series.
func Describe(values []float64) SummaryStats {
	lo, hi := minMax(values)
	return SummaryStats{
		Mean: mean(values),
		Std:  sampleStd(values),
		Min:  lo,
		Max:  hi,
	}
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// halfSplitChange computes the relative change between the means of the
// earlier and later halves of a window. ok is false when the window is too
// small or the earlier mean is zero.
func halfSplitChange(values []float64) (pct float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}
	mid := len(values) / 2
	earlier := mean(values[:mid])
	later := mean(values[mid:])
	if earlier == 0 {
		return 0, false
	}
	return (later - earlier) / earlier, true
}
