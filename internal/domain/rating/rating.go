// Package rating holds the three-band thresholding shared by the vendor risk
// calculator and the framework scorer.
package rating

import "math"

// Thresholds for the upper and middle bands.
const (
	Upper  = 70.0
	Middle = 40.0
)

// Band is a position in the three-level scale.
type Band int

const (
	Bottom Band = iota
	Mid
	Top
)

// Of places score in its band.
func Of(score float64) Band {
	switch {
	case score >= Upper:
		return Top
	case score >= Middle:
		return Mid
	default:
		return Bottom
	}
}

// Round rounds half away from zero to the nearest integer.
func Round(v float64) float64 {
	return math.Round(v)
}

// Mean returns the unweighted mean of vals and false when vals is empty.
func Mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
