// Package scoring turns the raw default probability returned by the risk service
// into the percentage and category shown to analysts.
package scoring

import "math"

// Category is the displayed risk bucket.
type Category string

// Risk buckets. Labels are shown verbatim in the dashboard.
const (
	CategoryLow    Category = "Faible"
	CategoryMedium Category = "Moyen"
	CategoryHigh   Category = "Élevé"
)

// Bucket thresholds on the 0-100 scale.
const (
	lowUpperBound    = 30.0
	mediumUpperBound = 70.0
	percentScale     = 100.0
	roundingFactor   = 100.0 // two decimals
)

// Scale converts a probability in [0,1] to a percentage rounded half-up to two decimals.
func Scale(raw float64) float64 {
	return RoundHalfUp(raw*percentScale, roundingFactor)
}

// RoundHalfUp rounds v to the precision given by factor (100 => two decimals),
// with ties going away from zero.
func RoundHalfUp(v, factor float64) float64 {
	return math.Round(v*factor) / factor
}

// Categorize maps a percentage to its bucket: [..,30) low, [30,70) medium, [70,..] high.
func Categorize(score float64) Category {
	switch {
	case score < lowUpperBound:
		return CategoryLow
	case score < mediumUpperBound:
		return CategoryMedium
	default:
		return CategoryHigh
	}
}

// Assessment is a scaled score with its bucket.
type Assessment struct {
	Score    float64
	Category Category
}

// Assess scales raw for display and categorizes the unrounded percentage.
// Rounding never moves a score across a bucket boundary: 29.9996 shows as
// 30 and stays low.
func Assess(raw float64) Assessment {
	return Assessment{Score: Scale(raw), Category: Categorize(raw * percentScale)}
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }
