// Package match holds the base-matcher boundary and the feedback-adjusted
// score composition.
package match

import "math"

// Compose folds feedback into a base compatibility score:
//
//	final = round(base * (1 - penalty)) + boost, clamped to [0,100]
//
// The rejection penalty is multiplicative, the preference boost additive.
func Compose(base int, penalty float64, boost int) int {
	adjusted := int(math.Round(float64(base)*(1-penalty))) + boost
	return Clamp(adjusted)
}

// Clamp bounds a score to the canonical [0,100] range.
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
