package domain

import "math"

// Level maps a day's raw count to an intensity bucket in 0..4 relative
// to the busiest day of the window. The log(n+1) compression keeps a few
// very busy days from flattening the rest of the scale.
func Level(count, max int) int {
	if count == 0 || max == 0 {
		return 0
	}
	normalized := math.Log(float64(count)+1) / math.Log(float64(max)+1)
	switch {
	case normalized <= 0.25:
		return 1
	case normalized <= 0.5:
		return 2
	case normalized <= 0.75:
		return 3
	default:
		return 4
	}
}
