package forcegraph

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// linearScale maps a domain onto a range without clamping.
type linearScale struct {
	d0, d1 float64
	r0, r1 float64
}

func (s linearScale) At(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// thicknessScale maps a link percentage to a stroke width.
var thicknessScale = linearScale{d0: 10, d1: 100, r0: 1, r1: 10}

// LinkThickness returns the stroke width for a link of value percent.
func LinkThickness(percent float64) float64 {
	return thicknessScale.At(percent)
}

const (
	minNodeRadius = 8.0
	maxNodeRadius = 15.0
)

// sqrtScale is a pow(0.5) scale: node area tracks the value.
type sqrtScale struct {
	lin linearScale
}

// newRadiusScale builds the node radius scale over the extent of values. An
// empty or single-valued domain maps everything to the range midpoint.
func newRadiusScale(values []float64) sqrtScale {
	if len(values) == 0 {
		return sqrtScale{lin: linearScale{r0: minNodeRadius, r1: maxNodeRadius}}
	}
	lo, hi := floats.Min(values), floats.Max(values)
	return sqrtScale{lin: linearScale{d0: sqrt(lo), d1: sqrt(hi), r0: minNodeRadius, r1: maxNodeRadius}}
}

func (s sqrtScale) At(v float64) float64 {
	return s.lin.At(sqrt(v))
}

// sqrt keeps the sign, like d3's pow scale on negative input.
func sqrt(v float64) float64 {
	if v < 0 {
		return -math.Sqrt(-v)
	}
	return math.Sqrt(v)
}
