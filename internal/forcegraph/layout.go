package forcegraph

import (
	"math"

	"energydash/internal/models"
)

const (
	// PadAngle separates adjacent rim sections, in radians.
	PadAngle = 0.05
	// InnerRadius and OuterRadius bound the rim ring.
	InnerRadius = 170.0
	OuterRadius = 178.5
)

// Group is one rim section of the chord ring.
type Group struct {
	Type       models.EnergyType
	StartAngle float64
	EndAngle   float64
	Value      float64
}

// Layout is the chord ring: one group per energy type, clockwise from 12
// o'clock, sized by the row sums of the weight matrix.
type Layout struct {
	Groups [models.NumEnergyTypes]Group
}

// NewLayout lays the groups out around the circle with padAngle between them.
func NewLayout(matrix [models.NumEnergyTypes][models.NumEnergyTypes]float64, padAngle float64) Layout {
	var l Layout
	var total float64
	for i, row := range matrix {
		var sum float64
		for _, v := range row {
			sum += v
		}
		l.Groups[i] = Group{Type: models.EnergyType(i), Value: sum}
		total += sum
	}

	k := math.Max(0, 2*math.Pi-padAngle*float64(models.NumEnergyTypes))
	if total > 0 {
		k /= total
	}
	x := 0.0
	for i := range l.Groups {
		l.Groups[i].StartAngle = x
		x += l.Groups[i].Value * k
		l.Groups[i].EndAngle = x
		x += padAngle
	}
	return l
}

// DefaultLayout is the ring drawn by the chord view.
func DefaultLayout() Layout {
	return NewLayout(models.ChordRingMatrix, PadAngle)
}

// Anchor is the fixed position of a type's anchor node: the middle of its
// section at the middle radius of the ring.
func (l Layout) Anchor(t models.EnergyType) (x, y float64) {
	g := l.Groups[t]
	a := (g.StartAngle+g.EndAngle)/2 - math.Pi/2
	r := (InnerRadius + OuterRadius) / 2
	return math.Cos(a) * r, math.Sin(a) * r
}
