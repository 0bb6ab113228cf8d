package forcegraph

import (
	"math"
)

const (
	// DefaultTicks is how many steps it takes alpha to decay to alphaMin.
	DefaultTicks = 300

	alphaMin      = 0.001
	velocityDecay = 0.6
	linkDistance  = 30.0
	collideRadius = 10.0

	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// simulate runs a velocity Verlet simulation with link, collide and center
// forces until alpha cools. Fixed nodes stay at (FX, FY). Starting positions
// are a phyllotaxis spiral so results are deterministic.
func simulate(g *Graph, ticks int) {
	n := len(g.Nodes)
	if n == 0 || ticks <= 0 {
		return
	}
	rnd := newLCG()

	// 1. Initial positions
	for i := range g.Nodes {
		nd := &g.Nodes[i]
		if nd.Anchor {
			nd.X, nd.Y = nd.FX, nd.FY
			continue
		}
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		nd.X, nd.Y = r*math.Cos(a), r*math.Sin(a)
		nd.VX, nd.VY = 0, 0
	}

	// 2. Link strengths and bias from node degree
	count := make([]int, n)
	for _, l := range g.Links {
		count[l.source]++
		count[l.target]++
	}
	strength := make([]float64, len(g.Links))
	bias := make([]float64, len(g.Links))
	for i, l := range g.Links {
		strength[i] = 1 / float64(min(count[l.source], count[l.target]))
		bias[i] = float64(count[l.source]) / float64(count[l.source]+count[l.target])
	}

	alphaDecay := 1 - math.Pow(alphaMin, 1/float64(ticks))
	alpha := 1.0

	// 3. Tick loop
	for step := 0; step < ticks && alpha >= alphaMin; step++ {
		alpha += (0 - alpha) * alphaDecay

		forceLink(g, alpha, strength, bias, rnd)
		forceCollide(g, rnd)
		forceCenter(g)

		for i := range g.Nodes {
			nd := &g.Nodes[i]
			if nd.Anchor {
				nd.X, nd.Y = nd.FX, nd.FY
				nd.VX, nd.VY = 0, 0
				continue
			}
			nd.VX *= velocityDecay
			nd.VY *= velocityDecay
			nd.X += nd.VX
			nd.Y += nd.VY
		}
	}
}

func forceLink(g *Graph, alpha float64, strength, bias []float64, rnd *lcg) {
	for i, l := range g.Links {
		s, t := &g.Nodes[l.source], &g.Nodes[l.target]
		x := t.X + t.VX - s.X - s.VX
		if x == 0 {
			x = rnd.jiggle()
		}
		y := t.Y + t.VY - s.Y - s.VY
		if y == 0 {
			y = rnd.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		d = (d - linkDistance) / d * alpha * strength[i]
		x *= d
		y *= d
		b := bias[i]
		t.VX -= x * b
		t.VY -= y * b
		s.VX += x * (1 - b)
		s.VY += y * (1 - b)
	}
}

// forceCollide is the pairwise form of a circle collision force; node
// counts here are in the low hundreds.
func forceCollide(g *Graph, rnd *lcg) {
	const r = collideRadius * 2
	for i := range g.Nodes {
		a := &g.Nodes[i]
		xi, yi := a.X+a.VX, a.Y+a.VY
		for j := i + 1; j < len(g.Nodes); j++ {
			b := &g.Nodes[j]
			x := xi - (b.X + b.VX)
			y := yi - (b.Y + b.VY)
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = rnd.jiggle()
				l += x * x
			}
			if y == 0 {
				y = rnd.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			l = (r - l) / l
			x *= l
			y *= l
			// equal radii split the correction evenly
			a.VX += x * 0.5
			a.VY += y * 0.5
			b.VX -= x * 0.5
			b.VY -= y * 0.5
		}
	}
}

func forceCenter(g *Graph) {
	var sx, sy float64
	for _, nd := range g.Nodes {
		sx += nd.X
		sy += nd.Y
	}
	n := float64(len(g.Nodes))
	sx, sy = sx/n, sy/n
	for i := range g.Nodes {
		g.Nodes[i].X -= sx
		g.Nodes[i].Y -= sy
	}
}

// lcg is a small linear congruential generator for deterministic jiggle.
type lcg struct{ s uint32 }

func newLCG() *lcg { return &lcg{s: 1} }

func (r *lcg) next() float64 {
	r.s = 1664525*r.s + 1013904223
	return float64(r.s) / 4294967296
}

func (r *lcg) jiggle() float64 {
	return (r.next() - 0.5) * 1e-6
}
