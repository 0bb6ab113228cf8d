package forcegraph

import (
	"energydash/internal/models"
)

// DefaultSignificantPercent is the share above which a country links to an
// energy type.
const DefaultSignificantPercent = 10.0

// Node is a graph vertex: a country, or a fixed energy-type anchor.
type Node struct {
	ID     string
	Anchor bool
	// Type is the anchored type; for countries it is the dominant type.
	Type  models.EnergyType
	Color string
	// Significant lists the types whose share exceeds the threshold.
	Significant []models.EnergyType
	Radius      float64

	X, Y   float64
	VX, VY float64
	FX, FY float64
}

// Link connects a country node to an energy anchor.
type Link struct {
	Source    string
	Target    string
	Value     float64
	Thickness float64
	// Type is the energy type at the anchor end, when Target is an anchor.
	Type    models.EnergyType
	TypeSet bool

	source, target int
}

// Graph is the per-filter-cycle instance. It is rebuilt from the template on
// every refresh and owned by the chord view.
type Graph struct {
	Nodes []Node
	Links []Link
	index map[string]int
}

// Node returns the node with id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// Countries returns the country node ids in build order.
func (g *Graph) Countries() []string {
	out := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if !n.Anchor {
			out = append(out, n.ID)
		}
	}
	return out
}

// Builder turns a template and a chord aggregate into a laid-out Graph.
type Builder struct {
	tmpl      *Template
	layout    Layout
	threshold float64
	ticks     int
}

// NewBuilder returns a builder over tmpl. threshold is the significance
// percentage for energy links.
func NewBuilder(tmpl *Template, threshold float64) *Builder {
	return &Builder{
		tmpl:      tmpl,
		layout:    DefaultLayout(),
		threshold: threshold,
		ticks:     DefaultTicks,
	}
}

// Layout returns the chord ring the anchors sit on.
func (b *Builder) Layout() Layout { return b.layout }


// Build makes a fresh graph for agg and runs the simulation to rest.
func (b *Builder) Build(agg *models.ChordAggregate) *Graph {
	g := &Graph{index: make(map[string]int)}

	// 1. Country nodes: template order, zero or missing consumption removed
	var normalized []float64
	for _, v := range agg.Normalized {
		normalized = append(normalized, v)
	}
	radius := newRadiusScale(normalized)

	for _, tn := range b.tmpl.Nodes {
		if agg.Total[tn.ID] == 0 {
			continue
		}
		n := Node{ID: tn.ID, Radius: minNodeRadius}
		if v, ok := agg.Normalized[tn.ID]; ok {
			n.Radius = radius.At(v)
		}
		n.Type, n.Color = dominant(agg.Percent[tn.ID])
		for _, t := range models.AllEnergyTypes() {
			if agg.Significant(tn.ID, t, b.threshold) {
				n.Significant = append(n.Significant, t)
			}
		}
		g.add(n)
	}

	// 2. Anchor nodes, fixed at their rim section
	for _, t := range models.AllEnergyTypes() {
		x, y := b.layout.Anchor(t)
		g.add(Node{
			ID:     t.String(),
			Anchor: true,
			Type:   t,
			Color:  t.Color(),
			X:      x,
			Y:      y,
			FX:     x,
			FY:     y,
		})
	}

	// 3. Static links whose endpoints survived
	for _, tl := range b.tmpl.Links {
		g.link(tl.Source, tl.Target, tl.Value)
	}

	// 4. Energy links for every significant share
	for _, n := range g.Nodes {
		if n.Anchor {
			continue
		}
		for _, t := range n.Significant {
			g.link(n.ID, t.String(), agg.Percent[n.ID][t])
		}
	}

	simulate(g, b.ticks)
	return g
}

func (g *Graph) add(n Node) {
	g.index[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
}

func (g *Graph) link(source, target string, value float64) {
	si, ok := g.index[source]
	if !ok {
		return
	}
	ti, ok := g.index[target]
	if !ok {
		return
	}
	l := Link{
		Source:    source,
		Target:    target,
		Value:     value,
		Thickness: LinkThickness(value),
		source:    si,
		target:    ti,
	}
	if tn := g.Nodes[ti]; tn.Anchor {
		l.Type, l.TypeSet = tn.Type, true
	}
	g.Links = append(g.Links, l)
}

// dominant returns the type with the highest share. Ties go to the lowest
// type index.
func dominant(pct map[models.EnergyType]float64) (models.EnergyType, string) {
	best, bestVal, found := models.EnergyType(0), 0.0, false
	for _, t := range models.AllEnergyTypes() {
		v, ok := pct[t]
		if !ok {
			continue
		}
		if !found || v > bestVal {
			best, bestVal, found = t, v, true
		}
	}
	if !found {
		return 0, models.NoDataColor
	}
	return best, best.Color()
}
