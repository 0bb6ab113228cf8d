package views

import (
	"fmt"
	"sort"

	"energydash/internal/engine"
	"energydash/internal/forcegraph"
	"energydash/internal/models"
)

const (
	// BaseLinkOpacity is the resting stroke opacity of force links.
	BaseLinkOpacity = 0.1
	// DimNodeOpacity is the fill opacity of de-emphasized nodes.
	DimNodeOpacity = 0.2
)

// NodeVisual is a force-graph node as drawn.
type NodeVisual struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Anchor        bool                `json:"anchor"`
	X             float64             `json:"x"`
	Y             float64             `json:"y"`
	Radius        float64             `json:"radius"`
	Fill          string              `json:"fill"`
	FillOpacity   float64             `json:"fillOpacity"`
	Stroke        string              `json:"stroke"`
	PointerEvents bool                `json:"pointerEvents"`
	Highlighted   bool                `json:"highlighted"`
	Layer         Layer               `json:"layer"`
	Significant   []models.EnergyType `json:"significant,omitempty"`
}

// LinkVisual is a force-graph link as drawn.
type LinkVisual struct {
	Source    string            `json:"source"`
	Target    string            `json:"target"`
	Type      models.EnergyType `json:"type"`
	Value     float64           `json:"value"`
	Thickness float64           `json:"thickness"`
	Stroke    string            `json:"stroke"`
	Opacity   float64           `json:"opacity"`
	Layer     Layer             `json:"layer"`
}

// RimVisual is one chord ring section.
type RimVisual struct {
	Type        models.EnergyType `json:"type"`
	Label       string            `json:"label"`
	StartAngle  float64           `json:"startAngle"`
	EndAngle    float64           `json:"endAngle"`
	Color       string            `json:"color"`
	Highlighted bool              `json:"highlighted"`
}

// ChordSnapshot is the full visual state of the chord view.
type ChordSnapshot struct {
	Rims         []RimVisual  `json:"rims"`
	Nodes        []NodeVisual `json:"nodes"`
	Links        []LinkVisual `json:"links"`
	RimClickable bool         `json:"rimClickable"`
	Interactive  bool         `json:"interactive"`
}

// NodeTooltip lists a country's type shares, largest first.
type NodeTooltip struct {
	Title  string         `json:"title"`
	Shares []models.Share `json:"shares"`
}

// RimTooltip describes one energy type section.
type RimTooltip struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// ChordView is the chord ring with the force graph drawn inside it.
type ChordView struct {
	builder *forcegraph.Builder
	ds      *engine.Dataset
	agg     *models.ChordAggregate
	graph   *forcegraph.Graph

	nodes     []NodeVisual
	links     []LinkVisual
	rims      [models.NumEnergyTypes]RimVisual
	nodeIndex map[string]int

	country     string
	hasCountry  bool
	typ         models.EnergyType
	hasType     bool
	interactive bool
}

// NewChordView builds a chord view whose graph comes from builder.
func NewChordView(builder *forcegraph.Builder) *ChordView {
	v := &ChordView{builder: builder, interactive: true}
	layout := builder.Layout()
	for i, g := range layout.Groups {
		label := g.Type.String()
		if g.Type == models.Renewables {
			label = "Renew."
		}
		v.rims[i] = RimVisual{
			Type:       g.Type,
			Label:      label,
			StartAngle: g.StartAngle,
			EndAngle:   g.EndAngle,
			Color:      g.Type.Color(),
		}
	}
	return v
}

func (v *ChordView) Name() string { return "chord" }

// Filter rebuilds the graph from the template and the new aggregate.
func (v *ChordView) Filter(ds *engine.Dataset) {
	v.ds = ds
	v.agg = ds.Chord()
	v.graph = v.builder.Build(v.agg)

	v.nodes = make([]NodeVisual, len(v.graph.Nodes))
	v.nodeIndex = make(map[string]int, len(v.graph.Nodes))
	for i, n := range v.graph.Nodes {
		name := n.ID
		if !n.Anchor {
			name = nameOf(ds, n.ID)
		}
		v.nodes[i] = NodeVisual{
			ID:          n.ID,
			Name:        name,
			Anchor:      n.Anchor,
			X:           n.X,
			Y:           n.Y,
			Radius:      n.Radius,
			Fill:        n.Color,
			Significant: n.Significant,
		}
		v.nodeIndex[n.ID] = i
	}
	v.links = make([]LinkVisual, len(v.graph.Links))
	for i, l := range v.graph.Links {
		v.links[i] = LinkVisual{
			Source:    l.Source,
			Target:    l.Target,
			Type:      l.Type,
			Value:     l.Value,
			Thickness: l.Thickness,
		}
	}
	v.resetAll()

	if v.hasCountry {
		v.HighlightCountry(v.country, "", false)
	}
	if v.hasType {
		v.HighlightType(v.typ)
	}
}

// resetAll puts every mark back to baseline.
func (v *ChordView) resetAll() {
	for i := range v.nodes {
		v.resetNode(&v.nodes[i])
	}
	for i := range v.links {
		v.resetLink(&v.links[i])
	}
	for i := range v.rims {
		v.rims[i].Highlighted = false
	}
}

func (v *ChordView) resetNode(n *NodeVisual) {
	n.FillOpacity = 1
	n.Stroke = "grey"
	n.PointerEvents = true
	n.Highlighted = false
	n.Layer = LayerBase
}

func (v *ChordView) resetLink(l *LinkVisual) {
	l.Stroke = "grey"
	l.Opacity = BaseLinkOpacity
	l.Layer = LayerBase
}

func (v *ChordView) HighlightCountry(code, old string, hadOld bool) {
	for i := range v.nodes {
		v.nodes[i].Highlighted = false
	}
	if hadOld {
		if n, ok := v.node(old); ok {
			v.resetNode(n)
		}
		for i := range v.links {
			if v.links[i].Source == old {
				v.resetLink(&v.links[i])
			}
		}
	}

	// Dim everything, then bring the country and its links forward
	for i := range v.nodes {
		v.nodes[i].FillOpacity = DimNodeOpacity
	}
	for i := range v.links {
		l := &v.links[i]
		if l.Source == code {
			l.Stroke, l.Opacity, l.Layer = "black", 1, LayerRaised
		}
	}
	if n, ok := v.node(code); ok {
		n.FillOpacity, n.Layer, n.Highlighted = 1, LayerRaised, true
	}
	v.country, v.hasCountry = code, true
}

func (v *ChordView) UnhighlightCountry(code string) {
	for i := range v.nodes {
		v.nodes[i].FillOpacity = 1
	}
	for i := range v.links {
		if v.links[i].Source == code {
			v.resetLink(&v.links[i])
		}
	}
	if n, ok := v.node(code); ok {
		n.Highlighted, n.Layer = false, LayerBase
	}
	if v.hasCountry && v.country == code {
		v.country, v.hasCountry = "", false
	}
}

func (v *ChordView) HighlightType(t models.EnergyType) {
	for i := range v.rims {
		v.rims[i].Highlighted = false
	}
	for i := range v.links {
		l := &v.links[i]
		if l.Type == t && l.Target == t.String() {
			l.Stroke, l.Opacity, l.Layer = "black", 1, LayerBase
			continue
		}
		l.Stroke, l.Opacity, l.Layer = "grey", 0, LayerBase
	}
	for i := range v.nodes {
		n := &v.nodes[i]
		n.Highlighted = false
		if !n.Anchor && hasType(n.Significant, t) {
			n.FillOpacity, n.PointerEvents, n.Highlighted, n.Layer = 1, true, true, LayerRaised
			continue
		}
		n.FillOpacity, n.PointerEvents, n.Layer = DimNodeOpacity, false, LayerBase
	}
	v.rims[t].Highlighted = true
	v.typ, v.hasType = t, true
}

func (v *ChordView) UnhighlightType(t models.EnergyType) {
	for i := range v.links {
		v.resetLink(&v.links[i])
	}
	for i := range v.nodes {
		v.resetNode(&v.nodes[i])
	}
	v.rims[t].Highlighted = false
	if v.hasType && v.typ == t {
		v.typ, v.hasType = 0, false
	}
}

func (v *ChordView) SetInteractive(on bool) { v.interactive = on }

func (v *ChordView) node(id string) (*NodeVisual, bool) {
	i, ok := v.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return &v.nodes[i], true
}

func hasType(ts []models.EnergyType, t models.EnergyType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// NodeClickable reports whether the country node id accepts clicks.
func (v *ChordView) NodeClickable(id string) bool {
	n, ok := v.node(id)
	return ok && !n.Anchor && n.PointerEvents && v.interactive
}

// RimClickable reports whether rim sections show the pointer cursor: only
// when no country is selected and the animation is not playing.
func (v *ChordView) RimClickable() bool {
	return v.interactive && !v.hasCountry
}

// NodeTooltip returns the name and type shares of a country node.
func (v *ChordView) NodeTooltip(code string) (*NodeTooltip, bool) {
	if v.agg == nil {
		return nil, false
	}
	pct, ok := v.agg.Percent[code]
	if !ok {
		return nil, false
	}
	tt := &NodeTooltip{Title: nameOf(v.ds, code)}
	for t, p := range pct {
		tt.Shares = append(tt.Shares, models.Share{Type: t, Percent: p})
	}
	sort.Slice(tt.Shares, func(i, j int) bool {
		if tt.Shares[i].Percent != tt.Shares[j].Percent {
			return tt.Shares[i].Percent > tt.Shares[j].Percent
		}
		return tt.Shares[i].Type < tt.Shares[j].Type
	})
	return tt, true
}

// RimTooltip describes type t: the global total, or the selected country's
// consumption of it.
func (v *ChordView) RimTooltip(t models.EnergyType) RimTooltip {
	tt := RimTooltip{Title: t.String()}
	if v.agg == nil {
		return tt
	}
	if v.hasCountry {
		val := v.agg.ByCountryType[v.country][t]
		tt.Subtitle = fmt.Sprintf("Consumption for %s: %.2f exajoules", nameOf(v.ds, v.country), val)
		return tt
	}
	tt.Subtitle = fmt.Sprintf("Total Consumption: %.2f exajoules", v.agg.ByType[t])
	return tt
}

// Aggregate exposes the current rollup to the renderer.
func (v *ChordView) Aggregate() *models.ChordAggregate { return v.agg }

// Snapshot copies the visual state. Nodes and links are listed base layer
// first so the order is the draw order.
func (v *ChordView) Snapshot() ChordSnapshot {
	snap := ChordSnapshot{
		Rims:         append([]RimVisual(nil), v.rims[:]...),
		RimClickable: v.RimClickable(),
		Nodes:        append(make([]NodeVisual, 0, len(v.nodes)), v.nodes...),
		Links:        append(make([]LinkVisual, 0, len(v.links)), v.links...),
		Interactive:  v.interactive,
	}
	sort.SliceStable(snap.Nodes, func(i, j int) bool { return snap.Nodes[i].Layer < snap.Nodes[j].Layer })
	sort.SliceStable(snap.Links, func(i, j int) bool { return snap.Links[i].Layer < snap.Links[j].Layer })
	return snap
}
