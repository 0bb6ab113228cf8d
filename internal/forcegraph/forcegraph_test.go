package forcegraph

import (
	"math"
	"testing"

	"energydash/internal/models"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()

	// Sections are contiguous and cover the ring with padding
	for i := 1; i < models.NumEnergyTypes; i++ {
		gap := l.Groups[i].StartAngle - l.Groups[i-1].EndAngle
		if math.Abs(gap-PadAngle) > 1e-12 {
			t.Errorf("Gap before group %d: expected %v, got %v", i, PadAngle, gap)
		}
	}
	last := l.Groups[models.NumEnergyTypes-1]
	if math.Abs(last.EndAngle+PadAngle-2*math.Pi) > 1e-9 {
		t.Errorf("Ring does not close: last end %v", last.EndAngle)
	}

	// Oil row sums to 14, Geo to 8
	if l.Groups[models.Oil].Value != 14 || l.Groups[models.Geo].Value != 8 {
		t.Errorf("Unexpected group values %v %v", l.Groups[models.Oil].Value, l.Groups[models.Geo].Value)
	}

	for _, typ := range models.AllEnergyTypes() {
		x, y := l.Anchor(typ)
		if r := math.Hypot(x, y); math.Abs(r-174.25) > 1e-9 {
			t.Errorf("%v anchor at radius %v, want 174.25", typ, r)
		}
	}
}

func TestScales(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{10, 1},
		{100, 10},
		{55, 5.5},
	}
	for _, tt := range tests {
		if got := LinkThickness(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("LinkThickness(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	s := newRadiusScale([]float64{4, 16, 9})
	if got := s.At(4); got != 8 {
		t.Errorf("Expected min radius 8, got %v", got)
	}
	if got := s.At(16); got != 15 {
		t.Errorf("Expected max radius 15, got %v", got)
	}
	// sqrt(9)=3 is halfway between 2 and 4
	if got := s.At(9); math.Abs(got-11.5) > 1e-9 {
		t.Errorf("Expected 11.5, got %v", got)
	}

	flat := newRadiusScale([]float64{7, 7})
	if got := flat.At(7); got != 11.5 {
		t.Errorf("Degenerate domain must map to midpoint, got %v", got)
	}
}

func TestParseTemplate(t *testing.T) {
	tmpl, err := ParseTemplate([]byte(`{"nodes":[{"id":"CAN"},{"id":"FRA"}],"links":[]}`))
	if err != nil {
		t.Fatalf("ParseTemplate failed: %v", err)
	}
	if len(tmpl.Nodes) != 2 || tmpl.Nodes[1].ID != "FRA" {
		t.Errorf("Unexpected nodes %+v", tmpl.Nodes)
	}

	bad := []string{
		`{`,
		`{"nodes":[{"id":""}]}`,
		`{"nodes":[{"id":"A"},{"id":"A"}]}`,
	}
	for _, b := range bad {
		if _, err := ParseTemplate([]byte(b)); err == nil {
			t.Errorf("Expected error for %s", b)
		}
	}
}

func testAggregate() *models.ChordAggregate {
	return &models.ChordAggregate{
		Total: map[string]float64{"CAN": 10, "FRA": 4, "TCD": 0},
		Normalized: map[string]float64{
			"CAN": 16, "FRA": 4, "TCD": 0,
		},
		Percent: map[string]map[models.EnergyType]float64{
			"CAN": {models.Oil: 60, models.Gas: 35, models.Solar: 5},
			"FRA": {models.Nuclear: 75, models.Oil: 25},
		},
	}
}

func TestBuild(t *testing.T) {
	tmpl := &Template{Nodes: []TemplateNode{{ID: "CAN"}, {ID: "TCD"}, {ID: "FRA"}, {ID: "XXX"}}}
	g := NewBuilder(tmpl, DefaultSignificantPercent).Build(testAggregate())

	// 1. Zero and missing countries are removed, anchors added
	countries := g.Countries()
	if len(countries) != 2 || countries[0] != "CAN" || countries[1] != "FRA" {
		t.Fatalf("Expected [CAN FRA], got %v", countries)
	}
	if len(g.Nodes) != 2+models.NumEnergyTypes {
		t.Errorf("Expected %d nodes, got %d", 2+models.NumEnergyTypes, len(g.Nodes))
	}

	// 2. Links only above the threshold
	want := map[string]bool{"CAN-Oil": true, "CAN-Gas": true, "FRA-Nuclear": true, "FRA-Oil": true}
	if len(g.Links) != len(want) {
		t.Errorf("Expected %d links, got %d", len(want), len(g.Links))
	}
	for _, l := range g.Links {
		if !want[l.Source+"-"+l.Target] {
			t.Errorf("Unexpected link %s-%s", l.Source, l.Target)
		}
		if !l.TypeSet || l.Type.String() != l.Target {
			t.Errorf("Link %s-%s has wrong type %v", l.Source, l.Target, l.Type)
		}
	}

	// 3. Node styling
	can, _ := g.Node("CAN")
	if can.Type != models.Oil || can.Color != models.Oil.Color() {
		t.Errorf("Expected CAN dominant Oil, got %v %s", can.Type, can.Color)
	}
	if can.Radius != 15 {
		t.Errorf("Expected CAN max radius 15, got %v", can.Radius)
	}
	fra, _ := g.Node("FRA")
	if len(fra.Significant) != 2 || fra.Significant[0] != models.Oil || fra.Significant[1] != models.Nuclear {
		t.Errorf("Unexpected FRA significant types %v", fra.Significant)
	}

	// 4. Anchors stay fixed, everything is finite
	layout := DefaultLayout()
	for _, n := range g.Nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
			t.Errorf("Node %s has non-finite position", n.ID)
		}
		if n.Anchor {
			x, y := layout.Anchor(n.Type)
			if n.X != x || n.Y != y {
				t.Errorf("Anchor %s moved to (%v,%v)", n.ID, n.X, n.Y)
			}
		}
	}

	// Template is untouched
	if len(tmpl.Nodes) != 4 || len(tmpl.Links) != 0 {
		t.Error("Build must not modify the template")
	}
}

func TestBuildDeterministic(t *testing.T) {
	tmpl := &Template{Nodes: []TemplateNode{{ID: "CAN"}, {ID: "FRA"}}}
	b := NewBuilder(tmpl, DefaultSignificantPercent)
	g1 := b.Build(testAggregate())
	g2 := b.Build(testAggregate())
	for i := range g1.Nodes {
		if g1.Nodes[i].X != g2.Nodes[i].X || g1.Nodes[i].Y != g2.Nodes[i].Y {
			t.Fatalf("Node %s differs between builds", g1.Nodes[i].ID)
		}
	}
}

func TestSimulationSeparatesNodes(t *testing.T) {
	g := &Graph{index: make(map[string]int)}
	g.add(Node{ID: "A"})
	g.add(Node{ID: "B"})
	simulate(g, DefaultTicks)

	a, b := g.Nodes[0], g.Nodes[1]
	if d := math.Hypot(a.X-b.X, a.Y-b.Y); d < collideRadius {
		t.Errorf("Collision force should push nodes apart, distance %v", d)
	}
}
