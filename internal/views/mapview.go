package views

import (
	"fmt"
	"strings"

	"energydash/internal/engine"
	"energydash/internal/geo"
	"energydash/internal/models"
)

// MainCountries get a pie overlay on the map.
var MainCountries = []string{"Central America", "Canada", "US", "Brazil", "Russian Federation", "India", "Australia", "China"}

// ShapeState is the visual state of one country shape.
type ShapeState int

const (
	ShapeColored ShapeState = iota
	ShapeNoData
	ShapeHighlighted
	ShapeDimmed
)

var shapeStateNames = [...]string{"colored", "no-data", "highlighted", "dimmed"}

func (s ShapeState) String() string { return shapeStateNames[s] }

func (s ShapeState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Pattern is the striped fill of the highlighted country.
type Pattern struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// PatternID is the fill pattern id for a country name.
func PatternID(name string) string {
	return "rectpattern_" + strings.ReplaceAll(name, " ", "")
}

// Shape is one boundary feature as drawn.
type Shape struct {
	Name     string            `json:"name"`
	Code     string            `json:"code,omitempty"`
	State    ShapeState        `json:"state"`
	Fill     string            `json:"fill"`
	Stroke   string            `json:"stroke"`
	Pattern  *Pattern          `json:"pattern,omitempty"`
	Dominant models.EnergyType `json:"dominant"`
	HasData  bool              `json:"hasData"`
}

// Slice is one segment of a pie.
type Slice struct {
	Type  models.EnergyType `json:"type"`
	Value float64           `json:"value"`
	Color string            `json:"color"`
}

// Pie is the per-type mean consumption of one country at its location.
type Pie struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Slices []Slice `json:"slices"`
}

// Line is one energy type's series in a tooltip.
type Line struct {
	Type   models.EnergyType  `json:"type"`
	Color  string             `json:"color"`
	Points []models.YearPoint `json:"points"`
}

// Tooltip is the hover line chart of a country.
type Tooltip struct {
	Title   string        `json:"title"`
	Lines   []Line        `json:"lines"`
	XDomain [2]int        `json:"xDomain"`
	YDomain models.Extent `json:"yDomain"`
	Pie     []Slice       `json:"pie"`
}

// MapSnapshot is the full visual state of the map view.
type MapSnapshot struct {
	Shapes      []Shape `json:"shapes"`
	Pies        []Pie   `json:"pies"`
	Selected    string  `json:"selected,omitempty"`
	Interactive bool    `json:"interactive"`
}

// MapView is the choropleth with pie overlays.
type MapView struct {
	bounds *geo.Boundaries
	ds     *engine.Dataset
	agg    *models.MapAggregate

	shapes []Shape
	byCode map[string][]int
	pies   []Pie

	selected    string
	hasSelected bool
	interactive bool
}

// NewMapView builds a map over joined boundaries.
func NewMapView(bounds *geo.Boundaries) *MapView {
	return &MapView{bounds: bounds, interactive: true}
}

func (m *MapView) Name() string { return "map" }

// Filter re-aggregates and redraws every shape from scratch.
func (m *MapView) Filter(ds *engine.Dataset) {
	m.ds = ds
	m.agg = ds.Map()

	m.shapes = make([]Shape, len(m.bounds.Features))
	m.byCode = make(map[string][]int)
	for i, f := range m.bounds.Features {
		m.shapes[i] = Shape{Name: f.Name, Code: f.Code}
		if f.Mapped() {
			m.byCode[f.Code] = append(m.byCode[f.Code], i)
		}
		m.baseline(i)
	}
	m.buildPies()

	if m.hasSelected {
		m.apply(m.selected)
	}
}

// baseline resets shape i to its data-driven appearance.
func (m *MapView) baseline(i int) {
	s := &m.shapes[i]
	s.Pattern = nil
	s.Dominant, s.HasData = 0, false
	if s.Code != "" {
		s.Dominant, s.HasData = m.agg.Dominant(s.Code)
	}
	if s.HasData {
		s.State, s.Fill, s.Stroke = ShapeColored, s.Dominant.Color(), "black"
	} else {
		s.State, s.Fill, s.Stroke = ShapeNoData, models.NoDataColor, "grey"
	}
}

func (m *MapView) buildPies() {
	m.pies = m.pies[:0]
	for _, name := range MainCountries {
		code, ok := m.ds.Store().CodeForName(name)
		if !ok {
			continue
		}
		means, ok := m.agg.MeanByType[code]
		if !ok {
			continue
		}
		loc := m.agg.Location[code]
		m.pies = append(m.pies, Pie{Code: code, Name: name, Lat: loc.Lat, Lon: loc.Lon, Slices: slices(means)})
	}
}

// slices lists the per-type means in type order. An all-zero pie is empty.
func slices(means map[models.EnergyType]float64) []Slice {
	var sum float64
	for _, v := range means {
		sum += v
	}
	out := make([]Slice, 0, len(means))
	if sum == 0 {
		return out
	}
	for _, t := range models.AllEnergyTypes() {
		if v, ok := means[t]; ok {
			out = append(out, Slice{Type: t, Value: v, Color: t.Color()})
		}
	}
	return out
}

// apply dims every shape but code and patterns code's shapes.
func (m *MapView) apply(code string) {
	for i := range m.shapes {
		s := &m.shapes[i]
		if s.Code == code && s.HasData {
			s.State = ShapeHighlighted
			s.Pattern = &Pattern{ID: PatternID(s.Name), Color: s.Dominant.Color()}
			s.Fill = fmt.Sprintf("url(#%s)", s.Pattern.ID)
			continue
		}
		s.State, s.Fill, s.Pattern = ShapeDimmed, models.NoDataColor, nil
	}
}

func (m *MapView) HighlightCountry(code, old string, hadOld bool) {
	if hadOld {
		for _, i := range m.byCode[old] {
			m.baseline(i)
		}
	}
	m.selected, m.hasSelected = code, true
	m.apply(code)
}

func (m *MapView) UnhighlightCountry(code string) {
	if m.hasSelected && m.selected == code {
		m.selected, m.hasSelected = "", false
	}
	for i := range m.shapes {
		m.baseline(i)
	}
}

// The map does not react to type selection.
func (m *MapView) HighlightType(models.EnergyType)   {}
func (m *MapView) UnhighlightType(models.EnergyType) {}

func (m *MapView) SetInteractive(on bool) { m.interactive = on }

// Clickable reports whether the shape named name accepts clicks: it must
// join to a country with consumption, and the map must be interactive.
func (m *MapView) Clickable(name string) (string, bool) {
	f, ok := m.bounds.Lookup(name)
	if !ok || !f.Mapped() || !m.interactive || m.ds == nil {
		return "", false
	}
	return f.Code, m.ds.HasConsumption(f.Code)
}

// Tooltip returns the hover chart for code. It is unavailable while the
// animation plays and for countries without rows.
func (m *MapView) Tooltip(code string) (*Tooltip, bool) {
	if !m.interactive || m.agg == nil {
		return nil, false
	}
	series, ok := m.agg.Series[code]
	if !ok {
		return nil, false
	}
	tt := &Tooltip{
		Title:   fmt.Sprintf("Energy Consumption of %s between %d - %d", nameOf(m.ds, code), m.agg.Years[0], m.agg.Years[1]),
		XDomain: m.agg.Years,
		YDomain: m.agg.ConsumptionExtent[code],
		Pie:     slices(m.agg.MeanByType[code]),
	}
	for _, t := range models.AllEnergyTypes() {
		pts, ok := series[t]
		if !ok {
			continue
		}
		// zero samples are gaps in the line
		defined := make([]models.YearPoint, 0, len(pts))
		for _, p := range pts {
			if p.Consumption != 0 {
				defined = append(defined, p)
			}
		}
		tt.Lines = append(tt.Lines, Line{Type: t, Color: t.Color(), Points: defined})
	}
	return tt, true
}

// Aggregate exposes the current rollup to the renderer.
func (m *MapView) Aggregate() *models.MapAggregate { return m.agg }

// Snapshot copies the visual state.
func (m *MapView) Snapshot() MapSnapshot {
	snap := MapSnapshot{
		Shapes:      append([]Shape(nil), m.shapes...),
		Pies:        append([]Pie(nil), m.pies...),
		Interactive: m.interactive,
	}
	if m.hasSelected {
		snap.Selected = m.selected
	}
	return snap
}
