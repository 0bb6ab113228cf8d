// Package render turns view snapshots into ECharts pages with go-echarts.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"energydash/internal/dashboard"
	"energydash/internal/models"
	"energydash/internal/views"
)

const (
	chartWidth  = "900px"
	chartHeight = "500px"
)

var namedColors = map[string]string{
	"black": "#000000",
	"grey":  "#808080",
	"white": "#ffffff",
}

// fade mixes a "#rrggbb" or named color toward white, the way an opacity
// over a white background would look.
func fade(color string, opacity float64) string {
	if c, ok := namedColors[color]; ok {
		color = c
	}
	if opacity >= 1 || len(color) != 7 || color[0] != '#' {
		return color
	}
	if opacity < 0 {
		opacity = 0
	}
	v, err := strconv.ParseUint(color[1:], 16, 32)
	if err != nil {
		return color
	}
	mix := func(c uint64) uint64 {
		return uint64(float64(c)*opacity + 255*(1-opacity) + 0.5)
	}
	r, g, b := mix(v>>16&0xff), mix(v>>8&0xff), mix(v&0xff)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func typeColors() []string {
	out := make([]string, models.NumEnergyTypes)
	for i, t := range models.AllEnergyTypes() {
		out[i] = t.Color()
	}
	return out
}

func initOpts(id string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: id,
		Width:   chartWidth,
		Height:  chartHeight,
	})
}

// Bar draws the per-capita emissions bars in display order.
func Bar(snap views.BarSnapshot) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("bar"),
		charts.WithTitleOpts(opts.Title{
			Title:    "CO2 Emissions per Capita",
			Subtitle: "Carbon Dioxide Per Capita (tonnes)",
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Emissions", Max: snap.YMax}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	names := make([]string, len(snap.Bars))
	data := make([]opts.BarData, len(snap.Bars))
	for i, b := range snap.Bars {
		names[i] = b.Country
		color := "#4682b4"
		switch b.State {
		case views.BarSelected:
			color = "#e31a1c"
		case views.BarNotSelected:
			color = models.NoDataColor
		}
		data[i] = opts.BarData{Name: b.Country, Value: b.Value, ItemStyle: &opts.ItemStyle{Color: color}}
	}
	bar.SetXAxis(names).AddSeries("Emissions", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(snap.ShowLabels), Position: "top"}))
	return bar
}

// Map draws the choropleth. Shapes are colored by dominant type; no data
// and dimmed shapes are left out so they take the neutral map fill.
func Map(snap views.MapSnapshot) *charts.Map {
	m := charts.NewMap()
	m.RegisterMapType("world")
	m.SetGlobalOptions(
		initOpts("map"),
		charts.WithTitleOpts(opts.Title{Title: "Dominant Energy Source"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     0,
			Max:     float32(models.NumEnergyTypes - 1),
			InRange: &opts.VisualMapInRange{Color: typeColors()},
		}),
	)

	data := make([]opts.MapData, 0, len(snap.Shapes))
	for _, s := range snap.Shapes {
		if !s.HasData || s.State == views.ShapeDimmed || s.State == views.ShapeNoData {
			continue
		}
		data = append(data, opts.MapData{Name: s.Name, Value: int(s.Dominant)})
	}
	m.AddSeries("Dominant type", data)
	return m
}

// Pie draws one country's mean consumption by type.
func Pie(p views.Pie) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts("pie-"+p.Code),
		charts.WithTitleOpts(opts.Title{Title: p.Name, Subtitle: "Mean consumption by type"}),
	)
	pie.AddSeries(p.Name, pieData(p.Slices),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"0%", "60%"}}))
	return pie
}

func pieData(slices []views.Slice) []opts.PieData {
	data := make([]opts.PieData, len(slices))
	for i, s := range slices {
		data[i] = opts.PieData{Name: s.Type.String(), Value: s.Value, ItemStyle: &opts.ItemStyle{Color: s.Color}}
	}
	return data
}

// Rim draws the chord ring as a donut, one section per type sized by its
// angular span.
func Rim(snap views.ChordSnapshot) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts("rim"),
		charts.WithTitleOpts(opts.Title{Title: "Energy Types"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)
	dim := anyRimHighlighted(snap.Rims)
	data := make([]opts.PieData, len(snap.Rims))
	for i, r := range snap.Rims {
		color := r.Color
		if dim && !r.Highlighted {
			color = fade(color, views.DimNodeOpacity)
		}
		data[i] = opts.PieData{Name: r.Label, Value: r.EndAngle - r.StartAngle, ItemStyle: &opts.ItemStyle{Color: color}}
	}
	pie.AddSeries("Types", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"85%", "90%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return pie
}

func anyRimHighlighted(rims []views.RimVisual) bool {
	for _, r := range rims {
		if r.Highlighted {
			return true
		}
	}
	return false
}

// linkStyle is one stroke shared by a group of links. Links carry no style
// of their own in a graph series, so each style gets its own series.
type linkStyle struct {
	color string
	width float32
	layer views.Layer
}

func styleOf(l views.LinkVisual) linkStyle {
	w := float32(math.Round(l.Thickness*2) / 2)
	if w < 0.5 {
		w = 0.5
	}
	return linkStyle{color: fade(l.Stroke, l.Opacity), width: w, layer: l.Layer}
}

// Graph draws the force graph at its simulated positions. Base links go
// under the nodes and raised links above them; invisible links are skipped.
func Graph(snap views.ChordSnapshot) *charts.Graph {
	g := charts.NewGraph()
	g.SetGlobalOptions(
		initOpts("graph"),
		charts.WithTitleOpts(opts.Title{Title: "Energy Mix Network"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	byID := make(map[string]views.NodeVisual, len(snap.Nodes))
	nodes := make([]opts.GraphNode, len(snap.Nodes))
	for i, n := range snap.Nodes {
		byID[n.ID] = n
		nodes[i] = opts.GraphNode{
			Name:       n.ID,
			X:          float32(n.X),
			Y:          float32(n.Y),
			Fixed:      opts.Bool(true),
			SymbolSize: 2 * n.Radius,
			ItemStyle:  &opts.ItemStyle{Color: fade(n.Fill, n.FillOpacity), BorderColor: n.Stroke},
		}
	}

	// 1. Group links by stroke, keeping first-seen order
	var styles []linkStyle
	groups := make(map[linkStyle][]views.LinkVisual)
	for _, l := range snap.Links {
		if l.Opacity <= 0 {
			continue
		}
		st := styleOf(l)
		if _, ok := groups[st]; !ok {
			styles = append(styles, st)
		}
		groups[st] = append(groups[st], l)
	}

	// 2. One series per style; endpoints are repeated as invisible nodes
	addLinks := func(layer views.Layer) {
		for i, st := range styles {
			if st.layer != layer {
				continue
			}
			var ends []opts.GraphNode
			seen := make(map[string]bool)
			links := make([]opts.GraphLink, 0, len(groups[st]))
			for _, l := range groups[st] {
				for _, id := range []string{l.Source, l.Target} {
					if n, ok := byID[id]; ok && !seen[id] {
						seen[id] = true
						ends = append(ends, opts.GraphNode{Name: id, X: float32(n.X), Y: float32(n.Y), Fixed: opts.Bool(true), SymbolSize: 0})
					}
				}
				links = append(links, opts.GraphLink{Source: l.Source, Target: l.Target, Value: float32(l.Value)})
			}
			g.AddSeries(fmt.Sprintf("links-%d", i), ends, links,
				charts.WithGraphChartOpts(opts.GraphChart{Layout: "none"}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: st.color, Width: st.width}))
		}
	}

	addLinks(views.LayerBase)
	g.AddSeries("nodes", nodes, nil,
		charts.WithGraphChartOpts(opts.GraphChart{Layout: "none"}))
	addLinks(views.LayerRaised)
	return g
}

// Tooltip draws a country's hover line chart. Gaps stay empty.
func Tooltip(tt *views.Tooltip) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts("tooltip"),
		charts.WithTitleOpts(opts.Title{Title: tt.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Exajoules", Min: tt.YDomain.Min, Max: tt.YDomain.Max}),
	)

	lo, hi := tt.XDomain[0], tt.XDomain[1]
	years := make([]string, 0, hi-lo+1)
	for y := lo; y <= hi; y++ {
		years = append(years, strconv.Itoa(y))
	}
	line.SetXAxis(years)
	for _, l := range tt.Lines {
		data := make([]opts.LineData, len(years))
		for i := range data {
			data[i] = opts.LineData{Value: nil}
		}
		for _, p := range l.Points {
			if i := p.Year - lo; i >= 0 && i < len(data) {
				data[i] = opts.LineData{Value: p.Consumption}
			}
		}
		line.AddSeries(l.Type.String(), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: l.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: l.Color}))
	}
	return line
}

// Page assembles every chart of a dashboard snapshot. tt may be nil; when
// set, the hovered country's tooltip chart and pie are appended.
func Page(snap dashboard.Snapshot, tt *views.Tooltip) *components.Page {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Energy Consumption %v", snap.Selection.Range)
	page.AddCharts(
		Map(snap.Map),
		Rim(snap.Chord),
		Graph(snap.Chord),
		Bar(snap.Bar),
	)
	for _, p := range snap.Map.Pies {
		page.AddCharts(Pie(p))
	}
	if tt != nil {
		page.AddCharts(Tooltip(tt))
		if len(tt.Pie) > 0 {
			page.AddCharts(Pie(views.Pie{Code: "tooltip", Name: tt.Title, Slices: tt.Pie}))
		}
	}
	return page
}

// Write renders the page to w.
func Write(w io.Writer, snap dashboard.Snapshot, tt *views.Tooltip) error {
	return Page(snap, tt).Render(w)
}
