package views

import (
	"testing"

	"energydash/internal/engine"
	"energydash/internal/forcegraph"
	"energydash/internal/geo"
	"energydash/internal/models"
)

func rec(country, code string, typ models.EnergyType, year int, cons, em float64) models.Record {
	return models.Record{
		Country: country, CountryCode: code, Type: typ, Year: year,
		Consumption: cons, Emissions: em, Population: 1e6, Lat: 10, Lon: 20,
	}
}

// testStore: Canada is Oil heavy, France Nuclear heavy, Chad has nothing.
func testStore() *engine.ColumnStore {
	return engine.NewColumnStore([]models.Record{
		rec("Canada", "CAN", models.Oil, 1965, 6, 5),
		rec("Canada", "CAN", models.Gas, 1965, 3, 5),
		rec("Canada", "CAN", models.Solar, 1965, 1, 5),
		rec("Canada", "CAN", models.Oil, 1966, 8, 5),
		rec("France", "FRA", models.Nuclear, 1965, 3, 9),
		rec("France", "FRA", models.Oil, 1965, 1, 9),
		rec("Chad", "TCD", models.Oil, 1965, 0, 2),
	})
}

const testBoundaries = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"name": "Canada"},
   "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}},
  {"type": "Feature", "properties": {"name": "France"},
   "geometry": {"type": "Polygon", "coordinates": [[[2, 2], [3, 2], [3, 3], [2, 2]]]}},
  {"type": "Feature", "properties": {"name": "Chad"},
   "geometry": {"type": "Polygon", "coordinates": [[[4, 4], [5, 4], [5, 5], [4, 4]]]}},
  {"type": "Feature", "properties": {"name": "Greenland"},
   "geometry": {"type": "Polygon", "coordinates": [[[6, 6], [7, 6], [7, 7], [6, 6]]]}}
]}`

func testMap(t *testing.T, cs *engine.ColumnStore) *MapView {
	t.Helper()
	b, err := geo.Parse([]byte(testBoundaries))
	if err != nil {
		t.Fatal(err)
	}
	b.Join(cs)
	return NewMapView(b)
}

func testChord() *ChordView {
	tmpl := &forcegraph.Template{Nodes: []forcegraph.TemplateNode{{ID: "CAN"}, {ID: "FRA"}, {ID: "TCD"}}}
	return NewChordView(forcegraph.NewBuilder(tmpl, forcegraph.DefaultSignificantPercent))
}

// Compile-time interface checks
var (
	_ ChartView = (*MapView)(nil)
	_ ChartView = (*ChordView)(nil)
	_ ChartView = (*BarView)(nil)
)
