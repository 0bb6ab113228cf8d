package engine

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"energydash/internal/models"
)

func testStore() *ColumnStore {
	// Scenario:
	// Canada: Oil and Gas in 1965 and 1966
	// Chad:   zero consumption in every row
	// France: Oil only, 1966
	return NewColumnStore([]models.Record{
		{Country: "Canada", CountryCode: "CAN", Type: models.Oil, Year: 1965, Consumption: 3, Emissions: 2, Population: 4e6, Lat: 56, Lon: -106},
		{Country: "Canada", CountryCode: "CAN", Type: models.Gas, Year: 1965, Consumption: 1, Emissions: 2, Population: 4e6, Lat: 56, Lon: -106},
		{Country: "Canada", CountryCode: "CAN", Type: models.Oil, Year: 1966, Consumption: 5, Emissions: 6, Population: 4e6, Lat: 56, Lon: -106},
		{Country: "Canada", CountryCode: "CAN", Type: models.Gas, Year: 1966, Consumption: 1, Emissions: 6, Population: 4e6, Lat: 56, Lon: -106},
		{Country: "Chad", CountryCode: "TCD", Type: models.Oil, Year: 1965, Consumption: 0, Emissions: 0, Population: 1e6, Lat: 15, Lon: 19},
		{Country: "France", CountryCode: "FRA", Type: models.Oil, Year: 1966, Consumption: 2, Emissions: 1, Population: 5e6, Lat: 46, Lon: 2},
	})
}

func TestFilterSingleYear(t *testing.T) {
	ds := testStore().Filter(models.SingleYear(1965))
	if ds.Len() != 3 {
		t.Fatalf("Expected 3 rows in 1965, got %d", ds.Len())
	}
	for _, r := range ds.Records() {
		if r.Year != 1965 {
			t.Errorf("Record outside range: %+v", r)
		}
	}

	// Aggregates must not see 1966 rows
	chord := ds.Chord()
	if _, ok := chord.Total["FRA"]; ok {
		t.Error("France only has 1966 rows and must be absent")
	}
	if chord.Total["CAN"] != 4 {
		t.Errorf("Expected CAN total 4 in 1965, got %f", chord.Total["CAN"])
	}
	m := ds.Map()
	if m.Years != [2]int{1965, 1965} {
		t.Errorf("Expected year extent [1965 1965], got %v", m.Years)
	}
}

func TestBarPerCapita(t *testing.T) {
	items := testStore().All().Bar(models.Oil)
	got := make(map[string]float64)
	for _, it := range items {
		got[it.Code] = it.Value
	}

	// CAN: (2+6)*1e6 / (4e6+4e6) = 1
	if math.Abs(got["CAN"]-1) > 1e-9 {
		t.Errorf("Expected CAN per capita 1, got %f", got["CAN"])
	}
	// FRA: 1e6 / 5e6 = 0.2
	if math.Abs(got["FRA"]-0.2) > 1e-9 {
		t.Errorf("Expected FRA per capita 0.2, got %f", got["FRA"])
	}
	if len(items) != 3 {
		t.Errorf("Expected 3 bar items, got %d", len(items))
	}
}

func TestChordPercentagesSumTo100(t *testing.T) {
	chord := testStore().All().Chord()

	for code, pct := range chord.Percent {
		var sum float64
		for _, p := range pct {
			sum += p
		}
		if math.Abs(sum-100) > 1e-6 {
			t.Errorf("%s percentages sum to %f", code, sum)
		}
	}

	// Zero total countries are skipped, not NaN
	if _, ok := chord.Percent["TCD"]; ok {
		t.Error("Chad has zero consumption and must not have percentages")
	}
	if chord.Total["TCD"] != 0 {
		t.Errorf("Expected TCD total 0, got %f", chord.Total["TCD"])
	}
	for _, v := range chord.Normalized {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("Non-finite normalized value %v", v)
		}
	}

	// CAN: Oil 8 / 10 = 80%
	if math.Abs(chord.Percent["CAN"][models.Oil]-80) > 1e-9 {
		t.Errorf("Expected CAN Oil 80%%, got %f", chord.Percent["CAN"][models.Oil])
	}
	if chord.ByType[models.Oil] != 10 {
		t.Errorf("Expected global Oil 10, got %f", chord.ByType[models.Oil])
	}
}

func TestMapAggregate(t *testing.T) {
	m := testStore().All().Map()

	if m.MeanByType["CAN"][models.Oil] != 4 {
		t.Errorf("Expected CAN mean Oil 4, got %f", m.MeanByType["CAN"][models.Oil])
	}
	if typ, ok := m.Dominant("CAN"); !ok || typ != models.Oil {
		t.Errorf("Expected CAN dominant Oil, got %v %v", typ, ok)
	}
	if _, ok := m.Dominant("TCD"); ok {
		t.Error("Chad has no consumption and must have no dominant type")
	}
	if ext := m.ConsumptionExtent["CAN"]; ext.Min != 1 || ext.Max != 5 {
		t.Errorf("Expected CAN extent [1 5], got %+v", ext)
	}
	pts := m.Series["CAN"][models.Oil]
	if len(pts) != 2 || pts[0].Year != 1965 || pts[1].Year != 1966 {
		t.Errorf("Unexpected CAN Oil series %+v", pts)
	}
	if loc := m.Location["FRA"]; loc.Lat != 46 || loc.Lon != 2 {
		t.Errorf("Unexpected FRA location %+v", loc)
	}
}

func TestHasConsumption(t *testing.T) {
	ds := testStore().All()
	if !ds.HasConsumption("CAN") {
		t.Error("Expected CAN to have consumption")
	}
	if ds.HasConsumption("TCD") {
		t.Error("Expected TCD to have no consumption")
	}
	if ds.HasConsumption("XXX") {
		t.Error("Unknown code must not have consumption")
	}
	if testStore().Filter(models.SingleYear(1965)).HasConsumption("FRA") {
		t.Error("FRA has no rows in 1965")
	}
}

func TestCountryNames(t *testing.T) {
	names := testStore().All().CountryNames()
	want := []string{"Canada", "Chad", "France"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, names)
		}
	}
	if got := SearchNames(names, "ch"); len(got) != 1 || got[0] != "Chad" {
		t.Errorf("Expected [Chad], got %v", got)
	}
}

func TestRollupParallelMatchesSequential(t *testing.T) {
	var recs []models.Record
	for y := models.MinYear; y <= models.MaxYear; y++ {
		for c := 0; c < 20; c++ {
			for _, typ := range models.AllEnergyTypes() {
				recs = append(recs, models.Record{
					Country:     string(rune('A' + c)),
					CountryCode: string(rune('A'+c)) + "X",
					Type:        typ,
					Year:        y,
					Consumption: float64(c + int(typ)),
					Population:  1,
				})
			}
		}
	}
	ds := NewColumnStore(recs).All()
	chord := ds.Chord()

	// AX: sum over types of (0+t) for 55 years = 36*55
	if chord.Total["AX"] != 36*55 {
		t.Errorf("Expected AX total %d, got %f", 36*55, chord.Total["AX"])
	}
	m := ds.Map()
	if m.Years != [2]int{models.MinYear, models.MaxYear} {
		t.Errorf("Unexpected year extent %v", m.Years)
	}
}

func TestArrowRecord(t *testing.T) {
	ds := testStore().Filter(models.SingleYear(1965))
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := ds.ArrowRecord(mem)
	defer rec.Release()

	if int(rec.NumRows()) != ds.Len() {
		t.Fatalf("Expected %d rows, got %d", ds.Len(), rec.NumRows())
	}
	if rec.NumCols() != int64(len(RecordSchema.Fields())) {
		t.Fatalf("Expected %d columns, got %d", len(RecordSchema.Fields()), rec.NumCols())
	}
	codes := rec.Column(1).(*array.String)
	years := rec.Column(3).(*array.Int32)
	cons := rec.Column(4).(*array.Float64)
	for i := 0; i < int(rec.NumRows()); i++ {
		want := ds.Record(i)
		if codes.Value(i) != want.CountryCode || int(years.Value(i)) != want.Year || cons.Value(i) != want.Consumption {
			t.Errorf("Row %d: got %s/%d/%v, want %+v", i, codes.Value(i), years.Value(i), cons.Value(i), want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	ds := testStore().Filter(models.SingleYear(1966))
	var buf bytes.Buffer
	if err := ds.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != ds.Len() {
		t.Fatalf("Expected %d lines, got %d: %q", ds.Len(), len(lines), buf.String())
	}
	for _, l := range lines {
		if !strings.Contains(l, `"Year":1966`) {
			t.Errorf("Row outside the filter: %s", l)
		}
	}
}
