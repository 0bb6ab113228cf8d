package dashboard

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"energydash/internal/engine"
	"energydash/internal/forcegraph"
	"energydash/internal/geo"
	"energydash/internal/models"
	"energydash/internal/timeline"
	"energydash/internal/views"
)

func rec(country, code string, typ models.EnergyType, year int, cons float64) models.Record {
	return models.Record{
		Country: country, CountryCode: code, Type: typ, Year: year,
		Consumption: cons, Emissions: 1, Population: 1e6, Lat: 10, Lon: 20,
	}
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

func newTestDashboard(t *testing.T, sched timeline.Scheduler) *Dashboard {
	t.Helper()
	store := engine.NewColumnStore([]models.Record{
		rec("Canada", "CAN", models.Oil, 1965, 6),
		rec("Canada", "CAN", models.Gas, 1965, 3),
		rec("Canada", "CAN", models.Solar, 1965, 1),
		rec("Canada", "CAN", models.Oil, 1966, 8),
		rec("France", "FRA", models.Nuclear, 1965, 3),
		rec("France", "FRA", models.Oil, 1965, 1),
		rec("France", "FRA", models.Oil, 2019, 4),
		rec("Chad", "TCD", models.Oil, 1965, 0),
	})
	bounds, err := geo.Parse([]byte(testBoundaries))
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &forcegraph.Template{Nodes: []forcegraph.TemplateNode{{ID: "CAN"}, {ID: "FRA"}, {ID: "TCD"}}}
	opts := DefaultOptions()
	opts.Scheduler = sched
	if sched == nil {
		opts.Scheduler = timeline.Immediate{}
	}
	return New(store, bounds, tmpl, opts)
}

func TestCountryToggleIsIdempotent(t *testing.T) {
	d := newTestDashboard(t, nil)
	baseline := d.Snapshot()

	if err := d.ClickCountry("CAN"); err != nil {
		t.Fatal(err)
	}
	snap := d.Snapshot()
	if snap.Selection.Country != "CAN" {
		t.Fatalf("Expected CAN selected, got %+v", snap.Selection)
	}
	if snap.Map.Selected != "CAN" || snap.Bar.Bars[0].Code != "CAN" || snap.Bar.Bars[0].State != views.BarSelected {
		t.Error("Selection not reflected in every view")
	}

	if err := d.ClickCountry("CAN"); err != nil {
		t.Fatal(err)
	}
	if got := d.Snapshot(); !reflect.DeepEqual(got, baseline) {
		t.Errorf("Second click must restore the baseline:\n got %+v\nwant %+v", got, baseline)
	}
}

func TestTypeToggleIsIdempotent(t *testing.T) {
	d := newTestDashboard(t, nil)
	baseline := d.Snapshot()

	if err := d.ClickType(int(models.Nuclear)); err != nil {
		t.Fatal(err)
	}
	if snap := d.Snapshot(); snap.Selection.Type == nil || *snap.Selection.Type != models.Nuclear {
		t.Fatalf("Expected Nuclear selected, got %+v", snap.Selection)
	}
	if err := d.ClickType(int(models.Nuclear)); err != nil {
		t.Fatal(err)
	}
	if got := d.Snapshot(); !reflect.DeepEqual(got, baseline) {
		t.Error("Second type click must restore the baseline")
	}
}

func TestMutualExclusion(t *testing.T) {
	d := newTestDashboard(t, nil)

	if err := d.ClickType(int(models.Oil)); err != nil {
		t.Fatal(err)
	}
	if err := d.ClickCountry("FRA"); err != nil {
		t.Fatal(err)
	}
	snap := d.Snapshot()
	if snap.Selection.Type != nil || snap.Selection.Country != "FRA" {
		t.Errorf("Country click must clear the type: %+v", snap.Selection)
	}

	// a rim click clears the country in every view
	if err := d.ClickType(int(models.Gas)); err != nil {
		t.Fatal(err)
	}
	snap = d.Snapshot()
	if snap.Selection.Country != "" || snap.Selection.Type == nil || *snap.Selection.Type != models.Gas {
		t.Errorf("Type click must clear the country: %+v", snap.Selection)
	}
	if snap.Map.Selected != "" || snap.Bar.Bars[0].State != views.BarPlain {
		t.Error("Country highlight must be removed from the map and bar views")
	}
	if !snap.Chord.RimClickable {
		t.Error("Rims are clickable again once the country is cleared")
	}

	if err := d.RemoveAllFilters(); err != nil {
		t.Fatal(err)
	}
	if snap = d.Snapshot(); snap.Selection.Type != nil || snap.Selection.Country != "" {
		t.Errorf("Expected no selection: %+v", snap.Selection)
	}
}

func TestSwitchCountry(t *testing.T) {
	d := newTestDashboard(t, nil)
	d.ClickCountry("CAN")
	d.ClickCountry("FRA")
	snap := d.Snapshot()
	if snap.Selection.Country != "FRA" || snap.Map.Selected != "FRA" {
		t.Errorf("Expected FRA to replace CAN: %+v", snap.Selection)
	}
	for _, s := range snap.Map.Shapes {
		if s.Code == "CAN" && s.State != views.ShapeDimmed {
			t.Errorf("Old selection must be dimmed, got %v", s.State)
		}
	}
}

func TestZeroConsumptionClickIsNoop(t *testing.T) {
	d := newTestDashboard(t, nil)
	baseline := d.Snapshot()

	for _, click := range []func() error{
		func() error { return d.ClickCountry("TCD") },
		func() error { return d.ClickMapShape("Chad") },
		func() error { return d.ClickMapShape("Greenland") },
		func() error { return d.ClickChordNode("TCD") },
		func() error { return d.ClickCountry("XYZ") },
	} {
		if err := click(); err != nil {
			t.Fatal(err)
		}
	}
	if got := d.Snapshot(); !reflect.DeepEqual(got, baseline) {
		t.Error("Clicks on countries without data must not change state")
	}

	if err := d.ClickMapShape("Canada"); err != nil {
		t.Fatal(err)
	}
	if d.Snapshot().Selection.Country != "CAN" {
		t.Error("Map shape click must select its country")
	}
}

func TestClickCountryName(t *testing.T) {
	d := newTestDashboard(t, nil)
	if err := d.ClickCountryName("France"); err != nil {
		t.Fatal(err)
	}
	if d.Snapshot().Selection.Country != "FRA" {
		t.Error("Expected FRA selected by name")
	}
	if err := d.ClickCountryName("Atlantis"); !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("Expected ErrUnknownCountry, got %v", err)
	}
	if err := d.ClickType(42); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType, got %v", err)
	}
}

func TestApplyRangeClearsSelection(t *testing.T) {
	d := newTestDashboard(t, nil)
	d.ClickCountry("CAN")

	if err := d.SliderUpdate(2000, 2019); err != nil {
		t.Fatal(err)
	}
	if d.Snapshot().Selection.Country != "CAN" {
		t.Error("Moving the slider alone must not refilter")
	}
	if err := d.ApplyRange(); err != nil {
		t.Fatal(err)
	}
	snap := d.Snapshot()
	if snap.Selection.Country != "" || snap.Selection.Range != (models.YearRange{Min: 2000, Max: 2019}) {
		t.Errorf("Unexpected selection after refresh: %+v", snap.Selection)
	}
	if snap.Rows != 1 || len(snap.Bar.Bars) != 1 || snap.Bar.Bars[0].Code != "FRA" {
		t.Errorf("Expected only France in range, got %d rows, bars %+v", snap.Rows, snap.Bar.Bars)
	}
	// Canada has no rows in range
	if err := d.ClickCountry("CAN"); err != nil || d.Snapshot().Selection.Country != "" {
		t.Error("Click on a country outside the range must be a no-op")
	}

	if err := d.SliderUpdate(1990, 1990); !errors.Is(err, models.ErrInvalidRange) {
		t.Errorf("Expected margin error, got %v", err)
	}
}

func TestBarControls(t *testing.T) {
	d := newTestDashboard(t, nil)
	if err := d.ToggleBarSort(); err != nil {
		t.Fatal(err)
	}
	if d.Snapshot().Bar.Descending {
		t.Error("Expected ascending after toggle")
	}
	d.ClickCountry("CAN")
	if err := d.SetBarItems("all"); !errors.Is(err, views.ErrControlsDisabled) {
		t.Errorf("Item count is disabled while pinned, got %v", err)
	}
}

// captureScheduler records the dashboard state at every suspension point.
type captureScheduler struct {
	d     *Dashboard
	snaps []Snapshot
}

func (c *captureScheduler) Yield(ctx context.Context) error {
	c.snaps = append(c.snaps, c.d.Snapshot())
	return ctx.Err()
}

func TestPlay(t *testing.T) {
	cs := &captureScheduler{}
	d := newTestDashboard(t, cs)
	cs.d = d
	d.ClickCountry("CAN")

	if err := d.Play(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(cs.snaps) != models.MaxYear-models.MinYear+1 {
		t.Fatalf("Expected one suspension per year, got %d", len(cs.snaps))
	}

	first := cs.snaps[0]
	if !first.Playing || !first.Slider.Disabled || first.Selection.Country != "" {
		t.Errorf("Sweep must start with filters cleared and controls locked: %+v", first)
	}
	if first.Map.Interactive || first.Chord.Interactive || !first.Bar.ControlsDisabled {
		t.Error("Views must be non-interactive during the sweep")
	}

	// state after the 1965 frame
	frame := cs.snaps[1]
	if frame.Slider.Values != models.SingleYear(1965) || frame.Selection.Range != models.SingleYear(1965) {
		t.Errorf("Expected [1965,1965], got slider %v range %v", frame.Slider.Values, frame.Selection.Range)
	}
	if frame.Rows != 6 {
		t.Errorf("Expected 6 rows for 1965, got %d", frame.Rows)
	}
	for _, s := range frame.Map.Shapes {
		if s.Code == "FRA" && s.Fill != models.Nuclear.Color() {
			t.Errorf("France in 1965 is Nuclear, got fill %s", s.Fill)
		}
	}

	if err := d.ClickCountry("FRA"); err != nil {
		t.Fatal(err)
	}
	end := d.Snapshot()
	if end.Playing || end.Slider.Disabled || end.Slider.Margin != timeline.DefaultMargin {
		t.Errorf("Controls not restored: %+v", end.Slider)
	}
	if end.Slider.Values != models.FullRange() || end.Selection.Range != models.FullRange() {
		t.Errorf("Range not reset: %v", end.Selection.Range)
	}
	if end.Selection.Country != "FRA" {
		t.Error("Clicks must work again after the sweep")
	}
	if end.Rows != 8 {
		t.Errorf("Expected full dataset, got %d rows", end.Rows)
	}
}

// blockingScheduler parks the sweep until released.
type blockingScheduler struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingScheduler) Yield(ctx context.Context) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return nil
}

func TestInteractionsRejectedWhilePlaying(t *testing.T) {
	bs := &blockingScheduler{entered: make(chan struct{}, 1), release: make(chan struct{})}
	d := newTestDashboard(t, bs)

	done := make(chan error)
	go func() { done <- d.Play(context.Background()) }()
	<-bs.entered

	checks := map[string]error{
		"click":  d.ClickCountry("CAN"),
		"type":   d.ClickType(0),
		"slider": d.SliderUpdate(1970, 1980),
		"apply":  d.ApplyRange(),
		"sort":   d.ToggleBarSort(),
		"clear":  d.RemoveAllFilters(),
		"play":   d.Play(context.Background()),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrAnimationPlaying) {
			t.Errorf("%s: expected ErrAnimationPlaying, got %v", name, err)
		}
	}
	if !d.Playing() {
		t.Error("Expected Playing during the sweep")
	}

	close(bs.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if d.Playing() {
		t.Error("Expected sweep finished")
	}
}

func TestSearchCountries(t *testing.T) {
	d := newTestDashboard(t, nil)
	if got := d.CountryNames(); !reflect.DeepEqual(got, []string{"Canada", "Chad", "France"}) {
		t.Errorf("CountryNames() = %v", got)
	}
	if got := d.SearchCountries("c"); !reflect.DeepEqual(got, []string{"Canada", "Chad"}) {
		t.Errorf("SearchCountries(c) = %v", got)
	}
}
