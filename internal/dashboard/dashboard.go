// Package dashboard is the application object: it owns the master store,
// the filtered dataset, the selection and the three views, and implements
// the click, filter and play protocols.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"energydash/internal/dispatch"
	"energydash/internal/engine"
	"energydash/internal/forcegraph"
	"energydash/internal/geo"
	"energydash/internal/logger"
	"energydash/internal/models"
	"energydash/internal/state"
	"energydash/internal/timeline"
	"energydash/internal/views"
)

var (
	// ErrAnimationPlaying is returned for interactions during the play sweep.
	ErrAnimationPlaying = errors.New("animation playing")
	// ErrUnknownCountry is returned when a country name has no records.
	ErrUnknownCountry = errors.New("unknown country")
	// ErrUnknownType is returned for a type index outside 0..8.
	ErrUnknownType = errors.New("unknown energy type")
)

// Options tune the views and the sweep.
type Options struct {
	BarItems           int
	BarDescending      bool
	SignificantPercent float64
	FrameDelay         time.Duration
	// Scheduler overrides the frame timer (tests use timeline.Immediate).
	Scheduler timeline.Scheduler
}

// DefaultOptions match the configuration defaults.
func DefaultOptions() Options {
	return Options{
		BarItems:           views.DefaultItemCount,
		BarDescending:      true,
		SignificantPercent: forcegraph.DefaultSignificantPercent,
		FrameDelay:         500 * time.Millisecond,
	}
}

// Dashboard serializes every operation behind one lock; the play sweep takes
// it once per step so frames are observable one by one.
type Dashboard struct {
	mu sync.Mutex

	store    *engine.ColumnStore
	filtered *engine.Dataset
	sel      *state.Selection
	disp     *dispatch.Dispatcher
	slider   *timeline.Slider
	sched    timeline.Scheduler
	playing  bool

	mapView   *views.MapView
	chordView *views.ChordView
	barView   *views.BarView
	views     []views.ChartView

	names []string
}

// New wires the views to the store. bounds are joined to the store by name.
func New(store *engine.ColumnStore, bounds *geo.Boundaries, tmpl *forcegraph.Template, opts Options) *Dashboard {
	mapped := bounds.Join(store)
	logger.Info("Joined %d of %d boundary features to records", mapped, len(bounds.Features))

	sched := opts.Scheduler
	if sched == nil {
		sched = timeline.TimerScheduler{Delay: opts.FrameDelay}
	}

	d := &Dashboard{
		store:     store,
		sel:       state.New(),
		disp:      dispatch.New(),
		slider:    timeline.NewSlider(),
		sched:     sched,
		mapView:   views.NewMapView(bounds),
		chordView: views.NewChordView(forcegraph.NewBuilder(tmpl, opts.SignificantPercent)),
		barView:   views.NewBarView(opts.BarDescending, opts.BarItems),
	}
	d.views = []views.ChartView{d.chordView, d.mapView, d.barView}

	d.disp.Subscribe(dispatch.CountrySelected, dispatch.HandlerFunc(d.onCountrySelected))
	d.disp.Subscribe(dispatch.TypeSelected, dispatch.HandlerFunc(d.onTypeSelected))

	d.filtered = store.All()
	d.names = d.filtered.CountryNames()
	for _, v := range d.views {
		v.Filter(d.filtered)
	}
	return d
}

// --- Event handlers (toggle algorithm) ---

func (d *Dashboard) onCountrySelected(ev dispatch.Event) {
	k := ev.Country
	if d.sel.IsCountry(k) {
		d.sel.ClearCountry()
		for _, v := range d.views {
			v.UnhighlightCountry(k)
		}
		logger.Debug("Country %s deselected", k)
		return
	}
	old, hadOld := d.sel.SelectCountry(k)
	for _, v := range d.views {
		v.HighlightCountry(k, old, hadOld)
	}
	logger.Debug("Country %s selected", k)
}

func (d *Dashboard) onTypeSelected(ev dispatch.Event) {
	t := ev.Type
	if d.sel.IsType(t) {
		d.sel.ClearType()
		for _, v := range d.views {
			v.UnhighlightType(t)
		}
		logger.Debug("Type %v deselected", t)
		return
	}
	d.sel.SelectType(t)
	for _, v := range d.views {
		v.HighlightType(t)
	}
	logger.Debug("Type %v selected", t)
}

// --- Click handlers ---

// ClickCountry is a click on a country in any view. A country without
// consumption in the filtered range is a no-op; an active type selection is
// cleared first.
func (d *Dashboard) ClickCountry(code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clickCountry(code)
}

func (d *Dashboard) clickCountry(code string) error {
	if d.playing {
		return ErrAnimationPlaying
	}
	if !d.filtered.HasConsumption(code) {
		logger.Debug("Ignoring click on %s: no consumption in %v", code, d.filtered.Range)
		return nil
	}
	d.removeTypeFilter()
	d.disp.Publish(dispatch.CountryEvent(code))
	return nil
}

// ClickCountryName selects by display name (the autocomplete input).
func (d *Dashboard) ClickCountryName(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	code, ok := d.store.CodeForName(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCountry, name)
	}
	return d.clickCountry(code)
}

// ClickMapShape is a click on a boundary feature. Unmapped features do
// nothing.
func (d *Dashboard) ClickMapShape(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	code, ok := d.mapView.Clickable(name)
	if !ok {
		return nil
	}
	return d.clickCountry(code)
}

// ClickChordNode is a click on a force-graph node. Nodes with pointer
// events disabled do nothing.
func (d *Dashboard) ClickChordNode(code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	if !d.chordView.NodeClickable(code) {
		return nil
	}
	return d.clickCountry(code)
}

// ClickType is a click on a chord rim section. Any country selection is
// cleared first.
func (d *Dashboard) ClickType(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	t := models.EnergyType(index)
	if !t.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownType, index)
	}
	d.removeCountryFilter()
	d.disp.Publish(dispatch.TypeEvent(t))
	return nil
}

// --- Filters ---

// RemoveAllFilters clears both selections and restores every view.
func (d *Dashboard) RemoveAllFilters() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	d.removeAllFilters()
	return nil
}

func (d *Dashboard) removeAllFilters() {
	d.removeCountryFilter()
	d.removeTypeFilter()
}

func (d *Dashboard) removeCountryFilter() {
	code, ok := d.sel.ClearCountry()
	if !ok {
		return
	}
	for _, v := range d.views {
		v.UnhighlightCountry(code)
	}
}

func (d *Dashboard) removeTypeFilter() {
	t, ok := d.sel.ClearType()
	if !ok {
		return
	}
	for _, v := range d.views {
		v.UnhighlightType(t)
	}
}

// SliderUpdate moves the slider handles. The range takes effect on
// ApplyRange.
func (d *Dashboard) SliderUpdate(lo, hi int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	return d.slider.Update(lo, hi)
}

// ApplyRange filters every view to the slider range and clears selections.
func (d *Dashboard) ApplyRange() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	return d.refresh(d.slider.Values())
}

// SetRange is SliderUpdate followed by ApplyRange.
func (d *Dashboard) SetRange(r models.YearRange) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	if err := d.slider.Update(r.Min, r.Max); err != nil {
		return err
	}
	return d.refresh(r)
}

func (d *Dashboard) refresh(r models.YearRange) error {
	if err := d.sel.SetRange(r); err != nil {
		return err
	}
	start := time.Now()
	d.filtered = d.store.Filter(r)
	d.removeAllFilters()
	for _, v := range d.views {
		v.Filter(d.filtered)
	}
	logger.Debug("Refreshed %d rows for %v in %v", d.filtered.Len(), r, time.Since(start))
	return nil
}

// --- Play ---

// Play runs the year sweep to completion.
func (d *Dashboard) Play(ctx context.Context) error {
	done, err := d.Start(ctx)
	if err != nil {
		return err
	}
	return <-done
}

// Start marks the dashboard playing and runs the sweep in a new goroutine.
// The channel receives the sweep result.
func (d *Dashboard) Start(ctx context.Context) (<-chan error, error) {
	d.mu.Lock()
	if d.playing {
		d.mu.Unlock()
		return nil, ErrAnimationPlaying
	}
	d.playing = true
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		logger.Info("Play started")
		err := timeline.NewPlayer(d.sched).Run(ctx, playHooks{d})
		logger.Info("Play finished")
		done <- err
	}()
	return done, nil
}

// Playing reports whether the sweep is running.
func (d *Dashboard) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

type playHooks struct{ d *Dashboard }

func (h playHooks) Begin() {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeAllFilters()
	d.slider.Lock()
	for _, v := range d.views {
		v.SetInteractive(false)
	}
}

// Frame filters and redraws the map only.
func (h playHooks) Frame(year int) {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()
	r := models.SingleYear(year)
	if err := d.slider.Set(r); err != nil {
		logger.Error("Play frame %d: %v", year, err)
		return
	}
	if err := d.sel.SetRange(r); err != nil {
		logger.Error("Play frame %d: %v", year, err)
		return
	}
	d.filtered = d.store.Filter(r)
	d.mapView.Filter(d.filtered)
}

func (h playHooks) Done() {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slider.Unlock()
	full := models.FullRange()
	if err := d.slider.Set(full); err != nil {
		logger.Error("Play reset: %v", err)
	}
	if err := d.refresh(full); err != nil {
		logger.Error("Play reset: %v", err)
	}
	d.playing = false
	for _, v := range d.views {
		v.SetInteractive(true)
	}
}

// --- Bar controls ---

// SetBarItems applies the item count radio.
func (d *Dashboard) SetBarItems(value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	return d.barView.SetItemCount(value)
}

// ToggleBarSort flips the bar sort direction.
func (d *Dashboard) ToggleBarSort() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return ErrAnimationPlaying
	}
	return d.barView.ToggleSort()
}

// --- Queries ---

// CountryNames lists every country name in the master store, sorted.
func (d *Dashboard) CountryNames() []string {
	return append([]string(nil), d.names...)
}

// SearchCountries returns the names matching prefix for the autocomplete.
func (d *Dashboard) SearchCountries(prefix string) []string {
	return engine.SearchNames(d.names, prefix)
}

// MapTooltip returns the hover chart for a country.
func (d *Dashboard) MapTooltip(code string) (*views.Tooltip, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mapView.Tooltip(code)
}

// NodeTooltip returns the hover text for a force-graph node.
func (d *Dashboard) NodeTooltip(code string) (*views.NodeTooltip, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chordView.NodeTooltip(code)
}

// RimTooltip returns the hover text for a rim section.
func (d *Dashboard) RimTooltip(index int) (views.RimTooltip, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := models.EnergyType(index)
	if !t.Valid() {
		return views.RimTooltip{}, fmt.Errorf("%w: %d", ErrUnknownType, index)
	}
	return d.chordView.RimTooltip(t), nil
}

// SliderSnapshot is the JSON view of the slider.
type SliderSnapshot struct {
	Values   models.YearRange `json:"values"`
	Margin   int              `json:"margin"`
	Disabled bool             `json:"disabled"`
}

// Snapshot is the whole visible state of the dashboard.
type Snapshot struct {
	Playing   bool                `json:"playing"`
	Selection state.Snapshot      `json:"selection"`
	Slider    SliderSnapshot      `json:"slider"`
	Rows      int                 `json:"rows"`
	Map       views.MapSnapshot   `json:"map"`
	Chord     views.ChordSnapshot `json:"chord"`
	Bar       views.BarSnapshot   `json:"bar"`
}

// ExportRecords writes the rows inside the current range as
// newline-delimited JSON.
func (d *Dashboard) ExportRecords(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filtered.WriteJSON(w)
}

// Snapshot copies the current state of every component.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Playing:   d.playing,
		Selection: d.sel.Snapshot(),
		Slider: SliderSnapshot{
			Values:   d.slider.Values(),
			Margin:   d.slider.Margin(),
			Disabled: d.slider.Disabled(),
		},
		Rows:  d.filtered.Len(),
		Map:   d.mapView.Snapshot(),
		Chord: d.chordView.Snapshot(),
		Bar:   d.barView.Snapshot(),
	}
}

// Aggregates are the current rollups behind the map and chord views.
type Aggregates struct {
	Map   *models.MapAggregate
	Chord *models.ChordAggregate
}

// Aggregates returns the rollups the views last drew from.
func (d *Dashboard) Aggregates() Aggregates {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Aggregates{Map: d.mapView.Aggregate(), Chord: d.chordView.Aggregate()}
}
