package views

import (
	"fmt"
	"sort"
	"strconv"

	"energydash/internal/engine"
	"energydash/internal/models"
)

// ProxyType stands in for all consumption in the bar chart; emissions are
// not broken down by type in the dataset.
const ProxyType = models.Oil

// DefaultItemCount is the number of bars shown until the user picks another.
const DefaultItemCount = 10

// BarState marks a bar relative to the selection.
type BarState int

const (
	BarPlain BarState = iota
	BarSelected
	BarNotSelected
)

func (s BarState) MarshalText() ([]byte, error) {
	switch s {
	case BarSelected:
		return []byte("selected"), nil
	case BarNotSelected:
		return []byte("not-selected"), nil
	}
	return []byte("plain"), nil
}

// Bar is one displayed bar.
type Bar struct {
	Code    string   `json:"code"`
	Country string   `json:"country"`
	Value   float64  `json:"value"`
	State   BarState `json:"state"`
}

// BarSnapshot is the full visual state of the bar view.
type BarSnapshot struct {
	Bars             []Bar   `json:"bars"`
	Descending       bool    `json:"descending"`
	ItemCount        int     `json:"itemCount"`
	All              bool    `json:"all"`
	ShowLabels       bool    `json:"showLabels"`
	ControlsDisabled bool    `json:"controlsDisabled"`
	YMax             float64 `json:"yMax"`
}

// BarView is the sortable per-capita CO2 bar chart.
type BarView struct {
	items      []models.BarItem
	display    []Bar
	descending bool
	// count 0 means all items
	count int

	pinned      string
	hasPin      bool
	interactive bool
}

// NewBarView returns a bar view sorted descending or ascending by default.
func NewBarView(descending bool, count int) *BarView {
	if count < 0 {
		count = DefaultItemCount
	}
	return &BarView{descending: descending, count: count, interactive: true}
}

func (b *BarView) Name() string { return "bar" }

// Filter re-aggregates, re-sorts and re-slices. A pinned country stays
// pinned if it is still present.
func (b *BarView) Filter(ds *engine.Dataset) {
	b.items = ds.Bar(ProxyType)
	if b.hasPin && b.index(b.pinned) < 0 {
		b.pinned, b.hasPin = "", false
	}
	b.sortItems()
	b.layout()
}

func (b *BarView) sortItems() {
	desc := b.descending
	sort.SliceStable(b.items, func(i, j int) bool {
		if desc {
			return b.items[i].Value > b.items[j].Value
		}
		return b.items[i].Value < b.items[j].Value
	})
}

func (b *BarView) index(code string) int {
	for i, it := range b.items {
		if it.Code == code {
			return i
		}
	}
	return -1
}

// layout slices the sorted items, moving the pinned bar to the front first.
func (b *BarView) layout() {
	ordered := b.items
	if b.hasPin {
		if i := b.index(b.pinned); i >= 0 {
			ordered = make([]models.BarItem, 0, len(b.items))
			ordered = append(ordered, b.items[i])
			ordered = append(ordered, b.items[:i]...)
			ordered = append(ordered, b.items[i+1:]...)
		}
	}
	n := len(ordered)
	if b.count > 0 && b.count < n {
		n = b.count
	}
	b.display = make([]Bar, n)
	for i, it := range ordered[:n] {
		st := BarPlain
		if b.hasPin {
			st = BarNotSelected
			if it.Code == b.pinned {
				st = BarSelected
			}
		}
		b.display[i] = Bar{Code: it.Code, Country: it.Country, Value: it.Value, State: st}
	}
}

// HighlightCountry pins code to the first position. The natural order is
// restored first so the old pin does not linger. Countries without a bar
// are not pinned.
func (b *BarView) HighlightCountry(code, old string, hadOld bool) {
	if hadOld {
		b.sortItems()
	}
	if b.index(code) < 0 {
		b.pinned, b.hasPin = "", false
		b.layout()
		return
	}
	b.pinned, b.hasPin = code, true
	b.layout()
}

func (b *BarView) UnhighlightCountry(code string) {
	if b.hasPin && b.pinned == code {
		b.pinned, b.hasPin = "", false
	}
	b.sortItems()
	b.layout()
}

// The bar chart does not react to type selection.
func (b *BarView) HighlightType(models.EnergyType)   {}
func (b *BarView) UnhighlightType(models.EnergyType) {}

func (b *BarView) SetInteractive(on bool) { b.interactive = on }

// ControlsDisabled reports whether the item count radios are disabled.
func (b *BarView) ControlsDisabled() bool {
	return b.hasPin || !b.interactive
}

// SetItemCount applies a radio value: "all" or a positive number.
func (b *BarView) SetItemCount(value string) error {
	if b.ControlsDisabled() {
		return ErrControlsDisabled
	}
	if value == "all" {
		b.count = 0
		b.layout()
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid item count %q", value)
	}
	b.count = n
	b.layout()
	return nil
}

// ToggleSort flips the sort direction, keeping any pin.
func (b *BarView) ToggleSort() error {
	if !b.interactive {
		return ErrControlsDisabled
	}
	b.descending = !b.descending
	b.sortItems()
	b.layout()
	return nil
}

// Descending reports the sort direction.
func (b *BarView) Descending() bool { return b.descending }

// Display returns the bars currently drawn, in order.
func (b *BarView) Display() []Bar {
	return append([]Bar(nil), b.display...)
}

// Snapshot copies the visual state.
func (b *BarView) Snapshot() BarSnapshot {
	snap := BarSnapshot{
		Bars:             b.Display(),
		Descending:       b.descending,
		ItemCount:        b.count,
		All:              b.count == 0,
		ShowLabels:       b.count == DefaultItemCount,
		ControlsDisabled: b.ControlsDisabled(),
	}
	if snap.All {
		snap.ItemCount = len(b.items)
	}
	for _, bar := range snap.Bars {
		if bar.Value > snap.YMax {
			snap.YMax = bar.Value
		}
	}
	return snap
}
