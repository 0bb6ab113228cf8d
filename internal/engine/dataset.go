package engine

import (
	"sort"
	"strings"

	"energydash/internal/models"
)

// Dataset is a read-only filtered view over the master store. Every filter
// change builds a new Dataset; the store itself is shared by reference.
type Dataset struct {
	store *ColumnStore
	rows  []int32
	Range models.YearRange
}

// All returns a view over every row.
func (cs *ColumnStore) All() *Dataset {
	rows := make([]int32, cs.Len())
	for i := range rows {
		rows[i] = int32(i)
	}
	return &Dataset{store: cs, rows: rows, Range: models.FullRange()}
}

// Filter returns the rows whose Year lies within r (inclusive).
func (cs *ColumnStore) Filter(r models.YearRange) *Dataset {
	rows := make([]int32, 0, cs.Len())
	lo, hi := int32(r.Min), int32(r.Max)
	for i, y := range cs.Years {
		if y >= lo && y <= hi {
			rows = append(rows, int32(i))
		}
	}
	return &Dataset{store: cs, rows: rows, Range: r}
}

func (d *Dataset) Store() *ColumnStore { return d.store }

func (d *Dataset) Len() int { return len(d.rows) }

// Record materializes the i-th filtered row.
func (d *Dataset) Record(i int) models.Record {
	cs := d.store
	j := d.rows[i]
	cid := cs.CountryIDs[j]
	return models.Record{
		Country:     cs.CountryDict[cid],
		CountryCode: cs.CodeDict[cid],
		Type:        models.EnergyType(cs.TypeIDs[j]),
		Year:        int(cs.Years[j]),
		Consumption: cs.Consumption[j],
		Emissions:   cs.Emissions[j],
		Population:  cs.Population[j],
		Lat:         cs.Lats[j],
		Lon:         cs.Lons[j],
	}
}

// Records materializes every filtered row.
func (d *Dataset) Records() []models.Record {
	out := make([]models.Record, len(d.rows))
	for i := range d.rows {
		out[i] = d.Record(i)
	}
	return out
}

// HasConsumption reports whether any filtered row of code has positive
// consumption. Countries failing this are not selectable.
func (d *Dataset) HasConsumption(code string) bool {
	cid, ok := d.store.CountryID(code)
	if !ok {
		return false
	}
	cs := d.store
	for _, j := range d.rows {
		if cs.CountryIDs[j] == cid && cs.Consumption[j] > 0 {
			return true
		}
	}
	return false
}

// CountryNames returns the distinct country names present in the view, sorted.
func (d *Dataset) CountryNames() []string {
	seen := make([]bool, d.store.NumCountries())
	var names []string
	for _, j := range d.rows {
		cid := d.store.CountryIDs[j]
		if !seen[cid] {
			seen[cid] = true
			names = append(names, d.store.CountryDict[cid])
		}
	}
	sort.Strings(names)
	return names
}

// SearchNames returns the names starting with prefix, case-insensitively.
func SearchNames(names []string, prefix string) []string {
	p := strings.ToLower(prefix)
	out := make([]string, 0)
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), p) {
			out = append(out, n)
		}
	}
	return out
}
