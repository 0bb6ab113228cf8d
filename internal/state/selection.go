// Package state holds the dashboard's shared selection: one country slot,
// one energy type slot and the active year range.
package state

import (
	"energydash/internal/models"
)

// Selection is the single-slot selection state. It is mutated only through
// its methods; callers serialize access (the dashboard holds a lock).
type Selection struct {
	country    string
	hasCountry bool
	typ        models.EnergyType
	hasType    bool
	yearRange  models.YearRange
}

// New returns an empty selection over the full year range.
func New() *Selection {
	return &Selection{yearRange: models.FullRange()}
}

// Country returns the selected country code.
func (s *Selection) Country() (string, bool) {
	return s.country, s.hasCountry
}

// Type returns the selected energy type.
func (s *Selection) Type() (models.EnergyType, bool) {
	return s.typ, s.hasType
}

// IsCountry reports whether code is the selected country.
func (s *Selection) IsCountry(code string) bool {
	return s.hasCountry && s.country == code
}

// IsType reports whether t is the selected type.
func (s *Selection) IsType(t models.EnergyType) bool {
	return s.hasType && s.typ == t
}

// SelectCountry stores code and evicts the previous selection, which is
// returned so views can restore it.
func (s *Selection) SelectCountry(code string) (old string, hadOld bool) {
	old, hadOld = s.country, s.hasCountry
	s.country, s.hasCountry = code, true
	return old, hadOld
}

// ClearCountry empties the country slot and returns what it held.
func (s *Selection) ClearCountry() (string, bool) {
	old, had := s.country, s.hasCountry
	s.country, s.hasCountry = "", false
	return old, had
}

// SelectType stores t and evicts the previous type.
func (s *Selection) SelectType(t models.EnergyType) (old models.EnergyType, hadOld bool) {
	old, hadOld = s.typ, s.hasType
	s.typ, s.hasType = t, true
	return old, hadOld
}

// ClearType empties the type slot and returns what it held.
func (s *Selection) ClearType() (models.EnergyType, bool) {
	old, had := s.typ, s.hasType
	s.typ, s.hasType = 0, false
	return old, had
}

// Reset clears both slots. The year range is kept.
func (s *Selection) Reset() {
	s.ClearCountry()
	s.ClearType()
}

// Range returns the active year range.
func (s *Selection) Range() models.YearRange {
	return s.yearRange
}

// SetRange replaces the active year range after validating it.
func (s *Selection) SetRange(r models.YearRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.yearRange = r
	return nil
}

// Snapshot is the JSON view of the selection.
type Snapshot struct {
	Country string             `json:"country,omitempty"`
	Type    *models.EnergyType `json:"type,omitempty"`
	Range   models.YearRange   `json:"range"`
}

func (s *Selection) Snapshot() Snapshot {
	snap := Snapshot{Range: s.yearRange}
	if s.hasCountry {
		snap.Country = s.country
	}
	if s.hasType {
		t := s.typ
		snap.Type = &t
	}
	return snap
}
