// Package timeline holds the year range slider model and the play sweep.
package timeline

import (
	"errors"
	"fmt"

	"energydash/internal/models"
)

// ErrSliderDisabled is returned for user moves while the handles are disabled.
var ErrSliderDisabled = errors.New("slider disabled")

// DefaultMargin is the minimum span between handles outside the sweep.
const DefaultMargin = 1

// Slider models the dual-handle range slider: integer years in
// [MinYear, MaxYear] with a minimum distance between the handles.
type Slider struct {
	values   models.YearRange
	margin   int
	disabled bool
}

// NewSlider starts at the full range.
func NewSlider() *Slider {
	return &Slider{values: models.FullRange(), margin: DefaultMargin}
}

// Values returns the current handle positions.
func (s *Slider) Values() models.YearRange { return s.values }

// Margin returns the enforced handle distance.
func (s *Slider) Margin() int { return s.margin }

// Disabled reports whether the handles accept user input.
func (s *Slider) Disabled() bool { return s.disabled }

// Update is a user drag. It is rejected while disabled or when the span is
// narrower than the margin.
func (s *Slider) Update(lo, hi int) error {
	if s.disabled {
		return ErrSliderDisabled
	}
	return s.Set(models.YearRange{Min: lo, Max: hi})
}

// Set moves both handles programmatically.
func (s *Slider) Set(r models.YearRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Max-r.Min < s.margin {
		return fmt.Errorf("%w: span %v narrower than %d year(s)", models.ErrInvalidRange, r, s.margin)
	}
	s.values = r
	return nil
}

// Lock disables the handles and drops the margin so both can sit on one
// year. Used for the sweep.
func (s *Slider) Lock() {
	s.disabled = true
	s.margin = 0
}

// Unlock restores user input and the default margin.
func (s *Slider) Unlock() {
	s.disabled = false
	s.margin = DefaultMargin
}
