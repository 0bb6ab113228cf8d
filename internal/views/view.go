// Package views holds the three chart views. A view owns its aggregated
// snapshot and its visual state; it never renders anything itself.
package views

import (
	"errors"

	"energydash/internal/engine"
	"energydash/internal/models"
)

// ErrControlsDisabled is returned when a view control is used while it is
// disabled (a country is pinned, or the animation is playing).
var ErrControlsDisabled = errors.New("controls disabled")

// ChartView is what the dashboard drives on every filter change and event.
//
// HighlightCountry is the "not active" transition: code becomes the
// selection and old (when hadOld) goes back to baseline. UnhighlightCountry
// is the deselect path. Views that do not react to a kind implement its
// transitions as no-ops.
type ChartView interface {
	Name() string
	Filter(ds *engine.Dataset)
	HighlightCountry(code, old string, hadOld bool)
	UnhighlightCountry(code string)
	HighlightType(t models.EnergyType)
	UnhighlightType(t models.EnergyType)
	// SetInteractive toggles pointer events and controls; the dashboard
	// turns it off for the duration of the play sweep.
	SetInteractive(on bool)
}

// Layer is a draw order bucket. Raised marks render above Base ones.
type Layer int

const (
	LayerBase Layer = iota
	LayerRaised
)

func (l Layer) MarshalText() ([]byte, error) {
	if l == LayerRaised {
		return []byte("raised"), nil
	}
	return []byte("base"), nil
}

// nameOf resolves a display name, falling back to the code.
func nameOf(ds *engine.Dataset, code string) string {
	if ds == nil {
		return code
	}
	if n, ok := ds.Store().NameForCode(code); ok {
		return n
	}
	return code
}
