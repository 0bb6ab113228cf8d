package models

import "fmt"

// EnergyType indexes the nine energy sources. The index is what the chord
// diagram publishes on type selection.
type EnergyType int

const (
	Oil EnergyType = iota
	Gas
	Coal
	Nuclear
	Hydro
	Renewables
	Solar
	Wind
	Geo
)

// NumEnergyTypes is the number of energy types in the dataset.
const NumEnergyTypes = 9

// NoDataColor is the neutral fill for countries without data.
const NoDataColor = "#c5cacb"

var energyNames = [NumEnergyTypes]string{
	"Oil", "Gas", "Coal", "Nuclear", "Hydro", "Renewables", "Solar", "Wind", "Geo",
}

var energyColors = [NumEnergyTypes]string{
	"#a6cee3", "#1f78b4", "#b2df8a", "#33a02c", "#fb9a99", "#e31a1c", "#fdbf6f", "#ff7f00", "#cab2d6",
}

// AllEnergyTypes lists every type in index order.
func AllEnergyTypes() []EnergyType {
	out := make([]EnergyType, NumEnergyTypes)
	for i := range out {
		out[i] = EnergyType(i)
	}
	return out
}

func (t EnergyType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("EnergyType(%d)", int(t))
	}
	return energyNames[t]
}

// Color returns the categorical color shared by all three views.
func (t EnergyType) Color() string {
	if !t.Valid() {
		return NoDataColor
	}
	return energyColors[t]
}

func (t EnergyType) Valid() bool {
	return t >= 0 && int(t) < NumEnergyTypes
}

// ParseEnergyType maps the dataset spelling ("Oil", "Renewables", ...) to a type.
func ParseEnergyType(s string) (EnergyType, error) {
	for i, n := range energyNames {
		if n == s {
			return EnergyType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown energy type %q", s)
}

func (t EnergyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ChordRingMatrix weights the chord arcs. It is static and only controls how
// much of the ring each type occupies, not the data volume.
var ChordRingMatrix = [NumEnergyTypes][NumEnergyTypes]float64{
	{0, 3, 3, 3, 1, 1, 1, 1, 1},       // Oil
	{3, 0, 1, 1, 1, 1, 1, 1, 1},       // Gas
	{3, 3, 0, 3, 1, 1, 1, 1, 1},       // Coal
	{2, 2, 2, 0, 1, 1, 1, 1, 1},       // Nuclear
	{2, 2, 2, 1, 0, 1, 1, 1, 1},       // Hydro
	{0.1, 0.1, 0.1, 1, 1, 0, 1, 1, 1}, // Renewables
	{0.1, 0.1, 0.1, 1, 1, 1, 0, 1, 1}, // Solar
	{1, 1, 1, 1, 1, 1, 1, 0, 1},       // Wind
	{1, 1, 1, 1, 1, 1, 1, 1, 0},       // Geo
}
