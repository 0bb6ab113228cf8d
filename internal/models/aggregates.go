package models

// BarItem is one country in the bar chart: CO2 tonnes per capita.
type BarItem struct {
	Code    string  `json:"code"`
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// Extent is a [Min, Max] pair. Empty extents are reported with ok=false by
// the producing function, never as NaN.
type Extent struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// YearPoint is one sample of a consumption time series.
type YearPoint struct {
	Year        int     `json:"year"`
	Consumption float64 `json:"consumption"`
}

// LatLon is the location a country's pie is drawn at.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapAggregate feeds the choropleth, its pies and its line-chart tooltips.
type MapAggregate struct {
	// MeanByType[code][type] is the mean consumption across filtered years.
	MeanByType map[string]map[EnergyType]float64
	Location   map[string]LatLon
	Series     map[string]map[EnergyType][]YearPoint
	// ConsumptionExtent[code] is the y-domain of that country's tooltip.
	ConsumptionExtent map[string]Extent
	// Years is the global x-domain of all tooltips.
	Years    [2]int
	HasYears bool
}

// Dominant returns the type with the highest mean consumption for code. It
// reports false when the country is absent or every mean is zero.
func (m *MapAggregate) Dominant(code string) (EnergyType, bool) {
	means, ok := m.MeanByType[code]
	if !ok {
		return 0, false
	}
	best, bestVal, found := EnergyType(0), 0.0, false
	for _, t := range AllEnergyTypes() {
		v, ok := means[t]
		if !ok {
			continue
		}
		if !found || v > bestVal {
			best, bestVal, found = t, v, true
		}
	}
	if !found || bestVal == 0 {
		return 0, false
	}
	return best, true
}

// ChordAggregate feeds the chord diagram and force graph.
type ChordAggregate struct {
	ByCountryType map[string]map[EnergyType]float64
	Total         map[string]float64
	// Normalized is population-adjusted consumption, used for node size.
	Normalized map[string]float64
	ByType     map[EnergyType]float64
	// Percent[code][type] is the share of the country's total. Countries with
	// zero total are absent.
	Percent map[string]map[EnergyType]float64
}

// Share is one energy type's percentage of a country's consumption.
type Share struct {
	Type    EnergyType `json:"type"`
	Percent float64    `json:"percent"`
}

// Significant reports whether code's share of t exceeds threshold percent.
func (c *ChordAggregate) Significant(code string, t EnergyType, threshold float64) bool {
	p, ok := c.Percent[code][t]
	return ok && p > threshold
}
