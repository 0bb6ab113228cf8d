package engine

import (
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"energydash/internal/models"
)

const (
	// perCapitaScale converts emissions (million tonnes) to tonnes.
	perCapitaScale = 1e6
	// normalizedScale keeps population-normalized consumption in a readable range.
	normalizedScale = 1e8
)

type aggStats struct {
	Cons float64
	Em   float64
	Pop  float64
	Rows int
}

// cube is the merged rollup of a Dataset: a flattened [Country][Type] matrix
// plus per-country extents.
type cube struct {
	numCountries int
	matrix       []aggStats
	consMin      []float64
	consMax      []float64
	seen         []bool
	firstRow     []int32
	yearMin      int32
	yearMax      int32
	hasYears     bool
}

func (c *cube) at(cid int, t models.EnergyType) *aggStats {
	return &c.matrix[cid*models.NumEnergyTypes+int(t)]
}

// rollup reduces the filtered rows in parallel chunks, then merges.
func (d *Dataset) rollup() *cube {
	cs := d.store
	numCountries := cs.NumCountries()
	matrixSize := numCountries * models.NumEnergyTypes

	// 1. Setup Workers
	numWorkers := runtime.NumCPU()
	if len(d.rows) < 4096 {
		numWorkers = 1
	}
	chunkSize := len(d.rows) / numWorkers

	newCube := func() *cube {
		c := &cube{
			numCountries: numCountries,
			matrix:       make([]aggStats, matrixSize),
			consMin:      make([]float64, numCountries),
			consMax:      make([]float64, numCountries),
			seen:         make([]bool, numCountries),
			firstRow:     make([]int32, numCountries),
		}
		for i := range c.firstRow {
			c.firstRow[i] = -1
		}
		return c
	}

	partials := make([]*cube, numWorkers)
	var g errgroup.Group

	// 2. Parallel Loop
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if i == numWorkers-1 {
			end = len(d.rows)
		}

		w, s, e := i, start, end
		g.Go(func() error {
			p := newCube()

			// Capture slice headers to avoid bounds checks in loop
			rows := d.rows
			ids := cs.CountryIDs
			types := cs.TypeIDs
			cons := cs.Consumption
			ems := cs.Emissions
			pops := cs.Population
			years := cs.Years

			for _, j := range rows[s:e] {
				cid := int(ids[j])
				c := cons[j]

				// A. MATRIX UPDATE
				idx := cid*models.NumEnergyTypes + int(types[j])
				p.matrix[idx].Cons += c
				p.matrix[idx].Em += ems[j]
				p.matrix[idx].Pop += pops[j]
				p.matrix[idx].Rows++

				// B. Country extents
				if !p.seen[cid] {
					p.seen[cid] = true
					p.consMin[cid], p.consMax[cid] = c, c
					p.firstRow[cid] = j
				} else {
					p.consMin[cid] = math.Min(p.consMin[cid], c)
					p.consMax[cid] = math.Max(p.consMax[cid], c)
				}

				// C. Year extent
				y := years[j]
				if !p.hasYears {
					p.yearMin, p.yearMax, p.hasYears = y, y, true
				} else if y < p.yearMin {
					p.yearMin = y
				} else if y > p.yearMax {
					p.yearMax = y
				}
			}
			partials[w] = p
			return nil
		})
	}
	g.Wait()

	// 3. Merge Phase (Reducer). Partials are merged in chunk order so the
	// first row of a country is the earliest in file order.
	final := newCube()
	for _, p := range partials {
		for i := 0; i < matrixSize; i++ {
			if p.matrix[i].Rows > 0 { // Optimization: Skip empty zeroes
				final.matrix[i].Cons += p.matrix[i].Cons
				final.matrix[i].Em += p.matrix[i].Em
				final.matrix[i].Pop += p.matrix[i].Pop
				final.matrix[i].Rows += p.matrix[i].Rows
			}
		}
		for cid := 0; cid < numCountries; cid++ {
			if !p.seen[cid] {
				continue
			}
			if !final.seen[cid] {
				final.seen[cid] = true
				final.consMin[cid], final.consMax[cid] = p.consMin[cid], p.consMax[cid]
				final.firstRow[cid] = p.firstRow[cid]
				continue
			}
			final.consMin[cid] = math.Min(final.consMin[cid], p.consMin[cid])
			final.consMax[cid] = math.Max(final.consMax[cid], p.consMax[cid])
		}
		if p.hasYears {
			if !final.hasYears {
				final.yearMin, final.yearMax, final.hasYears = p.yearMin, p.yearMax, true
			} else {
				if p.yearMin < final.yearMin {
					final.yearMin = p.yearMin
				}
				if p.yearMax > final.yearMax {
					final.yearMax = p.yearMax
				}
			}
		}
	}
	return final
}

// Bar computes CO2 tonnes per capita for each country, using the rows of the
// proxy type only (emissions are not broken down by type in the source). The
// result is in country dictionary order; sorting is the view's job.
func (d *Dataset) Bar(proxy models.EnergyType) []models.BarItem {
	c := d.rollup()
	items := make([]models.BarItem, 0)
	for cid := 0; cid < c.numCountries; cid++ {
		s := c.at(cid, proxy)
		if s.Rows == 0 || s.Pop == 0 {
			continue
		}
		items = append(items, models.BarItem{
			Code:    d.store.CodeDict[cid],
			Country: d.store.CountryDict[cid],
			Value:   s.Em * perCapitaScale / s.Pop,
		})
	}
	return items
}

// Map computes mean consumption per (country, type), locations, tooltip
// series and extents.
func (d *Dataset) Map() *models.MapAggregate {
	c := d.rollup()
	cs := d.store
	agg := &models.MapAggregate{
		MeanByType:        make(map[string]map[models.EnergyType]float64),
		Location:          make(map[string]models.LatLon),
		Series:            make(map[string]map[models.EnergyType][]models.YearPoint),
		ConsumptionExtent: make(map[string]models.Extent),
	}
	if c.hasYears {
		agg.Years = [2]int{int(c.yearMin), int(c.yearMax)}
		agg.HasYears = true
	}

	for cid := 0; cid < c.numCountries; cid++ {
		if !c.seen[cid] {
			continue
		}
		code := cs.CodeDict[cid]
		means := make(map[models.EnergyType]float64)
		for _, t := range models.AllEnergyTypes() {
			s := c.at(cid, t)
			if s.Rows > 0 {
				means[t] = s.Cons / float64(s.Rows)
			}
		}
		agg.MeanByType[code] = means
		j := c.firstRow[cid]
		agg.Location[code] = models.LatLon{Lat: cs.Lats[j], Lon: cs.Lons[j]}
		agg.ConsumptionExtent[code] = models.Extent{Min: c.consMin[cid], Max: c.consMax[cid]}
	}

	// Series need every row, grouped then ordered by year.
	for _, j := range d.rows {
		code := cs.CodeDict[cs.CountryIDs[j]]
		t := models.EnergyType(cs.TypeIDs[j])
		byType, ok := agg.Series[code]
		if !ok {
			byType = make(map[models.EnergyType][]models.YearPoint)
			agg.Series[code] = byType
		}
		byType[t] = append(byType[t], models.YearPoint{Year: int(cs.Years[j]), Consumption: cs.Consumption[j]})
	}
	for _, byType := range agg.Series {
		for _, pts := range byType {
			sort.SliceStable(pts, func(a, b int) bool { return pts[a].Year < pts[b].Year })
		}
	}
	return agg
}

// Chord computes consumption by country and type, totals, population
// normalized consumption and per-country type percentages.
func (d *Dataset) Chord() *models.ChordAggregate {
	c := d.rollup()
	cs := d.store
	agg := &models.ChordAggregate{
		ByCountryType: make(map[string]map[models.EnergyType]float64),
		Total:         make(map[string]float64),
		Normalized:    make(map[string]float64),
		ByType:        make(map[models.EnergyType]float64),
		Percent:       make(map[string]map[models.EnergyType]float64),
	}

	row := make([]float64, models.NumEnergyTypes)
	for cid := 0; cid < c.numCountries; cid++ {
		if !c.seen[cid] {
			continue
		}
		code := cs.CodeDict[cid]
		byType := make(map[models.EnergyType]float64)
		var pop float64
		for _, t := range models.AllEnergyTypes() {
			s := c.at(cid, t)
			row[t] = s.Cons
			pop += s.Pop
			if s.Rows > 0 {
				byType[t] = s.Cons
				agg.ByType[t] += s.Cons
			}
		}
		total := floats.Sum(row)
		agg.ByCountryType[code] = byType
		agg.Total[code] = total
		if pop > 0 {
			agg.Normalized[code] = total * normalizedScale / pop
		}
		if total == 0 {
			continue
		}
		pct := make(map[models.EnergyType]float64, len(byType))
		for t, v := range byType {
			pct[t] = v / total * 100
		}
		agg.Percent[code] = pct
	}
	return agg
}
