// Package geo loads country boundary geometry and joins it to the records
// by country name.
package geo

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	json "github.com/goccy/go-json"

	"energydash/internal/logger"
)

// Feature is one country shape. Code is empty when the boundary name has no
// matching record; such shapes draw as no-data and are not clickable.
type Feature struct {
	Name   string
	Code   string
	Geom   geom.Geom
	Bounds *geom.Bounds
}

// Mapped reports whether the feature joined to a country code.
func (f *Feature) Mapped() bool { return f.Code != "" }

// Boundaries is the decoded FeatureCollection, in file order.
type Boundaries struct {
	Features []Feature
	byName   map[string]int
}

// CodeResolver maps a boundary name to a record country code.
type CodeResolver interface {
	CodeForName(name string) (string, bool)
}

type rawFeature struct {
	Type       string            `json:"type"`
	Properties map[string]any    `json:"properties"`
	Geometry   *geojson.Geometry `json:"geometry"`
}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

// LoadBoundaries reads a GeoJSON FeatureCollection from path.
func LoadBoundaries(path string) (*Boundaries, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boundaries: %w", err)
	}
	return Parse(b)
}

// Parse decodes a FeatureCollection whose features carry properties.name.
// Features without a name are dropped; features without geometry are kept
// with empty bounds.
func Parse(data []byte) (*Boundaries, error) {
	var fc rawCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decoding boundaries: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("boundaries: expected FeatureCollection, got %q", fc.Type)
	}

	out := &Boundaries{byName: make(map[string]int, len(fc.Features))}
	for i, rf := range fc.Features {
		name, _ := rf.Properties["name"].(string)
		if name == "" {
			logger.Debug("Boundary feature %d has no name, skipping", i)
			continue
		}
		f := Feature{Name: name, Bounds: geom.NewBounds()}
		if rf.Geometry != nil {
			g, err := fromGeometry(rf.Geometry)
			if err != nil {
				return nil, fmt.Errorf("boundary %q: %w", name, err)
			}
			f.Geom = g
			f.Bounds = g.Bounds()
		}
		out.byName[name] = len(out.Features)
		out.Features = append(out.Features, f)
	}
	return out, nil
}

// fromGeometry decodes a geometry, splitting MultiPolygons into polygons
// so each part goes through the geojson decoder.
func fromGeometry(g *geojson.Geometry) (geom.Geom, error) {
	if g.Type != "MultiPolygon" {
		return geojson.FromGeoJSON(g)
	}
	parts, ok := g.Coordinates.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid MultiPolygon coordinates")
	}
	mp := make(geom.MultiPolygon, 0, len(parts))
	for _, p := range parts {
		poly, err := geojson.FromGeoJSON(&geojson.Geometry{Type: "Polygon", Coordinates: p})
		if err != nil {
			return nil, err
		}
		pg, ok := poly.(geom.Polygon)
		if !ok {
			return nil, fmt.Errorf("unexpected MultiPolygon part %T", poly)
		}
		mp = append(mp, pg)
	}
	return mp, nil
}

// Join resolves every feature name to a country code and returns the number
// of features that matched.
func (b *Boundaries) Join(r CodeResolver) int {
	mapped := 0
	for i := range b.Features {
		code, ok := r.CodeForName(b.Features[i].Name)
		if !ok {
			b.Features[i].Code = ""
			continue
		}
		b.Features[i].Code = code
		mapped++
	}
	if n := len(b.Features) - mapped; n > 0 {
		logger.Debug("%d boundary features have no matching records", n)
	}
	return mapped
}

// Lookup returns the feature with the given boundary name.
func (b *Boundaries) Lookup(name string) (*Feature, bool) {
	i, ok := b.byName[name]
	if !ok {
		return nil, false
	}
	return &b.Features[i], true
}

// Unmapped lists the boundary names with no record, sorted.
func (b *Boundaries) Unmapped() []string {
	var out []string
	for _, f := range b.Features {
		if !f.Mapped() {
			out = append(out, f.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Extent is the union of all feature bounds.
func (b *Boundaries) Extent() *geom.Bounds {
	ext := geom.NewBounds()
	for _, f := range b.Features {
		if !f.Bounds.Empty() {
			ext.Extend(f.Bounds)
		}
	}
	return ext
}
