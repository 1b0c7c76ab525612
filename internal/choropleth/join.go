// Package choropleth joins per-region statistics with region geometry and derives the
// discrete colour scale, legend, and hover behaviour used to draw a choropleth map.
package choropleth

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"
)

// Extent seeds. Statistics are percentages, so the running extent starts inverted at
// (100, 0) and only a value inside [0,100] is guaranteed to tighten it.
const (
	SeedMin = 100.0
	SeedMax = 0.0
)

// StatRecord is one region's statistic.
type StatRecord struct {
	Key       int     `json:"fips"`
	Name      string  `json:"area_name"`
	Subregion string  `json:"state"`
	Value     float64 `json:"bachelorsOrHigher"`
}

// GeometryRecord is one region boundary keyed by the same identifier as StatRecord.
type GeometryRecord struct {
	Key      int
	Geometry geom.T
}

// JoinedIndex maps a region key to its statistic.
type JoinedIndex map[int]StatRecord

// Extent is the observed value range of a joined dataset.
type Extent struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Empty reports whether the extent is the untouched seed or otherwise unusable as a range.
func (e Extent) Empty() bool {
	return math.IsNaN(e.Min) || math.IsNaN(e.Max) || e.Min > e.Max
}

// Degenerate reports whether the extent cannot be split into distinct buckets.
func (e Extent) Degenerate() bool {
	return e.Empty() || e.Min == e.Max || math.IsInf(e.Min, 0) || math.IsInf(e.Max, 0)
}

// Join indexes stats by key and tracks the running min/max. Duplicate keys are not an
// error: the last record wins.
func Join(stats []StatRecord) (JoinedIndex, Extent) {
	idx := make(JoinedIndex, len(stats))
	ext := Extent{Min: SeedMin, Max: SeedMax}
	for _, s := range stats {
		idx[s.Key] = s
		ext.Min = math.Min(s.Value, ext.Min)
		ext.Max = math.Max(s.Value, ext.Max)
	}
	return idx, ext
}

// Lookup returns the statistic for key.
func (j JoinedIndex) Lookup(key int) (StatRecord, bool) {
	s, ok := j[key]
	return s, ok
}

// Missing returns the geometry keys that have no statistic, in input order.
func (j JoinedIndex) Missing(geoms []GeometryRecord) []int {
	var out []int
	for _, g := range geoms {
		if _, ok := j[g.Key]; !ok {
			out = append(out, g.Key)
		}
	}
	return out
}

// Unmatched returns the statistic keys that have no geometry, sorted ascending.
func (j JoinedIndex) Unmatched(geoms []GeometryRecord) []int {
	seen := make(map[int]struct{}, len(geoms))
	for _, g := range geoms {
		seen[g.Key] = struct{}{}
	}
	var out []int
	for k := range j {
		if _, ok := seen[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Ints(out)
	return out
}
