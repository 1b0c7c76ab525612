package choropleth

import (
	"math"
	"sort"
)

// DefaultPaletteSize is the number of discrete colours in a map scale.
const DefaultPaletteSize = 8

// Color is a CSS colour string.
type Color string

// Palette is an ordered list of colours from lowest to highest value.
type Palette []Color

// Greens is the eight-step sequential green palette.
var Greens = Palette{
	"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b",
	"#74c476", "#41ab5d", "#238b45", "#005a32",
}

// Step is one lower-inclusive threshold of a ColorScale. A nil LowerBound is unbounded.
type Step struct {
	LowerBound *float64 `json:"lower_bound"`
	Color      Color    `json:"color"`
}

// ColorScale is a threshold step function from a value to a palette colour.
// It is immutable once built.
type ColorScale struct {
	cuts       []float64
	palette    Palette
	degenerate bool
}

// BuildScale splits ext into len(palette) evenly spaced cut points starting at ext.Min.
// A value below the first cut gets palette[0]; a value at or above cut i gets
// palette[i+1], clamped to the last colour. A degenerate extent yields a scale that maps
// every value to the last colour.
func BuildScale(ext Extent, palette Palette) ColorScale {
	p := make(Palette, len(palette))
	copy(p, palette)
	if len(p) == 0 {
		p = Palette{""}
	}

	n := len(p)
	if ext.Degenerate() || len(palette) == 0 {
		lo := ext.Min
		if math.IsNaN(lo) || math.IsInf(lo, 0) {
			lo = 0
		}
		return ColorScale{cuts: []float64{lo}, palette: p, degenerate: true}
	}

	return ColorScale{cuts: cutPoints(ext, n), palette: p}
}

// cutPoints is shared by the scale and the legend so both see identical arithmetic.
func cutPoints(ext Extent, n int) []float64 {
	step := (ext.Max - ext.Min) / float64(n)
	cuts := make([]float64, n)
	for i := range n {
		cuts[i] = ext.Min + float64(i)*step
	}
	return cuts
}

// Index returns the palette index for v.
func (s ColorScale) Index(v float64) int {
	last := len(s.palette) - 1
	if s.degenerate {
		return last
	}
	// i is the number of cuts <= v.
	i := sort.Search(len(s.cuts), func(i int) bool { return s.cuts[i] > v })
	if i > last {
		return last
	}
	return i
}

// Color returns the palette colour for v.
func (s ColorScale) Color(v float64) Color {
	return s.palette[s.Index(v)]
}

// Cuts returns a copy of the threshold cut points.
func (s ColorScale) Cuts() []float64 {
	out := make([]float64, len(s.cuts))
	copy(out, s.cuts)
	return out
}

// Palette returns a copy of the scale's colours.
func (s ColorScale) Palette() Palette {
	out := make(Palette, len(s.palette))
	copy(out, s.palette)
	return out
}

// Degenerate reports whether every value maps to one colour.
func (s ColorScale) Degenerate() bool {
	return s.degenerate
}

// Steps returns the scale as ordered (lowerBound, colour) pairs. The first step is
// unbounded below and covers values under the first cut.
func (s ColorScale) Steps() []Step {
	if s.degenerate {
		return []Step{{Color: s.palette[len(s.palette)-1]}}
	}
	steps := make([]Step, 0, len(s.cuts)+1)
	steps = append(steps, Step{Color: s.palette[0]})
	for _, c := range s.cuts {
		steps = append(steps, Step{LowerBound: &c, Color: s.Color(c)})
	}
	return steps
}
