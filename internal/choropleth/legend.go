package choropleth

import "fmt"

// LegendEpsilon nudges a bucket's lower bound into the bucket before sampling the scale,
// since scale buckets are lower-inclusive. Narrow buckets use half their width instead so
// the sample never crosses into the next bucket.
const LegendEpsilon = 0.1

// legendEpsilon is the nudge for a scale whose buckets are step wide.
func legendEpsilon(step float64) float64 {
	if step > 0 {
		return min(LegendEpsilon, step/2)
	}
	return LegendEpsilon
}

// LegendBucket is one colour swatch of the legend. UpperBound is nil for the last,
// open-ended bucket.
type LegendBucket struct {
	LowerBound float64  `json:"lower_bound"`
	UpperBound *float64 `json:"upper_bound"`
	Color      Color    `json:"color"`
	X          float64  `json:"x"`
	Width      float64  `json:"width"`
}

// Tick is an axis label placed at an interior cut point.
type Tick struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// Legend is the bucketed key for a ColorScale.
type Legend struct {
	Width   float64        `json:"width"`
	Buckets []LegendBucket `json:"buckets"`
	Ticks   []Tick         `json:"ticks"`
}

// BuildLegend partitions ext into the scale's own cut points and lays them out over
// [0, width].
func BuildLegend(scale ColorScale, ext Extent, width float64) Legend {
	lg := Legend{Width: width}

	cuts := scale.Cuts()
	if scale.Degenerate() || len(cuts) == 0 {
		lo := ext.Min
		if len(cuts) > 0 {
			lo = cuts[0]
		}
		lg.Buckets = []LegendBucket{{
			LowerBound: lo,
			Color:      scale.Color(lo + LegendEpsilon),
			Width:      width,
		}}
		return lg
	}

	x := linear(ext, width)
	eps := legendEpsilon((ext.Max - ext.Min) / float64(len(cuts)))
	lg.Buckets = make([]LegendBucket, len(cuts))
	for i, c := range cuts {
		b := LegendBucket{
			LowerBound: c,
			Color:      scale.Color(c + eps),
			X:          x(c),
		}
		if i+1 < len(cuts) {
			upper := cuts[i+1]
			b.UpperBound = &upper
			b.Width = x(upper) - b.X
		} else {
			b.Width = width - b.X
		}
		lg.Buckets[i] = b
	}

	for _, c := range cuts[1:] {
		lg.Ticks = append(lg.Ticks, Tick{Value: c, X: x(c), Label: fmt.Sprintf("%.1f", c)})
	}
	return lg
}

// linear maps [ext.Min, ext.Max] onto [0, width]. Callers guarantee a non-degenerate extent.
func linear(ext Extent, width float64) func(float64) float64 {
	span := ext.Max - ext.Min
	return func(v float64) float64 {
		return (v - ext.Min) / span * width
	}
}
