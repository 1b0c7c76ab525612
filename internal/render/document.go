// Package render draws a choropleth model onto an SVG element tree.
package render

import (
	"strconv"

	"github.com/sells-group/choropleth/internal/choropleth"
	"github.com/sells-group/choropleth/internal/geopath"
	"github.com/sells-group/choropleth/internal/svg"
)

// Options controls canvas and legend layout.
type Options struct {
	Width  int
	Height int

	LegendX      float64
	LegendY      float64
	LegendHeight float64
	TickSize     float64

	OverlayStroke string
	Projection    geopath.Projection
}

// DefaultOptions matches the 960x600 canvas with the legend in the top right.
func DefaultOptions() Options {
	return Options{
		Width:         960,
		Height:        600,
		LegendX:       600,
		LegendY:       30,
		LegendHeight:  10,
		TickSize:      6,
		OverlayStroke: "#ffffff",
		Projection:    geopath.Identity{},
	}
}

// Handles are the mount points a document draws into.
type Handles struct {
	Root    *svg.Element
	Map     *svg.Element
	Overlay *svg.Element
	Legend  *svg.Element
}

// NewHandles creates an empty canvas with map, overlay and legend groups.
func NewHandles(opts Options) Handles {
	root := svg.Document(opts.Width, opts.Height)
	return Handles{
		Root:    root,
		Map:     root.Append("g").Attr("id", "map"),
		Overlay: root.Append("g").Attr("id", "overlay"),
		Legend: root.Append("g").
			Attr("id", "legend").
			Attr("transform", svg.Translate(opts.LegendX, opts.LegendY)),
	}
}

// Document draws the full map for m and returns the root element.
func Document(m *choropleth.Model, opts Options) *svg.Element {
	h := NewHandles(opts)
	Regions(h.Map, m.Renderer, opts.Projection)
	Overlay(h.Overlay, m.Renderer, opts)
	Legend(h.Legend, m.Legend, opts)
	return h.Root
}

// Regions appends one path per region to parent.
func Regions(parent *svg.Element, r *choropleth.Renderer, proj geopath.Projection) {
	for _, reg := range r.Regions() {
		p := parent.Append("path").
			Attr("d", geopath.Path(reg.Geometry, proj)).
			Attr("data-fips", strconv.Itoa(reg.Key))
		if !reg.HasData {
			p.Attr("class", "county no-data").Style("fill", string(reg.Fill))
			continue
		}
		p.Attr("data-education", strconv.FormatFloat(reg.Stat.Value, 'f', -1, 64)).
			Attr("class", "county").
			Style("fill", string(reg.Fill))
		if c, ok := r.Content(reg.Key); ok {
			p.Append("title").SetText(c.Text)
		}
	}
}

// Overlay strokes the separator geometry, if any.
func Overlay(parent *svg.Element, r *choropleth.Renderer, opts Options) {
	g := r.Overlay()
	if g == nil {
		return
	}
	d := geopath.Path(g, opts.Projection)
	if d == "" {
		return
	}
	parent.Append("path").
		Attr("class", "state").
		Attr("d", d).
		Style("fill", "none").
		Style("stroke", opts.OverlayStroke).
		Style("stroke-linejoin", "round")
}

// Legend appends one rect per bucket and a bottom axis with the tick labels.
func Legend(parent *svg.Element, lg choropleth.Legend, opts Options) {
	for _, b := range lg.Buckets {
		parent.Append("rect").
			Style("fill", string(b.Color)).
			AttrFloat("width", b.Width).
			AttrFloat("height", opts.LegendHeight).
			AttrFloat("x", b.X).
			Attr("y", "0")
	}

	axis := parent.Append("g").
		Attr("class", "axis").
		Attr("transform", svg.Translate(-0.5, opts.LegendHeight)).
		Attr("text-anchor", "middle").
		Attr("font-size", "10")
	axis.Append("path").
		Attr("class", "domain").
		Attr("stroke", "currentColor").
		Attr("fill", "none").
		Attr("d", "M0.5,0H"+svg.Num(lg.Width+0.5))
	for _, t := range lg.Ticks {
		tick := axis.Append("g").
			Attr("class", "tick").
			Attr("transform", svg.Translate(t.X+0.5, 0))
		tick.Append("line").
			Attr("stroke", "currentColor").
			AttrFloat("y2", opts.TickSize)
		tick.Append("text").
			Attr("fill", "currentColor").
			AttrFloat("y", opts.TickSize+3).
			Attr("dy", "0.71em").
			SetText(t.Label)
	}
}
