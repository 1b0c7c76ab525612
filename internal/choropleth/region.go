package choropleth

import (
	"github.com/twpayne/go-geom"
)

// DefaultNoDataColor fills regions that have geometry but no statistic.
const DefaultNoDataColor Color = "#cccccc"

// Region is everything needed to draw one region.
type Region struct {
	Key      int         `json:"fips"`
	Geometry geom.T      `json:"-"`
	Fill     Color       `json:"fill"`
	Stat     *StatRecord `json:"stat,omitempty"`
	HasData  bool        `json:"has_data"`
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	NoDataColor Color
	// Overlay is the separator geometry drawn on top of the regions, stroked only.
	Overlay geom.T
}

// Renderer resolves colours and tooltip content for the regions of one loaded dataset.
// It holds no mutable state; tooltip state is passed in and returned by Hover/Unhover.
type Renderer struct {
	index   JoinedIndex
	scale   ColorScale
	geoms   []GeometryRecord
	noData  Color
	overlay geom.T
}

// NewRenderer creates a Renderer over the joined index, scale and region geometries.
func NewRenderer(index JoinedIndex, scale ColorScale, geoms []GeometryRecord, opts RendererOptions) *Renderer {
	if opts.NoDataColor == "" {
		opts.NoDataColor = DefaultNoDataColor
	}
	return &Renderer{
		index:   index,
		scale:   scale,
		geoms:   geoms,
		noData:  opts.NoDataColor,
		overlay: opts.Overlay,
	}
}

// ColorFor returns the fill for key. The boolean is false when key has no statistic, in
// which case the no-data colour is returned.
func (r *Renderer) ColorFor(key int) (Color, bool) {
	s, ok := r.index.Lookup(key)
	if !ok {
		return r.noData, false
	}
	return r.scale.Color(s.Value), true
}

// Regions returns one Region per geometry, in geometry order.
func (r *Renderer) Regions() []Region {
	out := make([]Region, len(r.geoms))
	for i, g := range r.geoms {
		reg := Region{Key: g.Key, Geometry: g.Geometry}
		reg.Fill, reg.HasData = r.ColorFor(g.Key)
		if reg.HasData {
			s := r.index[g.Key]
			reg.Stat = &s
		}
		out[i] = reg
	}
	return out
}

// Overlay returns the separator geometry, or nil if none was provided.
func (r *Renderer) Overlay() geom.T {
	return r.overlay
}

// Scale returns the colour scale shared with the legend.
func (r *Renderer) Scale() ColorScale {
	return r.scale
}

// NoDataColor returns the fill used for regions without a statistic.
func (r *Renderer) NoDataColor() Color {
	return r.noData
}
