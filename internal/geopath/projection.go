package geopath

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Projection maps source coordinates to canvas coordinates.
type Projection interface {
	Project(x, y float64) (float64, float64)
}

// Identity leaves coordinates untouched. Use it for pre-projected topologies.
type Identity struct{}

// Project implements Projection.
func (Identity) Project(x, y float64) (float64, float64) { return x, y }

// Fit is an equirectangular projection that scales a bounding box into a canvas,
// preserving aspect ratio and flipping y so north is up.
type Fit struct {
	MinX, MaxY float64
	Scale      float64
	OffsetX    float64
	OffsetY    float64
}

// Project implements Projection.
func (f Fit) Project(x, y float64) (float64, float64) {
	return (x-f.MinX)*f.Scale + f.OffsetX, (f.MaxY-y)*f.Scale + f.OffsetY
}

// FitExtent fits bounds into a width x height canvas inset by padding on every side.
// Empty or zero-area bounds yield a unit scale anchored at the padding.
func FitExtent(b *geom.Bounds, width, height, padding float64) Fit {
	if b == nil || b.IsEmpty() {
		return Fit{Scale: 1, OffsetX: padding, OffsetY: padding}
	}
	minX, minY := b.Min(0), b.Min(1)
	maxX, maxY := b.Max(0), b.Max(1)
	dx, dy := maxX-minX, maxY-minY
	w, h := width-2*padding, height-2*padding

	scale := 1.0
	switch {
	case dx > 0 && dy > 0:
		scale = math.Min(w/dx, h/dy)
	case dx > 0:
		scale = w / dx
	case dy > 0:
		scale = h / dy
	}

	return Fit{
		MinX:    minX,
		MaxY:    maxY,
		Scale:   scale,
		OffsetX: padding + (w-dx*scale)/2,
		OffsetY: padding + (h-dy*scale)/2,
	}
}

// Bounds returns the combined XY bounds of gs, skipping nil geometries.
func Bounds(gs ...geom.T) *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	extend(b, gs)
	return b
}

func extend(b *geom.Bounds, gs []geom.T) {
	for _, g := range gs {
		switch t := g.(type) {
		case nil:
		case *geom.GeometryCollection:
			extend(b, t.Geoms())
		default:
			b.Extend(t)
		}
	}
}
