package dataset

import (
	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// shapeToGeom converts a go-shp shape to go-geom. Unsupported or empty shapes
// yield nil.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Polygon:
		return polygonToMultiPolygon(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygonToMultiPolygon(s.Parts, s.Points)
	case *shp.PolygonM:
		return polygonToMultiPolygon(s.Parts, s.Points)
	default:
		return nil
	}
}

// polygonToMultiPolygon groups shapefile rings into polygons. Outer rings wind
// clockwise; each counter-clockwise ring is a hole of the outer ring before it.
func polygonToMultiPolygon(parts []int32, points []shp.Point) geom.T {
	if len(parts) == 0 || len(points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var cur *geom.Polygon
	flush := func() {
		if cur == nil {
			return
		}
		if err := mp.Push(cur); err != nil {
			zap.L().Debug("dataset: skipping malformed polygon", zap.Error(err))
		}
		cur = nil
	}

	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || end-start < 4 {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for _, p := range points[start:end] {
			flat = append(flat, p.X, p.Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if signedArea(flat) < 0 || cur == nil {
			flush()
			cur = geom.NewPolygon(geom.XY)
		}
		if err := cur.Push(ring); err != nil {
			zap.L().Debug("dataset: skipping malformed ring", zap.Int("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace sum over a closed flat XY ring; negative means clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := range n {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
