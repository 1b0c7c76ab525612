package topology

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Feature is one geometry of a topology object converted to go-geom.
type Feature struct {
	ID         int
	HasID      bool
	Properties map[string]any
	Geometry   geom.T
}

// Feature converts the named object into features. A GeometryCollection yields one
// feature per member; null geometries are skipped.
func (t *Topology) Feature(name string) ([]Feature, error) {
	obj, err := t.Object(name)
	if err != nil {
		return nil, err
	}

	members := []*Geometry{obj}
	if obj.Type == "GeometryCollection" {
		members = obj.Geometries
	}

	features := make([]Feature, 0, len(members))
	for i, g := range members {
		if g == nil || g.Type == "" {
			continue
		}
		gt, err := t.Geometry(g)
		if err != nil {
			return nil, eris.Wrapf(err, "topology: %s geometry %d", name, i)
		}
		if gt == nil {
			continue
		}
		id, ok, err := g.IntID()
		if err != nil {
			return nil, eris.Wrapf(err, "topology: %s geometry %d", name, i)
		}
		features = append(features, Feature{ID: id, HasID: ok, Properties: g.Properties, Geometry: gt})
	}
	return features, nil
}

// Geometry converts a single topology geometry to go-geom.
func (t *Topology) Geometry(g *Geometry) (geom.T, error) {
	switch g.Type {
	case "Point":
		var c []float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, eris.Wrap(err, "topology: point coordinates")
		}
		p, err := t.position(c)
		if err != nil {
			return nil, err
		}
		return geom.NewPointFlat(geom.XY, p[:]), nil

	case "MultiPoint":
		var cs [][]float64
		if err := json.Unmarshal(g.Coordinates, &cs); err != nil {
			return nil, eris.Wrap(err, "topology: multipoint coordinates")
		}
		flat := make([]float64, 0, 2*len(cs))
		for _, c := range cs {
			p, err := t.position(c)
			if err != nil {
				return nil, err
			}
			flat = append(flat, p[0], p[1])
		}
		return geom.NewMultiPointFlat(geom.XY, flat), nil

	case "LineString":
		var arcs []int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, eris.Wrap(err, "topology: linestring arcs")
		}
		line, err := t.line(arcs)
		if err != nil {
			return nil, err
		}
		return geom.NewLineStringFlat(geom.XY, flatten(line)), nil

	case "MultiLineString":
		var arcs [][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, eris.Wrap(err, "topology: multilinestring arcs")
		}
		var flat []float64
		ends := make([]int, 0, len(arcs))
		for _, a := range arcs {
			line, err := t.line(a)
			if err != nil {
				return nil, err
			}
			flat = append(flat, flatten(line)...)
			ends = append(ends, len(flat))
		}
		return geom.NewMultiLineStringFlat(geom.XY, flat, ends), nil

	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, eris.Wrap(err, "topology: polygon arcs")
		}
		flat, ends, err := t.polygon(rings, nil)
		if err != nil {
			return nil, err
		}
		return geom.NewPolygonFlat(geom.XY, flat, ends), nil

	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, eris.Wrap(err, "topology: multipolygon arcs")
		}
		var flat []float64
		endss := make([][]int, 0, len(polys))
		for _, rings := range polys {
			var ends []int
			var err error
			flat, ends, err = t.polygon(rings, flat)
			if err != nil {
				return nil, err
			}
			endss = append(endss, ends)
		}
		return geom.NewMultiPolygonFlat(geom.XY, flat, endss), nil

	case "GeometryCollection":
		gc := geom.NewGeometryCollection()
		for _, member := range g.Geometries {
			if member == nil || member.Type == "" {
				continue
			}
			gt, err := t.Geometry(member)
			if err != nil {
				return nil, err
			}
			if err := gc.Push(gt); err != nil {
				return nil, eris.Wrap(err, "topology: push collection member")
			}
		}
		return gc, nil

	case "":
		return nil, nil

	default:
		return nil, eris.Errorf("topology: unsupported geometry type %q", g.Type)
	}
}

// line stitches arcs end to start. Each arc after the first drops its first position,
// which repeats the previous arc's last.
func (t *Topology) line(arcs []int) ([][2]float64, error) {
	var pts [][2]float64
	for _, i := range arcs {
		a, err := t.arc(i)
		if err != nil {
			return nil, err
		}
		if len(pts) > 0 && len(a) > 0 {
			a = a[1:]
		}
		pts = append(pts, a...)
	}
	if len(pts) == 1 {
		pts = append(pts, pts[0])
	}
	return pts, nil
}

// ring is a closed line padded to the four positions a valid linear ring requires.
func (t *Topology) ring(arcs []int) ([][2]float64, error) {
	pts, err := t.line(arcs)
	if err != nil {
		return nil, err
	}
	for len(pts) > 0 && len(pts) < 4 {
		pts = append(pts, pts[0])
	}
	return pts, nil
}

// polygon appends the rings of one polygon to flat and returns the ring end offsets.
func (t *Topology) polygon(rings [][]int, flat []float64) ([]float64, []int, error) {
	ends := make([]int, 0, len(rings))
	for _, r := range rings {
		pts, err := t.ring(r)
		if err != nil {
			return nil, nil, err
		}
		flat = append(flat, flatten(pts)...)
		ends = append(ends, len(flat))
	}
	return flat, ends, nil
}

func flatten(pts [][2]float64) []float64 {
	out := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, p[0], p[1])
	}
	return out
}
