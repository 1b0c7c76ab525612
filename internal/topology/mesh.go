package topology

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// MeshFilter decides whether an arc shared by geometries a and b belongs in a mesh. a and
// b are the first and last geometries referencing the arc; they are equal when only one
// geometry uses it.
type MeshFilter func(a, b *Geometry) bool

// DistinctGeometries keeps arcs that separate two different geometries, dropping outer
// edges used by a single geometry.
func DistinctGeometries(a, b *Geometry) bool {
	return a != b
}

// Mesh returns the arcs of the named object selected by filter as one MultiLineString.
// A nil filter keeps every arc. Consecutive selected arcs that share an endpoint are
// stitched into a single line.
func (t *Topology) Mesh(name string, filter MeshFilter) (*geom.MultiLineString, error) {
	obj, err := t.Object(name)
	if err != nil {
		return nil, err
	}

	byArc := make(map[int][]*Geometry)
	var order []int
	if err := t.collectArcs(obj, byArc, &order); err != nil {
		return nil, eris.Wrapf(err, "topology: mesh %s", name)
	}

	mls := geom.NewMultiLineString(geom.XY)
	var cur [][2]float64
	flush := func() error {
		if len(cur) < 2 {
			cur = nil
			return nil
		}
		err := mls.Push(geom.NewLineStringFlat(geom.XY, flatten(cur)))
		cur = nil
		return err
	}

	for _, i := range order {
		geoms := byArc[i]
		if filter != nil && !filter(geoms[0], geoms[len(geoms)-1]) {
			continue
		}
		a, err := t.arc(i)
		if err != nil {
			return nil, err
		}
		if len(a) == 0 {
			continue
		}
		switch {
		case len(cur) > 0 && cur[len(cur)-1] == a[0]:
			cur = append(cur, a[1:]...)
		case len(cur) > 0 && cur[len(cur)-1] == a[len(a)-1]:
			rev, _ := t.arc(^i)
			cur = append(cur, rev[1:]...)
		default:
			if err := flush(); err != nil {
				return nil, eris.Wrap(err, "topology: push mesh line")
			}
			cur = append(cur, a...)
		}
	}
	if err := flush(); err != nil {
		return nil, eris.Wrap(err, "topology: push mesh line")
	}
	return mls, nil
}

// collectArcs records, for every arc index, the geometries that reference it. order
// keeps arcs in first-seen order so mesh output is deterministic.
func (t *Topology) collectArcs(g *Geometry, byArc map[int][]*Geometry, order *[]int) error {
	add := func(i int) {
		if i < 0 {
			i = ^i
		}
		if _, seen := byArc[i]; !seen {
			*order = append(*order, i)
		}
		byArc[i] = append(byArc[i], g)
	}

	switch g.Type {
	case "GeometryCollection":
		for _, member := range g.Geometries {
			if member == nil {
				continue
			}
			if err := t.collectArcs(member, byArc, order); err != nil {
				return err
			}
		}
	case "LineString":
		var arcs []int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return eris.Wrap(err, "topology: linestring arcs")
		}
		for _, i := range arcs {
			add(i)
		}
	case "MultiLineString", "Polygon":
		var arcs [][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return eris.Wrapf(err, "topology: %s arcs", g.Type)
		}
		for _, part := range arcs {
			for _, i := range part {
				add(i)
			}
		}
	case "MultiPolygon":
		var arcs [][][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return eris.Wrap(err, "topology: multipolygon arcs")
		}
		for _, poly := range arcs {
			for _, part := range poly {
				for _, i := range part {
					add(i)
				}
			}
		}
	}
	return nil
}
