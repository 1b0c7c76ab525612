// Package topology decodes TopoJSON and converts its named objects into go-geom
// geometries and shared-boundary meshes.
package topology

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
)

// Topology is a decoded TopoJSON document. Arcs are absolute (dequantized) after Decode.
type Topology struct {
	Type      string               `json:"type"`
	BBox      []float64            `json:"bbox,omitempty"`
	Transform *Transform           `json:"transform,omitempty"`
	Objects   map[string]*Geometry `json:"objects"`
	Arcs      [][][]float64        `json:"arcs"`

	arcs [][][2]float64
}

// Transform is the quantization transform applied to delta-encoded arc positions.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Geometry is one TopoJSON geometry object. Arcs and Coordinates keep their raw shape
// because it depends on Type.
type Geometry struct {
	Type        string          `json:"type"`
	ID          json.RawMessage `json:"id,omitempty"`
	Properties  map[string]any  `json:"properties,omitempty"`
	Arcs        json.RawMessage `json:"arcs,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Geometries  []*Geometry     `json:"geometries,omitempty"`
}

// Decode reads a TopoJSON topology and resolves its arcs to absolute positions.
func Decode(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, eris.Wrap(err, "topology: decode")
	}
	if t.Type != "Topology" {
		return nil, eris.Errorf("topology: unexpected type %q", t.Type)
	}
	if t.Objects == nil {
		return nil, eris.New("topology: no objects")
	}

	t.arcs = make([][][2]float64, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([][2]float64, 0, len(arc))
		var x, y float64
		for j, p := range arc {
			if len(p) < 2 {
				return nil, eris.Errorf("topology: arc %d position %d has %d dimensions", i, j, len(p))
			}
			if t.Transform == nil {
				pts = append(pts, [2]float64{p[0], p[1]})
				continue
			}
			x += p[0]
			y += p[1]
			pts = append(pts, t.Transform.apply(x, y))
		}
		t.arcs[i] = pts
	}
	return &t, nil
}

func (tr *Transform) apply(x, y float64) [2]float64 {
	return [2]float64{
		x*tr.Scale[0] + tr.Translate[0],
		y*tr.Scale[1] + tr.Translate[1],
	}
}

// position dequantizes a raw point coordinate. Point coordinates are not delta-encoded.
func (t *Topology) position(p []float64) ([2]float64, error) {
	if len(p) < 2 {
		return [2]float64{}, eris.Errorf("topology: position has %d dimensions", len(p))
	}
	if t.Transform == nil {
		return [2]float64{p[0], p[1]}, nil
	}
	return t.Transform.apply(p[0], p[1]), nil
}

// arc returns the absolute positions of arc index i; negative indices (~i) are reversed.
func (t *Topology) arc(i int) ([][2]float64, error) {
	rev := i < 0
	if rev {
		i = ^i
	}
	if i >= len(t.arcs) {
		return nil, eris.Errorf("topology: arc index %d out of range (%d arcs)", i, len(t.arcs))
	}
	src := t.arcs[i]
	if !rev {
		return src, nil
	}
	out := make([][2]float64, len(src))
	for j := range src {
		out[j] = src[len(src)-1-j]
	}
	return out, nil
}

// Object returns the named top-level object.
func (t *Topology) Object(name string) (*Geometry, error) {
	obj, ok := t.Objects[name]
	if !ok || obj == nil {
		return nil, eris.Errorf("topology: object %q not found", name)
	}
	return obj, nil
}

// IntID parses the geometry id as an integer. Ids may be JSON numbers or numeric strings
// such as "01001". ok is false when the id is absent.
func (g *Geometry) IntID() (id int, ok bool, err error) {
	raw := bytes.TrimSpace(g.ID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, nil
	}

	var n json.Number
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false, eris.Wrap(err, "topology: decode id")
		}
		n = json.Number(s)
	} else if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false, eris.Wrap(err, "topology: decode id")
	}

	v, err := strconv.Atoi(n.String())
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int(f)) {
			return 0, false, eris.Errorf("topology: id %s is not an integer", string(raw))
		}
		v = int(f)
	}
	return v, true, nil
}
