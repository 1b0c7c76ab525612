// Package geopath turns go-geom geometries into SVG path data.
package geopath

import (
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/choropleth/internal/svg"
)

// PointRadius is the radius of the circle drawn for point geometries.
const PointRadius = 4.5

// Path returns SVG path data for g under proj. Polygon rings are closed with Z and omit
// their repeated closing position. Unsupported or empty geometries produce "".
func Path(g geom.T, proj Projection) string {
	if g == nil {
		return ""
	}
	if proj == nil {
		proj = Identity{}
	}
	var b strings.Builder
	write(&b, g, proj)
	return b.String()
}

func write(b *strings.Builder, g geom.T, proj Projection) {
	switch t := g.(type) {
	case *geom.Point:
		if t.Empty() {
			return
		}
		point(b, t.FlatCoords(), proj)
	case *geom.MultiPoint:
		flat, stride := t.FlatCoords(), t.Stride()
		for i := 0; i+1 < len(flat); i += stride {
			point(b, flat[i:i+2], proj)
		}
	case *geom.LineString:
		line(b, t.FlatCoords(), t.Stride(), proj, false)
	case *geom.MultiLineString:
		for i := range t.NumLineStrings() {
			ls := t.LineString(i)
			line(b, ls.FlatCoords(), ls.Stride(), proj, false)
		}
	case *geom.LinearRing:
		line(b, t.FlatCoords(), t.Stride(), proj, true)
	case *geom.Polygon:
		polygon(b, t, proj)
	case *geom.MultiPolygon:
		for i := range t.NumPolygons() {
			polygon(b, t.Polygon(i), proj)
		}
	case *geom.GeometryCollection:
		for _, member := range t.Geoms() {
			write(b, member, proj)
		}
	}
}

func polygon(b *strings.Builder, p *geom.Polygon, proj Projection) {
	for i := range p.NumLinearRings() {
		r := p.LinearRing(i)
		line(b, r.FlatCoords(), r.Stride(), proj, true)
	}
}

func line(b *strings.Builder, flat []float64, stride int, proj Projection, closed bool) {
	n := len(flat) / stride
	if closed && n > 1 {
		n--
	}
	if n == 0 {
		return
	}
	for i := range n {
		x, y := proj.Project(flat[i*stride], flat[i*stride+1])
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(svg.Num(x))
		b.WriteByte(',')
		b.WriteString(svg.Num(y))
	}
	if closed {
		b.WriteByte('Z')
	}
}

func point(b *strings.Builder, c []float64, proj Projection) {
	x, y := proj.Project(c[0], c[1])
	r := svg.Num(PointRadius)
	d := svg.Num(2 * PointRadius)
	b.WriteString("M" + svg.Num(x) + "," + svg.Num(y))
	b.WriteString("m0," + r)
	b.WriteString("a" + r + "," + r + " 0 1,1 0,-" + d)
	b.WriteString("a" + r + "," + r + " 0 1,1 0," + d)
	b.WriteByte('z')
}
