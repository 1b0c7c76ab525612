// Package svg builds an in-memory SVG element tree and serializes it as XML.
package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Namespace is the SVG XML namespace.
const Namespace = "http://www.w3.org/2000/svg"

// Element is one SVG node. Attributes keep insertion order; setting an existing
// attribute replaces its value in place.
type Element struct {
	Name     string
	attrs    []xml.Attr
	style    map[string]string
	text     string
	children []*Element
}

// New creates a detached element.
func New(name string) *Element {
	return &Element{Name: name}
}

// Document creates a root <svg> element of the given size.
func Document(width, height int) *Element {
	return New("svg").
		Attr("xmlns", Namespace).
		AttrInt("width", width).
		AttrInt("height", height)
}

// Append creates a child element and returns it.
func (e *Element) Append(name string) *Element {
	c := New(name)
	e.children = append(e.children, c)
	return c
}

// Attr sets an attribute and returns e for chaining.
func (e *Element) Attr(name, value string) *Element {
	for i := range e.attrs {
		if e.attrs[i].Name.Local == name {
			e.attrs[i].Value = value
			return e
		}
	}
	e.attrs = append(e.attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

// AttrInt sets an integer attribute.
func (e *Element) AttrInt(name string, v int) *Element {
	return e.Attr(name, Num(float64(v)))
}

// AttrFloat sets a numeric attribute formatted with Num.
func (e *Element) AttrFloat(name string, v float64) *Element {
	return e.Attr(name, Num(v))
}

// Style sets one inline style property.
func (e *Element) Style(prop, value string) *Element {
	if e.style == nil {
		e.style = make(map[string]string)
	}
	e.style[prop] = value
	return e
}

// SetText replaces the element's character data.
func (e *Element) SetText(s string) *Element {
	e.text = s
	return e
}

// Get returns an attribute value.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// StyleValue returns one inline style property.
func (e *Element) StyleValue(prop string) string {
	return e.style[prop]
}

// Text returns the element's character data.
func (e *Element) Text() string {
	return e.text
}

// Children returns the element's direct children.
func (e *Element) Children() []*Element {
	return e.children
}

// Find returns the first descendant (depth-first, including e) with the given id.
func (e *Element) Find(id string) *Element {
	if v, ok := e.Get("id"); ok && v == id {
		return e
	}
	for _, c := range e.children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// SelectAll returns every descendant (excluding e) with the given element name.
func (e *Element) SelectAll(name string) []*Element {
	var out []*Element
	for _, c := range e.children {
		if c.Name == name {
			out = append(out, c)
		}
		out = append(out, c.SelectAll(name)...)
	}
	return out
}

// WriteTo serializes the tree as XML.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	enc := xml.NewEncoder(cw)
	if err := e.encode(enc); err != nil {
		return cw.n, eris.Wrap(err, "svg: encode")
	}
	if err := enc.Flush(); err != nil {
		return cw.n, eris.Wrap(err, "svg: flush")
	}
	return cw.n, nil
}

// String serializes the tree, returning "" on error.
func (e *Element) String() string {
	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (e *Element) encode(enc *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}, Attr: e.attributes()}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.text != "" {
		if err := enc.EncodeToken(xml.CharData(e.text)); err != nil {
			return err
		}
	}
	for _, c := range e.children {
		if err := c.encode(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func (e *Element) attributes() []xml.Attr {
	attrs := make([]xml.Attr, len(e.attrs), len(e.attrs)+1)
	copy(attrs, e.attrs)
	if len(e.style) == 0 {
		return attrs
	}
	props := make([]string, 0, len(e.style))
	for p := range e.style {
		props = append(props, p)
	}
	sort.Strings(props)
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = p + ":" + e.style[p]
	}
	return append(attrs, xml.Attr{Name: xml.Name{Local: "style"}, Value: strings.Join(parts, ";")})
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
