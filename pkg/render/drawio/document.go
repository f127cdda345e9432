// Package drawio emits laid-out process graphs as draw.io (diagrams.net)
// mxGraph XML documents: one swimlane pool per procedure, nested stakeholder
// lanes, positioned node copies, and orthogonal flow edges.
//
// Cells are appended in definition-before-reference order (pools, then
// lanes, then nodes, then edges), so every parent, source, and target
// identifier resolves to an element defined earlier in the document.
package drawio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

// Canvas defaults for the mxGraphModel declaration (A4 page, 10px grid).
const (
	docHost    = "app.diagrams.net"
	docVersion = "29.3.4"
	pageWidth  = 827
	pageHeight = 1169
)

// Geometry is the mxGeometry child of a cell. Edges carry a relative
// geometry with no coordinates.
type Geometry struct {
	X, Y          float64
	Width, Height float64
	Relative      bool
}

// Cell is one diagram element: a pool, lane, node, or edge. Cells with a
// tooltip marshal as an <object> wrapper carrying the label and tooltip
// around a value-less mxCell; plain cells marshal as a single mxCell with
// a value attribute.
type Cell struct {
	ID       string
	Value    string
	Tooltip  string
	Style    string
	Parent   string
	Vertex   bool
	Edge     bool
	Source   string
	Target   string
	Geometry *Geometry
}

// Document is a complete mxfile with a single diagram page.
type Document struct {
	DiagramID string
	PageName  string
	cells     []*Cell
}

// NewDocument creates an empty document. The two root cells required by
// the mxGraph model (id "0" and its child "1") are implicit and written
// during marshaling; appended cells should use "1" as their top parent.
func NewDocument(diagramID, pageName string) *Document {
	return &Document{DiagramID: diagramID, PageName: pageName}
}

// Append adds a cell to the document in definition order.
func (d *Document) Append(c *Cell) { d.cells = append(d.cells, c) }

// Cells returns the appended cells in document order.
func (d *Document) Cells() []*Cell { return d.cells }

// Marshal serializes the document as indented XML with a declaration.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := d.encode(enc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (d *Document) encode(enc *xml.Encoder) error {
	mxfile := start("mxfile", attr("host", docHost), attr("version", docVersion))
	if err := enc.EncodeToken(mxfile); err != nil {
		return err
	}

	diagram := start("diagram", attr("id", d.DiagramID), attr("name", d.PageName))
	if err := enc.EncodeToken(diagram); err != nil {
		return err
	}

	model := start("mxGraphModel",
		attr("dx", "1477"), attr("dy", "806"),
		attr("grid", "1"), attr("gridSize", "10"), attr("guides", "1"),
		attr("tooltips", "1"), attr("connect", "1"), attr("arrows", "1"),
		attr("fold", "1"), attr("page", "1"), attr("pageScale", "1"),
		attr("pageWidth", strconv.Itoa(pageWidth)),
		attr("pageHeight", strconv.Itoa(pageHeight)))
	if err := enc.EncodeToken(model); err != nil {
		return err
	}

	root := start("root")
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	// Implicit mxGraph root cells.
	if err := encodeEmpty(enc, start("mxCell", attr("id", "0"))); err != nil {
		return err
	}
	if err := encodeEmpty(enc, start("mxCell", attr("id", "1"), attr("parent", "0"))); err != nil {
		return err
	}

	for _, c := range d.cells {
		if err := c.encode(enc); err != nil {
			return err
		}
	}

	for _, name := range []string{"root", "mxGraphModel", "diagram", "mxfile"} {
		if err := enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cell) encode(enc *xml.Encoder) error {
	wrapped := c.Tooltip != ""

	if wrapped {
		obj := start("object",
			attr("label", c.Value),
			attr("tooltip", c.Tooltip),
			attr("id", c.ID))
		if err := enc.EncodeToken(obj); err != nil {
			return err
		}
	}

	attrs := make([]xml.Attr, 0, 8)
	if !wrapped {
		attrs = append(attrs, attr("id", c.ID))
		if c.Value != "" || c.Vertex {
			attrs = append(attrs, attr("value", c.Value))
		}
	}
	if c.Style != "" {
		attrs = append(attrs, attr("style", c.Style))
	}
	if c.Vertex {
		attrs = append(attrs, attr("vertex", "1"))
	}
	if c.Edge {
		attrs = append(attrs, attr("edge", "1"))
	}
	if c.Parent != "" {
		attrs = append(attrs, attr("parent", c.Parent))
	}
	if c.Source != "" {
		attrs = append(attrs, attr("source", c.Source))
	}
	if c.Target != "" {
		attrs = append(attrs, attr("target", c.Target))
	}

	cell := start("mxCell", attrs...)
	if err := enc.EncodeToken(cell); err != nil {
		return err
	}
	if c.Geometry != nil {
		if err := c.Geometry.encode(enc); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(xml.EndElement{Name: cell.Name}); err != nil {
		return err
	}

	if wrapped {
		return enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "object"}})
	}
	return nil
}

func (g *Geometry) encode(enc *xml.Encoder) error {
	var attrs []xml.Attr
	if g.Relative {
		attrs = append(attrs, attr("relative", "1"))
	} else {
		attrs = append(attrs,
			attr("x", fmtNum(g.X)),
			attr("y", fmtNum(g.Y)),
			attr("width", fmtNum(g.Width)),
			attr("height", fmtNum(g.Height)))
	}
	attrs = append(attrs, attr("as", "geometry"))
	return encodeEmpty(enc, start("mxGeometry", attrs...))
}

func start(name string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func encodeEmpty(enc *xml.Encoder, el xml.StartElement) error {
	if err := enc.EncodeToken(el); err != nil {
		return err
	}
	return enc.EncodeToken(xml.EndElement{Name: el.Name})
}

// fmtNum formats a coordinate without a trailing ".0" for whole values.
func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
