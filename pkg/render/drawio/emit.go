package drawio

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/laneflow/laneflow/pkg/layout"
	"github.com/laneflow/laneflow/pkg/process"
)

// Style strings for the emitted cells.
const (
	poolStyle = "swimlane;whiteSpace=wrap;html=1;childLayout=stackLayout;horizontal=1;" +
		"startSize=40;horizontalStack=1;stackSpacing=0;stackAnywhere=0;" +
		"collapsible=1;dropTarget=0;fontStyle=1;fontSize=14;" +
		"fillColor=#dae8fc;strokeColor=#6c8ebf;"

	laneStyle = "swimlane;html=1;startSize=30;container=1;collapsible=0;" +
		"dropTarget=0;fontStyle=1;fillColor=#f5f5f5;strokeColor=#666666;"

	nodeStyleFmt = "rounded=1;whiteSpace=wrap;html=1;fillColor=%s;" +
		"strokeColor=#333333;fontSize=11;arcSize=10;"

	edgeStyle = "edgeStyle=orthogonalEdgeStyle;rounded=1;orthogonalLoop=1;" +
		"jettySize=auto;html=1;strokeColor=#444444;curved=0;" +
		"exitX=0.5;exitY=1;exitDx=0;exitDy=0;" +
		"entryX=0.5;entryY=0;entryDx=0;entryDy=0;"

	// singleOwnerFill is the neutral fill for items with one stakeholder.
	singleOwnerFill = "#ffffff"
)

// multiColors is the fixed palette for multi-stakeholder node groups, one
// color per shared item, reused round-robin when exhausted. Light enough
// for dark text to stay readable.
var multiColors = []string{
	"#fff2cc", // yellow
	"#d5e8d4", // green
	"#ffe6cc", // orange
	"#e1d5e7", // purple
	"#dae8fc", // blue
	"#f8cecc", // red/pink
	"#fff9c4", // light yellow
	"#c8e6c9", // mint
	"#ffe0b2", // peach
	"#e8daef", // lavender
}

// idNamespace seeds the UUIDv5 identity of every emitted element, making
// documents byte-for-byte reproducible for identical input.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://laneflow.dev/drawio"))

func elementID(path string) string {
	return uuid.NewSHA1(idNamespace, []byte(path)).String()
}

// palette binds shared items to fill colors, first-seen, deterministically.
// It replaces the original's ambient counter with explicit state carried
// through one emission.
type palette struct {
	colors []string
	next   int
	byItem map[string]string
}

func newPalette() *palette {
	return &palette{colors: multiColors, byItem: make(map[string]string)}
}

func (p *palette) colorFor(itemID string) string {
	if c, ok := p.byItem[itemID]; ok {
		return c
	}
	c := p.colors[p.next%len(p.colors)]
	p.next++
	p.byItem[itemID] = c
	return c
}

// Emit renders the computed layout of a process graph as a draw.io XML
// document. The graph supplies item order (color binding, edge emission)
// and successor relations; the layout supplies all geometry.
func Emit(g *process.Graph, l layout.Layout) ([]byte, error) {
	doc := EmitDocument(g, l)
	return doc.Marshal()
}

// EmitDocument builds the document without serializing it, for callers
// that want to inspect or extend the cell list.
func EmitDocument(g *process.Graph, l layout.Layout) *Document {
	doc := NewDocument(elementID("page"), "Page-1")
	colors := newPalette()

	// nodeIDs maps item ID -> stakeholder -> element ID of the visual copy
	// in that stakeholder's lane, for the edge pass.
	nodeIDs := make(map[string]map[string]string)

	for _, pool := range l.Pools {
		emitPool(doc, g, pool, colors, nodeIDs)
	}
	emitEdges(doc, g, nodeIDs)

	return doc
}

func emitPool(doc *Document, g *process.Graph, pool layout.Pool, colors *palette, nodeIDs map[string]map[string]string) {
	poolID := elementID("pool/" + pool.Name)
	doc.Append(&Cell{
		ID:      poolID,
		Value:   pool.Label,
		Tooltip: pool.Tooltip,
		Style:   poolStyle,
		Parent:  "1",
		Vertex:  true,
		Geometry: &Geometry{
			X: pool.X, Y: pool.Y,
			Width: pool.Width, Height: pool.Height,
		},
	})

	laneIDs := make(map[string]string, len(pool.Lanes))
	for _, lane := range pool.Lanes {
		laneID := elementID("lane/" + pool.Name + "/" + lane.Stakeholder)
		laneIDs[lane.Stakeholder] = laneID
		doc.Append(&Cell{
			ID:     laneID,
			Value:  lane.Stakeholder,
			Style:  laneStyle,
			Parent: poolID,
			Vertex: true,
			Geometry: &Geometry{
				X: lane.X, Y: lane.Y,
				Width: lane.Width, Height: lane.Height,
			},
		})
	}

	// Bind shared-item colors in item order, so palette assignment follows
	// first-seen item order rather than lane order.
	if p, ok := g.Procedure(pool.Name); ok {
		for _, it := range p.Items() {
			if it.Shared() {
				colors.colorFor(it.ID)
			}
		}
	}

	for _, lane := range pool.Lanes {
		for _, n := range lane.Nodes {
			fill := singleOwnerFill
			if n.Shared {
				fill = colors.colorFor(n.ItemID)
			}

			// The pool name is part of the identity path: an item claimed
			// by two procedures has a visual copy in each pool, and the
			// copies must not collide.
			id := elementID("node/" + pool.Name + "/" + n.ItemID + "/" + n.Stakeholder)
			if nodeIDs[n.ItemID] == nil {
				nodeIDs[n.ItemID] = make(map[string]string)
			}
			nodeIDs[n.ItemID][n.Stakeholder] = id

			doc.Append(&Cell{
				ID:      id,
				Value:   n.Label,
				Tooltip: n.Tooltip,
				Style:   fmt.Sprintf(nodeStyleFmt, fill),
				Parent:  laneIDs[n.Stakeholder],
				Vertex:  true,
				// Slot centering divides the lane width, so node positions
				// are truncated to whole pixels. Pool and lane geometry is
				// exact and stays untouched.
				Geometry: &Geometry{
					X: math.Trunc(n.X), Y: math.Trunc(n.Y),
					Width: n.Width, Height: n.Height,
				},
			})
		}
	}
}

// emitEdges runs after every node copy has an identifier. Each successor
// reference fans out over the full Cartesian product of the source's and
// target's lane copies, so an item with 2 stakeholders pointing at one
// with 3 yields 6 edges. Duplicate successors yield distinct edge
// instances. References to unknown items are skipped.
func emitEdges(doc *Document, g *process.Graph, nodeIDs map[string]map[string]string) {
	seq := make(map[string]int)

	for _, p := range g.Procedures() {
		for _, it := range p.Items() {
			for _, targetID := range it.Next {
				target, ok := g.Item(targetID)
				if !ok {
					continue
				}
				if nodeIDs[it.ID] == nil || nodeIDs[target.ID] == nil {
					continue
				}

				for _, srcSh := range it.Stakeholders {
					srcID, ok := nodeIDs[it.ID][srcSh]
					if !ok {
						continue
					}
					for _, tgtSh := range target.Stakeholders {
						tgtID, ok := nodeIDs[target.ID][tgtSh]
						if !ok {
							continue
						}

						pairKey := srcID + "→" + tgtID
						n := seq[pairKey]
						seq[pairKey]++

						doc.Append(&Cell{
							ID:       elementID(fmt.Sprintf("edge/%s/%s/%d", srcID, tgtID, n)),
							Style:    edgeStyle,
							Parent:   "1",
							Edge:     true,
							Source:   srcID,
							Target:   tgtID,
							Geometry: &Geometry{Relative: true},
						})
					}
				}
			}
		}
	}
}
