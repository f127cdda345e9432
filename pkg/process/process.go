// Package process models sequenced business processes reconstructed from
// triple text: procedures (swimlane pools), items (process steps), their
// stakeholders (lanes), and successor relationships.
//
// The graph is built from triples in two explicit phases. The first phase
// establishes structure: procedure declarations, item ownership, and source
// text tooltips. The second phase applies relations: stakeholders and
// successors. Relational triples that name an item never established by a
// hasSequencedItem triple anywhere in the input are dropped silently. This
// keeps the permissive "best-effort" contract of the input format while
// removing the line-order sensitivity of a single-pass build.
//
// All collections preserve first-seen insertion order so that layout and
// color assignment downstream are deterministic for identical input.
package process

import (
	"slices"
	"strings"

	"github.com/laneflow/laneflow/pkg/triple"
)

// UnassignedStakeholder is the sentinel lane for items that never received
// a hasStakeholder triple. Stakeholder sets are never empty after Build.
const UnassignedStakeholder = "Unassigned"

// Item is one discrete process step inside a procedure.
type Item struct {
	// ID is the item identifier, unique across the whole graph,
	// conventionally "<procedure>:_<step name>".
	ID string

	// Stakeholders is the ordered set of responsible parties, in
	// first-seen order with duplicates suppressed. Never empty after
	// Build (falls back to UnassignedStakeholder).
	Stakeholders []string

	// Next lists successor item identifiers in input order. Duplicates
	// are kept; each occurrence becomes a distinct edge instance.
	Next []string

	// Level is the computed vertical rank. Populated by AssignLevels,
	// zero until then.
	Level int
}

// Shared reports whether the item belongs to more than one stakeholder,
// and therefore appears as multiple visual copies sharing one fill color.
func (it *Item) Shared() bool { return len(it.Stakeholders) > 1 }

// Label returns the display name for the item: the identifier with its
// procedure prefix stripped and underscores rendered as spaces.
func (it *Item) Label() string {
	name := it.ID
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, "_", " ")
}

// HasStakeholder reports whether sh is in the item's stakeholder set.
func (it *Item) HasStakeholder(sh string) bool {
	return slices.Contains(it.Stakeholders, sh)
}

// Procedure is a named grouping of sequenced items, rendered as one pool.
type Procedure struct {
	Name  string
	items []*Item
	byID  map[string]*Item
}

func newProcedure(name string) *Procedure {
	return &Procedure{Name: name, byID: make(map[string]*Item)}
}

// Label returns the pool display name (underscores rendered as spaces).
func (p *Procedure) Label() string { return strings.ReplaceAll(p.Name, "_", " ") }

// Items returns the procedure's items in first-seen order.
func (p *Procedure) Items() []*Item { return p.items }

// Item returns the item with the given identifier, or nil and false.
func (p *Procedure) Item(id string) (*Item, bool) {
	it, ok := p.byID[id]
	return it, ok
}

// ItemCount returns the number of items owned by the procedure.
func (p *Procedure) ItemCount() int { return len(p.items) }

func (p *Procedure) ensureItem(id string) *Item {
	if it, ok := p.byID[id]; ok {
		return it
	}
	it := &Item{ID: id}
	p.items = append(p.items, it)
	p.byID[id] = it
	return it
}

// Stakeholders returns the sorted set of distinct stakeholder names across
// all items of the procedure. This is the lane set, in lane order.
func (p *Procedure) Stakeholders() []string {
	var all []string
	for _, it := range p.items {
		for _, sh := range it.Stakeholders {
			if !slices.Contains(all, sh) {
				all = append(all, sh)
			}
		}
	}
	slices.Sort(all)
	return all
}

// Graph is the full multi-procedure process graph plus tooltip annotations.
// It is built once from triple input and read-only afterwards.
type Graph struct {
	procedures []*Procedure
	byName     map[string]*Procedure
	owner      map[string]string // item ID -> owning procedure name
	tooltips   map[string]string
}

// NewGraph returns an empty graph. Most callers should use Build instead.
func NewGraph() *Graph {
	return &Graph{
		byName:   make(map[string]*Procedure),
		owner:    make(map[string]string),
		tooltips: make(map[string]string),
	}
}

// Procedures returns all procedures in first-seen order, including empty
// ones. Layout skips procedures without items.
func (g *Graph) Procedures() []*Procedure { return g.procedures }

// Procedure returns the procedure with the given name, or nil and false.
func (g *Graph) Procedure(name string) (*Procedure, bool) {
	p, ok := g.byName[name]
	return p, ok
}

// Item resolves an item identifier anywhere in the graph.
func (g *Graph) Item(id string) (*Item, bool) {
	procName, ok := g.owner[id]
	if !ok {
		return nil, false
	}
	p, ok := g.byName[procName]
	if !ok {
		return nil, false
	}
	return p.Item(id)
}

// Owner returns the name of the procedure owning the item, or "" and false.
func (g *Graph) Owner(itemID string) (string, bool) {
	name, ok := g.owner[itemID]
	return name, ok
}

// Tooltip returns the source-text annotation recorded for an item or
// procedure identifier, or "" and false.
func (g *Graph) Tooltip(id string) (string, bool) {
	tip, ok := g.tooltips[id]
	return tip, ok
}

// ItemCount returns the total number of items across all procedures.
func (g *Graph) ItemCount() int {
	var n int
	for _, p := range g.procedures {
		n += len(p.items)
	}
	return n
}

// EdgeCount returns the total number of successor references, counting
// duplicates and references to unknown targets.
func (g *Graph) EdgeCount() int {
	var n int
	for _, p := range g.procedures {
		for _, it := range p.items {
			n += len(it.Next)
		}
	}
	return n
}

func (g *Graph) ensureProcedure(name string) *Procedure {
	if p, ok := g.byName[name]; ok {
		return p
	}
	p := newProcedure(name)
	g.procedures = append(g.procedures, p)
	g.byName[name] = p
	return p
}

// Build constructs a graph from parsed triples using the two-phase scheme
// described in the package comment. It never fails: unknown predicates,
// dangling references, and out-of-vocabulary objects degrade to dropped
// information.
func Build(triples []triple.Triple) *Graph {
	g := NewGraph()

	// Phase 1: structure (procedure declarations, item ownership, tooltips).
	for _, t := range triples {
		switch triple.NormalizePredicate(t.Predicate) {
		case triple.PredSourceText:
			g.tooltips[t.Subject] = t.Object
		case triple.PredType:
			if t.Object == triple.ObjectProcedure {
				g.ensureProcedure(t.Subject)
			}
		case triple.PredSequencedItem:
			p := g.ensureProcedure(t.Subject)
			p.ensureItem(t.Object)
			g.owner[t.Object] = t.Subject
		}
	}

	// Phase 2: relations against established items only.
	for _, t := range triples {
		switch triple.NormalizePredicate(t.Predicate) {
		case triple.PredStakeholder:
			if it, ok := g.Item(t.Subject); ok {
				if !it.HasStakeholder(t.Object) {
					it.Stakeholders = append(it.Stakeholders, t.Object)
				}
			}
		case triple.PredNext:
			if it, ok := g.Item(t.Subject); ok {
				it.Next = append(it.Next, t.Object)
			}
		}
	}

	// Finalize: no item renders without a lane.
	for _, p := range g.procedures {
		for _, it := range p.items {
			if len(it.Stakeholders) == 0 {
				it.Stakeholders = []string{UnassignedStakeholder}
			}
		}
	}

	return g
}

// BuildText parses raw triple text and builds the process graph.
func BuildText(raw string) *Graph {
	return Build(triple.Parse(raw))
}
