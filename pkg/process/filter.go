package process

import "slices"

// Filter returns a new graph containing only the named procedures, in the
// receiver's procedure order. Successor references into removed
// procedures become dangling and are skipped at emission, matching the
// treatment of any other unknown target. An empty name list returns the
// receiver unchanged.
func (g *Graph) Filter(names []string) *Graph {
	if len(names) == 0 {
		return g
	}

	out := NewGraph()
	for _, p := range g.procedures {
		if !slices.Contains(names, p.Name) {
			continue
		}
		np := out.ensureProcedure(p.Name)
		for _, it := range p.items {
			nit := np.ensureItem(it.ID)
			nit.Stakeholders = slices.Clone(it.Stakeholders)
			nit.Next = slices.Clone(it.Next)
			nit.Level = it.Level
			out.owner[it.ID] = p.Name
		}
	}
	for id, tip := range g.tooltips {
		out.tooltips[id] = tip
	}
	return out
}
