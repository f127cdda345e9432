package process

// AssignLevels computes the vertical rank of every item in the procedure
// and stores it on Item.Level. It also returns the computed levels keyed
// by item identifier.
//
// Levels are assigned with a longest-path topological traversal (Kahn's
// algorithm with max-relaxation): zero in-degree items start at level 0,
// and each successor is pushed to at least one below the deepest of its
// predecessors. For every edge u→v in the acyclic portion of the graph
// this guarantees level[v] > level[u].
//
// Only successor edges whose target is an item of the same procedure
// participate; cross-procedure references are connected in the emitted
// diagram but never leveled together.
//
// Items on a cycle never reach zero in-degree and keep their initial
// level 0, silently collapsing to the top rank. This is a recognized
// degradation of the format, not an error.
func AssignLevels(p *Procedure) map[string]int {
	adj := make(map[string][]string, len(p.items))
	inDegree := make(map[string]int, len(p.items))
	levels := make(map[string]int, len(p.items))

	for _, it := range p.items {
		adj[it.ID] = nil
		inDegree[it.ID] = 0
		levels[it.ID] = 0
	}
	for _, it := range p.items {
		for _, target := range it.Next {
			if _, ok := p.byID[target]; ok {
				adj[it.ID] = append(adj[it.ID], target)
				inDegree[target]++
			}
		}
	}

	queue := make([]string, 0, len(p.items))
	for _, it := range p.items {
		if inDegree[it.ID] == 0 {
			queue = append(queue, it.ID)
		}
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, v := range adj[u] {
			if lvl := levels[u] + 1; lvl > levels[v] {
				levels[v] = lvl
			}
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	for _, it := range p.items {
		it.Level = levels[it.ID]
	}
	return levels
}

// MaxLevel returns the deepest level across the procedure's items, or 0
// for an empty procedure. Call AssignLevels first.
func MaxLevel(p *Procedure) int {
	var max int
	for _, it := range p.items {
		if it.Level > max {
			max = it.Level
		}
	}
	return max
}
