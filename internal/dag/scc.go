package dag

import "slices"

// Components partitions the graph into strongly connected components using
// Tarjan's algorithm. A component is emitted only after every component it
// has an edge to, so the result is in dependency-first order. Members of each
// component are sorted by node id.
func (g *Graph) Components() [][]NodeID {
	t := tarjan{
		g:       g,
		index:   make([]int, len(g.Edges)),
		low:     make([]int, len(g.Edges)),
		onStack: make([]bool, len(g.Edges)),
		next:    1,
	}
	for v := range g.Edges {
		if t.index[v] == 0 {
			t.visit(toNodeID(v))
		}
	}
	return t.out
}

type tarjan struct {
	g       *Graph
	index   []int // 0 = unvisited
	low     []int
	onStack []bool
	stack   []NodeID
	next    int
	out     [][]NodeID
}

func (t *tarjan) visit(v NodeID) {
	t.index[v] = t.next
	t.low[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.Edges[v] {
		switch {
		case t.index[w] == 0:
			t.visit(w)
			t.low[v] = min(t.low[v], t.low[w])
		case t.onStack[w]:
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] != t.index[v] {
		return
	}
	var comp []NodeID
	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[top] = false
		comp = append(comp, top)
		if top == v {
			break
		}
	}
	slices.Sort(comp)
	t.out = append(t.out, comp)
}

// Cyclic reports whether comp needs forward declarations: it has more than
// one member or its single member points at itself.
func (g *Graph) Cyclic(comp []NodeID) bool {
	if len(comp) > 1 {
		return true
	}
	if len(comp) == 1 {
		return slices.Contains(g.Edges[comp[0]], comp[0])
	}
	return false
}
