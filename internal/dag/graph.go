package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type NodeID uint32

// Graph is a directed graph over dense node ids. An edge from -> to means
// "from requires to": to must be available before from can be defined.
type Graph struct {
	Edges [][]NodeID // Edges[from] = []to
}

// New returns a graph with n isolated nodes.
func New(n int) *Graph {
	return &Graph{Edges: make([][]NodeID, n)}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Edges)
}

// AddEdge records from -> to. Duplicate edges are dropped; self edges are kept
// so a self-referential node still forms its own cycle.
func (g *Graph) AddEdge(from, to NodeID) {
	g.check(from)
	g.check(to)
	if slices.Contains(g.Edges[from], to) {
		return
	}
	g.Edges[from] = append(g.Edges[from], to)
}

// Reachable marks every node reachable from roots, roots included.
func (g *Graph) Reachable(roots []NodeID) []bool {
	seen := make([]bool, len(g.Edges))
	work := make([]NodeID, 0, len(roots))
	for _, r := range roots {
		g.check(r)
		if !seen[r] {
			seen[r] = true
			work = append(work, r)
		}
	}
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		for _, to := range g.Edges[n] {
			if !seen[to] {
				seen[to] = true
				work = append(work, to)
			}
		}
	}
	return seen
}

func (g *Graph) check(n NodeID) {
	if int(n) >= len(g.Edges) {
		panic(fmt.Errorf("dag: node %d out of range (%d nodes)", n, len(g.Edges)))
	}
}

func toNodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}
