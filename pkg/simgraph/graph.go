// Package simgraph builds the sparse company similarity graph. Similarity is
// computed in row blocks over the embedding matrix, filtered against the text
// and category thresholds, and stored symmetrically with no self loops.
package simgraph

// Edge is one directed adjacency entry. Every undirected edge appears twice,
// once in each endpoint's neighbor list.
type Edge struct {
	To     int
	Weight float64
}

// Graph is a sparse undirected weighted graph over company indices 0..N-1.
type Graph struct {
	adjacency [][]Edge
	numEdges  int
}

// NewGraph returns an empty graph over n nodes.
func NewGraph(n int) *Graph {
	return &Graph{adjacency: make([][]Edge, n)}
}

// AddEdge inserts both directed entries for an undirected edge. Callers are
// expected to pass i < j exactly once per pair.
func (g *Graph) AddEdge(i, j int, weight float64) {
	g.adjacency[i] = append(g.adjacency[i], Edge{To: j, Weight: weight})
	g.adjacency[j] = append(g.adjacency[j], Edge{To: i, Weight: weight})
	g.numEdges++
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.adjacency)
}

// NumEdges returns the undirected edge count.
func (g *Graph) NumEdges() int {
	return g.numEdges
}

// Degree returns the neighbor count of node i.
func (g *Graph) Degree(i int) int {
	return len(g.adjacency[i])
}

// Neighbors returns node i's adjacency list. The slice is owned by the graph
// and must not be modified.
func (g *Graph) Neighbors(i int) []Edge {
	return g.adjacency[i]
}

// Weight returns the edge weight between i and j, or 0 if no edge exists.
func (g *Graph) Weight(i, j int) (float64, bool) {
	for _, e := range g.adjacency[i] {
		if e.To == j {
			return e.Weight, true
		}
	}
	return 0, false
}

// Density returns the fraction of possible undirected edges present. Graphs
// with fewer than two nodes have density 0.
func (g *Graph) Density() float64 {
	n := g.NumNodes()
	if n < 2 {
		return 0
	}
	possible := float64(n) * float64(n-1) / 2
	return float64(g.numEdges) / possible
}
