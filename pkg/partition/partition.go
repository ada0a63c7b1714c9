// Package partition assigns companies to competitor clusters by running
// seeded Louvain community detection over the similarity graph.
package partition

import (
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/simgraph"
)

var log = internal.GetLogger()

// defaultResolution is the Louvain resolution parameter gamma.
const defaultResolution = 1.0

// Partitioner runs community detection with a fixed seed so repeated runs
// over the same graph produce the same clusters.
type Partitioner struct {
	seed int64
}

func NewPartitioner(cfg *config.Config) *Partitioner {
	return &Partitioner{seed: cfg.Clustering.Seed}
}

// Result holds the cluster assignment. Labels are dense: every value in
// 0..NumClusters-1 is used, and cluster IDs are ordered by each cluster's
// smallest member index so labeling does not depend on detection order.
type Result struct {
	Labels      []int
	NumClusters int
	Modularity  float64
}

// Partition clusters the graph's nodes. Nodes with no edges become
// singleton clusters.
func (p *Partitioner) Partition(g *simgraph.Graph) *Result {
	n := g.NumNodes()
	if n == 0 {
		return &Result{Labels: []int{}}
	}

	if g.NumEdges() == 0 {
		labels := make([]int, n)
		for i := range labels {
			labels[i] = i
		}
		log.Infof("Graph has no edges; %d companies form %d singleton clusters", n, n)
		return &Result{Labels: labels, NumClusters: n}
	}

	weighted := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < n; i++ {
		weighted.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		for _, e := range g.Neighbors(i) {
			if e.To > i {
				weighted.SetWeightedEdge(
					weighted.NewWeightedEdge(simple.Node(i), simple.Node(e.To), e.Weight),
				)
			}
		}
	}

	src := rand.NewSource(uint64(p.seed))
	reduced := community.Modularize(weighted, defaultResolution, src)
	communities := reduced.Communities()

	labels := canonicalLabels(communities, n)
	modularity := community.Q(weighted, communities, defaultResolution)

	result := &Result{
		Labels:      labels,
		NumClusters: len(communities),
		Modularity:  modularity,
	}

	log.Infof(
		"Partitioned %d companies into %d clusters (modularity %.4f)",
		n,
		result.NumClusters,
		result.Modularity,
	)
	logSizeDistribution(labels, result.NumClusters)

	return result
}

// logSizeDistribution reports min/max/mean cluster sizes and the largest
// clusters, the quickest sanity check that the partition is not one giant
// blob or all dust.
func logSizeDistribution(labels []int, numClusters int) {
	if numClusters == 0 {
		return
	}

	sizes := make([]int, numClusters)
	for _, label := range labels {
		sizes[label]++
	}

	sorted := make([]int, numClusters)
	copy(sorted, sizes)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	min, max, total := sorted[numClusters-1], sorted[0], 0
	for _, size := range sizes {
		total += size
	}

	top := sorted
	if len(top) > 5 {
		top = top[:5]
	}

	log.Infof(
		"Cluster sizes: min %d, max %d, mean %.1f; largest %v",
		min,
		max,
		float64(total)/float64(numClusters),
		top,
	)
}

// canonicalLabels orders communities by their smallest member and assigns
// labels in that order.
func canonicalLabels(communities [][]graph.Node, n int) []int {
	type member struct {
		min   int64
		nodes []graph.Node
	}

	members := make([]member, 0, len(communities))
	for _, comm := range communities {
		m := member{min: comm[0].ID(), nodes: comm}
		for _, node := range comm[1:] {
			if node.ID() < m.min {
				m.min = node.ID()
			}
		}
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].min < members[j].min })

	labels := make([]int, n)
	for label, m := range members {
		for _, node := range m.nodes {
			labels[node.ID()] = label
		}
	}

	return labels
}
