package simgraph

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketscope/marketscope/config"
)

func builderConfig(tau float64, blockSize int) *config.Config {
	cfg := &config.Config{}
	cfg.Clustering.Tau = tau
	cfg.Clustering.GraphBlockSize = blockSize
	return cfg
}

// angled returns the 2D unit vector at the given angle, so the cosine
// similarity between two of them is exactly the cosine of the angle between
// them.
func angled(theta float64) []float32 {
	return []float32{float32(math.Cos(theta)), float32(math.Sin(theta))}
}

func TestBuildStrongTextBypassesCategories(t *testing.T) {
	embeddings := [][]float32{
		{1, 0},
		{0.9, 0.43588989}, // dot with row 0 is 0.9
	}
	categories := [][]string{{"fintech"}, {"logistics"}}

	graph, err := NewBuilder(builderConfig(0.55, 1024)).Build(context.Background(), embeddings, categories)
	require.NoError(t, err)

	require.Equal(t, 1, graph.NumEdges())
	weight, ok := graph.Weight(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.72, weight, 1e-6) // 0.8*0.9 + 0.2*0
}

func TestBuildModerateTextNeedsCategoryOverlap(t *testing.T) {
	embeddings := [][]float32{
		{1, 0},
		{0.6, 0.8}, // dot with row 0 is 0.6
	}

	graph, err := NewBuilder(builderConfig(0.55, 1024)).Build(
		context.Background(), embeddings, [][]string{{"fintech"}, {"logistics"}},
	)
	require.NoError(t, err)
	assert.Zero(t, graph.NumEdges())

	graph, err = NewBuilder(builderConfig(0.55, 1024)).Build(
		context.Background(), embeddings, [][]string{{"fintech"}, {"fintech"}},
	)
	require.NoError(t, err)
	require.Equal(t, 1, graph.NumEdges())
	weight, ok := graph.Weight(1, 0)
	require.True(t, ok)
	assert.InDelta(t, 0.68, weight, 1e-6) // 0.8*0.6 + 0.2*1
}

func TestBuildCategoryFloorBoundary(t *testing.T) {
	embeddings := [][]float32{
		{1, 0},
		{0.6, 0.8},
	}
	// Jaccard is exactly 0.1: one shared category out of ten distinct.
	categories := [][]string{
		{"a", "b", "c", "d", "e", "shared"},
		{"shared", "f", "g", "h", "i"},
	}

	graph, err := NewBuilder(builderConfig(0.55, 1024)).Build(context.Background(), embeddings, categories)
	require.NoError(t, err)

	require.Equal(t, 1, graph.NumEdges())
	weight, ok := graph.Weight(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.50, weight, 1e-6) // 0.8*0.6 + 0.2*0.1
}

func TestBuildTauIsInclusive(t *testing.T) {
	embeddings := [][]float32{
		{1, 0},
		{0.55, 0.83516466}, // dot with row 0 is 0.55
	}
	categories := [][]string{{"retail"}, {"retail"}}

	graph, err := NewBuilder(builderConfig(0.55, 1024)).Build(context.Background(), embeddings, categories)
	require.NoError(t, err)

	require.Equal(t, 1, graph.NumEdges())
	weight, ok := graph.Weight(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.64, weight, 1e-6)
}

func TestBuildSymmetricNoSelfLoops(t *testing.T) {
	embeddings := make([][]float32, 6)
	categories := make([][]string, 6)
	for i := range embeddings {
		embeddings[i] = angled(float64(i) * 0.25)
		if i%2 == 0 {
			categories[i] = []string{"even", "all"}
		} else {
			categories[i] = []string{"odd", "all"}
		}
	}

	graph, err := NewBuilder(builderConfig(0.55, 1024)).Build(context.Background(), embeddings, categories)
	require.NoError(t, err)
	require.Positive(t, graph.NumEdges())

	directed := 0
	for i := 0; i < graph.NumNodes(); i++ {
		for _, e := range graph.Neighbors(i) {
			assert.NotEqual(t, i, e.To, "self loop at node %d", i)
			assert.GreaterOrEqual(t, e.Weight, 0.0)
			assert.LessOrEqual(t, e.Weight, 1.0)

			back, ok := graph.Weight(e.To, i)
			require.True(t, ok, "edge %d->%d has no mirror", i, e.To)
			assert.Equal(t, e.Weight, back)
			directed++
		}
	}
	assert.Equal(t, 2*graph.NumEdges(), directed)
}

func edgeSet(t *testing.T, graph *Graph) map[[2]int]float64 {
	t.Helper()
	set := make(map[[2]int]float64)
	for i := 0; i < graph.NumNodes(); i++ {
		for _, e := range graph.Neighbors(i) {
			if i < e.To {
				set[[2]int{i, e.To}] = e.Weight
			}
		}
	}
	return set
}

func TestBuildBlockSizeDoesNotChangeResults(t *testing.T) {
	embeddings := make([][]float32, 9)
	categories := make([][]string, 9)
	for i := range embeddings {
		embeddings[i] = angled(float64(i) * 0.2)
		if i%2 == 0 {
			categories[i] = []string{"even", "all"}
		} else {
			categories[i] = []string{"odd", "all"}
		}
	}

	var reference map[[2]int]float64
	for _, blockSize := range []int{1, 3, 64} {
		graph, err := NewBuilder(builderConfig(0.55, blockSize)).Build(
			context.Background(), embeddings, categories,
		)
		require.NoError(t, err)

		set := edgeSet(t, graph)
		if reference == nil {
			reference = set
			require.NotEmpty(t, reference)
			continue
		}

		require.Len(t, set, len(reference), "block size %d changed edge count", blockSize)
		for pair, weight := range reference {
			got, ok := set[pair]
			require.True(t, ok, "block size %d dropped edge %v", blockSize, pair)
			assert.InDelta(t, weight, got, 1e-12)
		}
	}
}

func TestBuildTrivialInputs(t *testing.T) {
	builder := NewBuilder(builderConfig(0.55, 1024))

	graph, err := builder.Build(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, graph.NumNodes())
	assert.Zero(t, graph.NumEdges())
	assert.Zero(t, graph.Density())

	graph, err = builder.Build(context.Background(), [][]float32{{1, 0}}, [][]string{{"solo"}})
	require.NoError(t, err)
	assert.Equal(t, 1, graph.NumNodes())
	assert.Zero(t, graph.NumEdges())
	assert.Zero(t, graph.Density())
}

func TestBuildLengthMismatch(t *testing.T) {
	_, err := NewBuilder(builderConfig(0.55, 1024)).Build(
		context.Background(), [][]float32{{1, 0}, {0, 1}}, [][]string{{"a"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counts differ")
}

func TestJaccard(t *testing.T) {
	set := func(items ...string) map[string]struct{} {
		m := make(map[string]struct{}, len(items))
		for _, it := range items {
			m[it] = struct{}{}
		}
		return m
	}

	assert.Zero(t, jaccard(set(), set()))
	assert.Zero(t, jaccard(set("a"), set()))
	assert.Zero(t, jaccard(set("a"), set("b")))
	assert.Equal(t, 1.0, jaccard(set("a", "b"), set("a", "b")))
	assert.InDelta(t, 1.0/3.0, jaccard(set("a", "b"), set("b", "c")), 1e-12)
}
