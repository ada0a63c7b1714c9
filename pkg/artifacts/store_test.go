package artifacts

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/pkg/models"
	"github.com/marketscope/marketscope/pkg/simgraph"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{}
	cfg.Data.OutputDir = t.TempDir()
	return NewStore(cfg)
}

func testRun() *Run {
	graph := simgraph.NewGraph(3)
	graph.AddEdge(0, 2, 0.72)
	graph.AddEdge(1, 2, 0.58)

	return &Run{
		Companies: []models.Company{
			{Name: "Acme", Product: "Widgets", Customers: "Factories", Categories: "Hardware"},
			{Name: "Globex", Product: "Gears", Customers: "Factories", Categories: "Hardware"},
			{Name: "Initech", Product: "Sprockets", Customers: "Factories", Categories: "Hardware", Description: "sprocket shop"},
		},
		Labels:     []int{0, 0, 1},
		Embeddings: [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 0.6, 0.8}},
		Graph:      graph,
		Metadata: &models.RunMetadata{
			RunID:       "7b5e1c2a-0000-4000-8000-000000000000",
			CreatedAt:   time.Now().UTC().Truncate(time.Second),
			Version:     "0.1.0-test",
			RowsTotal:   4,
			RowsKept:    3,
			RowsDropped: 1,
		},
	}
}

func TestWriteAllRoundTrip(t *testing.T) {
	store := testStore(t)
	run := testRun()

	require.NoError(t, store.WriteAll(context.Background(), run))

	for _, name := range []string{ClusteredCompaniesFile, EmbeddingsFile, AdjacencyFile, MetadataFile} {
		_, err := os.Stat(filepath.Join(store.OutputDir(), name))
		require.NoError(t, err, "missing artifact %s", name)
	}

	embeddings, err := ReadEmbeddings(filepath.Join(store.OutputDir(), EmbeddingsFile))
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	assert.Equal(t, run.Embeddings, embeddings)

	graph, err := ReadAdjacency(filepath.Join(store.OutputDir(), AdjacencyFile))
	require.NoError(t, err)
	assert.Equal(t, 3, graph.NumNodes())
	assert.Equal(t, 2, graph.NumEdges())
	weight, ok := graph.Weight(0, 2)
	require.True(t, ok)
	assert.InDelta(t, 0.72, weight, 1e-6)
	weight, ok = graph.Weight(2, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.58, weight, 1e-6)

	meta, err := ReadMetadata(filepath.Join(store.OutputDir(), MetadataFile))
	require.NoError(t, err)
	assert.Equal(t, run.Metadata.RunID, meta.RunID)
	assert.Equal(t, FormatVersion, meta.FormatVersion)
	assert.Equal(t, 3, meta.RowsKept)
	assert.Equal(t, map[string]string{
		"clustered_companies": ClusteredCompaniesFile,
		"embeddings":          EmbeddingsFile,
		"adjacency":           AdjacencyFile,
	}, meta.OutputFiles)

	leftovers, err := filepath.Glob(filepath.Join(store.OutputDir(), "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestClusteredCompaniesContent(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.WriteAll(context.Background(), testRun()))

	file, err := os.Open(filepath.Join(store.OutputDir(), ClusteredCompaniesFile))
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, clusteredHeader, records[0])
	assert.Equal(t, []string{"Acme", "Widgets", "Factories", "Hardware", "", "0"}, records[1])
	assert.Equal(t, []string{"Initech", "Sprockets", "Factories", "Hardware", "sprocket shop", "1"}, records[3])
}

func TestWriteAllOverwritesPreviousRun(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.WriteAll(context.Background(), testRun()))

	second := testRun()
	second.Labels = []int{0, 1, 2}
	second.Metadata.RunID = "11111111-0000-4000-8000-000000000000"
	require.NoError(t, store.WriteAll(context.Background(), second))

	meta, err := ReadMetadata(filepath.Join(store.OutputDir(), MetadataFile))
	require.NoError(t, err)
	assert.Equal(t, second.Metadata.RunID, meta.RunID)
}

func TestWriteAllLabelMismatch(t *testing.T) {
	store := testStore(t)
	run := testRun()
	run.Labels = []int{0}

	err := store.WriteAll(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counts differ")
}

func TestWriteAllEmptyRun(t *testing.T) {
	store := testStore(t)
	run := &Run{
		Companies:  nil,
		Labels:     nil,
		Embeddings: [][]float32{},
		Graph:      simgraph.NewGraph(0),
		Metadata:   &models.RunMetadata{RunID: "empty"},
	}

	require.NoError(t, store.WriteAll(context.Background(), run))

	embeddings, err := ReadEmbeddings(filepath.Join(store.OutputDir(), EmbeddingsFile))
	require.NoError(t, err)
	assert.Empty(t, embeddings)

	graph, err := ReadAdjacency(filepath.Join(store.OutputDir(), AdjacencyFile))
	require.NoError(t, err)
	assert.Zero(t, graph.NumNodes())
}

func TestWriteEmbeddingsRaggedRows(t *testing.T) {
	store := testStore(t)

	err := store.writeEmbeddings([][]float32{{1, 0}, {1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}
