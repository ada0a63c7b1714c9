package simgraph

import (
	"context"
	"fmt"
	"math"

	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/mat"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/internal"
)

var log = internal.GetLogger()

const (
	// categoryFloor is the minimum Jaccard overlap accepted for an edge
	// unless the text similarity alone is strong enough.
	categoryFloor = 0.1
	// strongTextSim admits an edge regardless of category overlap.
	strongTextSim = 0.8
	// textWeight and categoryWeight blend the two signals into the
	// stored edge weight.
	textWeight     = 0.8
	categoryWeight = 0.2
)

// Builder constructs similarity graphs from embeddings and category lists.
type Builder struct {
	tau       float64
	blockSize int
}

func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		tau:       cfg.Clustering.Tau,
		blockSize: cfg.Clustering.GraphBlockSize,
	}
}

// Build computes pairwise cosine similarities in row blocks and returns the
// filtered graph. Embeddings must be unit norm so the dot product is the
// cosine. The block size bounds memory only; results are identical for any
// block size.
func (b *Builder) Build(ctx context.Context, embeddings [][]float32, categories [][]string) (*Graph, error) {
	n := len(embeddings)
	if n != len(categories) {
		return nil, fmt.Errorf(
			"embedding and category counts differ: %d vs %d",
			n,
			len(categories),
		)
	}

	graph := NewGraph(n)
	if n == 0 {
		return graph, nil
	}

	dims := len(embeddings[0])
	if dims == 0 {
		return nil, fmt.Errorf("embeddings have zero dimension")
	}

	data := make([]float64, 0, n*dims)
	for i, row := range embeddings {
		if len(row) != dims {
			return nil, fmt.Errorf("embedding row %d has dimension %d, want %d", i, len(row), dims)
		}
		for _, v := range row {
			data = append(data, float64(v))
		}
	}
	full := mat.NewDense(n, dims, data)

	sets := make([]map[string]struct{}, n)
	for i, cats := range categories {
		set := make(map[string]struct{}, len(cats))
		for _, c := range cats {
			set[c] = struct{}{}
		}
		sets[i] = set
	}

	log.Infof("Building similarity graph for %d companies (tau=%.2f, block=%d)", n, b.tau, b.blockSize)

	bar := progressbar.NewOptions(n,
		progressbar.OptionSetDescription("Scanning similarity blocks"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)

	for start := 0; start < n; start += b.blockSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + b.blockSize
		if end > n {
			end = n
		}

		block := full.Slice(start, end, 0, dims)
		sim := mat.NewDense(end-start, n, nil)
		sim.Mul(block, full.T())

		for bi := 0; bi < end-start; bi++ {
			i := start + bi
			for j := i + 1; j < n; j++ {
				textSim := sim.At(bi, j)
				if math.IsNaN(textSim) || math.IsInf(textSim, 0) {
					textSim = 0.0
				}
				if textSim > 1 {
					textSim = 1
				}
				if textSim < b.tau {
					continue
				}

				catSim := jaccard(sets[i], sets[j])
				if catSim < categoryFloor && textSim < strongTextSim {
					continue
				}

				weight := textWeight*textSim + categoryWeight*catSim
				if weight > 1 {
					weight = 1
				} else if weight < 0 {
					weight = 0
				}
				graph.AddEdge(i, j, weight)
			}
		}

		_ = bar.Add(end - start)
	}
	_ = bar.Finish()

	log.Infof("Similarity graph built: %d edges, density %.5f", graph.NumEdges(), graph.Density())

	return graph, nil
}

// jaccard returns the Jaccard overlap of two category sets. A company with
// no categories overlaps nothing, including itself.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection

	return float64(intersection) / float64(union)
}
