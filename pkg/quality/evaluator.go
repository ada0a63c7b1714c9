// Package quality computes clustering quality metrics and draws seeded
// validation samples for human review. Degenerate partitions (one cluster,
// no edges, no companies) produce defined fallback values, never errors.
package quality

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/models"
	"github.com/marketscope/marketscope/pkg/partition"
	"github.com/marketscope/marketscope/pkg/simgraph"
)

var log = internal.GetLogger()

// maxSampleCompanies caps how many members of a sampled cluster are shown.
const maxSampleCompanies = 10

// Evaluator computes metrics and validation samples for one run.
type Evaluator struct {
	blockSize int
	nSamples  int
	seed      int64
}

func NewEvaluator(cfg *config.Config) *Evaluator {
	return &Evaluator{
		blockSize: cfg.Clustering.GraphBlockSize,
		nSamples:  cfg.Clustering.NSamples,
		seed:      cfg.Clustering.Seed,
	}
}

// Metrics summarizes the partition over the embeddings and graph.
func (e *Evaluator) Metrics(
	embeddings [][]float32,
	graph *simgraph.Graph,
	result *partition.Result,
) *models.RunMetrics {
	metrics := &models.RunMetrics{
		NumClusters:  result.NumClusters,
		Modularity:   result.Modularity,
		GraphDensity: graph.Density(),
		NumCompanies: len(embeddings),
		NumEdges:     graph.NumEdges(),
	}

	sizes := clusterSizes(result.Labels, result.NumClusters)
	if len(sizes) > 0 {
		metrics.ClusterSizeMin = sizes[0]
		metrics.ClusterSizeMax = sizes[0]
		total := 0
		for _, size := range sizes {
			total += size
			if size < metrics.ClusterSizeMin {
				metrics.ClusterSizeMin = size
			}
			if size > metrics.ClusterSizeMax {
				metrics.ClusterSizeMax = size
			}
		}
		metrics.ClusterSizeMean = float64(total) / float64(len(sizes))
	}

	metrics.IntraClusterDensity = intraClusterDensity(graph, result.Labels, sizes)
	metrics.SilhouetteScore = e.silhouette(embeddings, result.Labels, result.NumClusters)

	log.Infof(
		"Quality: silhouette %.4f, modularity %.4f, intra-cluster density %.4f",
		metrics.SilhouetteScore,
		metrics.Modularity,
		metrics.IntraClusterDensity,
	)

	return metrics
}

func clusterSizes(labels []int, numClusters int) []int {
	sizes := make([]int, numClusters)
	for _, label := range labels {
		sizes[label]++
	}
	return sizes
}

// intraClusterDensity is the fraction of within-cluster pairs that are
// connected in the graph. Clusters of size one contribute no pairs; when no
// cluster has two members the density is 0.
func intraClusterDensity(graph *simgraph.Graph, labels []int, sizes []int) float64 {
	var possible float64
	for _, size := range sizes {
		possible += float64(size) * float64(size-1) / 2
	}
	if possible == 0 {
		return 0
	}

	connected := 0
	for i := 0; i < graph.NumNodes(); i++ {
		for _, edge := range graph.Neighbors(i) {
			if edge.To > i && labels[i] == labels[edge.To] {
				connected++
			}
		}
	}

	return float64(connected) / possible
}

// silhouette averages the per-point silhouette coefficient. Distances are
// euclidean; rows are unit norm so d = sqrt(2 - 2*dot), evaluated in row
// blocks against the full matrix. Returns exactly 0.0 for fewer than two
// clusters or fewer than two points.
func (e *Evaluator) silhouette(embeddings [][]float32, labels []int, numClusters int) float64 {
	n := len(embeddings)
	if numClusters < 2 || n < 2 {
		return 0.0
	}

	dims := len(embeddings[0])
	data := make([]float64, 0, n*dims)
	for _, row := range embeddings {
		for _, v := range row {
			data = append(data, float64(v))
		}
	}
	full := mat.NewDense(n, dims, data)

	sizes := clusterSizes(labels, numClusters)
	sums := make([]float64, numClusters)

	var total float64
	for start := 0; start < n; start += e.blockSize {
		end := start + e.blockSize
		if end > n {
			end = n
		}

		block := full.Slice(start, end, 0, dims)
		sim := mat.NewDense(end-start, n, nil)
		sim.Mul(block, full.T())

		for bi := 0; bi < end-start; bi++ {
			i := start + bi
			if sizes[labels[i]] == 1 {
				continue // singleton points score 0
			}

			for c := range sums {
				sums[c] = 0
			}
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				d := 2 - 2*sim.At(bi, j)
				if d < 0 {
					d = 0
				}
				sums[labels[j]] += math.Sqrt(d)
			}

			own := labels[i]
			a := sums[own] / float64(sizes[own]-1)

			b := math.Inf(1)
			for c, sum := range sums {
				if c == own || sizes[c] == 0 {
					continue
				}
				if mean := sum / float64(sizes[c]); mean < b {
					b = mean
				}
			}

			if denom := math.Max(a, b); denom > 0 {
				total += (b - a) / denom
			}
		}
	}

	return total / float64(n)
}

// Samples draws up to nSamples clusters, uniformly at random from a source
// seeded by the run seed, and up to maxSampleCompanies members of each.
// Chosen cluster IDs and member indices are reported in ascending order.
func (e *Evaluator) Samples(
	companies []models.Company,
	labels []int,
	numClusters int,
) []models.ValidationSample {
	samples := make([]models.ValidationSample, 0, e.nSamples)
	if numClusters == 0 {
		return samples
	}

	members := make([][]int, numClusters)
	for i, label := range labels {
		members[label] = append(members[label], i)
	}

	rng := rand.New(rand.NewSource(uint64(e.seed)))

	chosen := make([]int, numClusters)
	for i := range chosen {
		chosen[i] = i
	}
	if numClusters > e.nSamples {
		rng.Shuffle(numClusters, func(i, j int) { chosen[i], chosen[j] = chosen[j], chosen[i] })
		chosen = chosen[:e.nSamples]
		sort.Ints(chosen)
	}

	for _, clusterID := range chosen {
		idxs := members[clusterID]
		if len(idxs) > maxSampleCompanies {
			shuffled := make([]int, len(idxs))
			copy(shuffled, idxs)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			idxs = shuffled[:maxSampleCompanies]
			sort.Ints(idxs)
		}

		sample := models.ValidationSample{
			ClusterID:   clusterID,
			ClusterSize: len(members[clusterID]),
			Companies:   make([]models.SampleCompany, 0, len(idxs)),
		}
		for _, idx := range idxs {
			company := companies[idx]
			sample.Companies = append(sample.Companies, models.SampleCompany{
				Name:        company.Name,
				Product:     company.Product,
				Customers:   company.Customers,
				Categories:  company.Categories,
				Description: company.Description,
			})
		}
		samples = append(samples, sample)
	}

	return samples
}
