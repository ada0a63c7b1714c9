// Package pipeline orchestrates a clustering run: load and filter the input
// table, embed company texts, build the similarity graph, partition it into
// competitor clusters, score the result, and persist all artifacts. Stages
// run synchronously; the first failing stage aborts the run and nothing is
// written.
package pipeline

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/artifacts"
	"github.com/marketscope/marketscope/pkg/dataset"
	"github.com/marketscope/marketscope/pkg/embeddings"
	"github.com/marketscope/marketscope/pkg/encoder"
	"github.com/marketscope/marketscope/pkg/models"
	"github.com/marketscope/marketscope/pkg/partition"
	"github.com/marketscope/marketscope/pkg/quality"
	"github.com/marketscope/marketscope/pkg/simgraph"
)

var log = internal.GetLogger()

// Option customizes a Pipeline before it runs.
type Option func(*Pipeline)

// WithEncoder replaces the provider-built encoder, letting tests and dry
// runs supply their own vectors.
func WithEncoder(enc models.Encoder) Option {
	return func(p *Pipeline) {
		p.encoder = enc
	}
}

// Pipeline is the run orchestrator. Construct one per run with New.
type Pipeline struct {
	cfg     *config.Config
	encoder models.Encoder
}

func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes a completed run.
type Result struct {
	RunID     string
	Metrics   *models.RunMetrics
	OutputDir string
}

// Run executes the pipeline with the given config.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*Result, error) {
	return New(cfg, opts...).Run(ctx)
}

// Run executes every stage in order and writes artifacts only after all
// stages have succeeded.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	started := time.Now()
	log.Infof("Starting clustering run %s", runID)

	finish := stageTimer("load dataset")
	loaded, err := dataset.Load(p.cfg.Data.InputPath)
	if err != nil {
		return nil, models.NewPipelineError("load dataset stage failed", err)
	}
	finish()
	companies := loaded.Companies

	enc := p.encoder
	if enc == nil {
		enc, err = encoder.NewProvider(p.cfg).Get()
		if err != nil {
			return nil, models.NewPipelineError("encoder setup failed", err)
		}
	}

	products := make([]string, len(companies))
	customers := make([]string, len(companies))
	categories := make([][]string, len(companies))
	for i, company := range companies {
		products[i] = company.NormalizedProduct
		customers[i] = company.NormalizedCustomers
		categories[i] = company.CategoryList
	}

	finish = stageTimer("generate embeddings")
	vectors, err := embeddings.NewGenerator(p.cfg, enc).Generate(ctx, products, customers)
	if err != nil {
		return nil, models.NewPipelineError("embedding stage failed", err)
	}
	finish()

	finish = stageTimer("build similarity graph")
	graph, err := simgraph.NewBuilder(p.cfg).Build(ctx, vectors, categories)
	if err != nil {
		return nil, models.NewPipelineError("graph stage failed", err)
	}
	finish()

	finish = stageTimer("partition communities")
	clusters := partition.NewPartitioner(p.cfg).Partition(graph)
	finish()

	finish = stageTimer("compute quality metrics")
	evaluator := quality.NewEvaluator(p.cfg)
	metrics := evaluator.Metrics(vectors, graph, clusters)
	samples := evaluator.Samples(companies, clusters.Labels, clusters.NumClusters)
	finish()

	store := artifacts.NewStore(p.cfg)
	metadata := &models.RunMetadata{
		RunID:             runID,
		CreatedAt:         time.Now().UTC(),
		Version:           config.VersionString,
		Settings:          *p.cfg,
		RowsTotal:         loaded.RowsTotal,
		RowsKept:          loaded.RowsKept,
		RowsDropped:       loaded.RowsDropped,
		Metrics:           *metrics,
		ValidationSamples: samples,
	}

	finish = stageTimer("write artifacts")
	err = store.WriteAll(ctx, &artifacts.Run{
		Companies:  companies,
		Labels:     clusters.Labels,
		Embeddings: vectors,
		Graph:      graph,
		Metadata:   metadata,
	})
	if err != nil {
		return nil, models.NewPipelineError("artifact stage failed", err)
	}
	finish()

	log.Infof(
		"Run %s complete in %s: %s companies, %s edges, %s clusters (modularity %.4f, silhouette %.4f), artifacts in %s",
		runID,
		time.Since(started).Round(time.Millisecond),
		humanize.Comma(int64(len(companies))),
		humanize.Comma(int64(graph.NumEdges())),
		humanize.Comma(int64(clusters.NumClusters)),
		clusters.Modularity,
		metrics.SilhouetteScore,
		store.OutputDir(),
	)

	return &Result{
		RunID:     runID,
		Metrics:   metrics,
		OutputDir: store.OutputDir(),
	}, nil
}

func stageTimer(name string) func() {
	start := time.Now()
	log.Infof("Stage started: %s", name)
	return func() {
		log.Infof("Stage completed: %s (%s)", name, time.Since(start).Round(time.Millisecond))
	}
}
