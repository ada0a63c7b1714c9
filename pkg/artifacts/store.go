// Package artifacts writes and reads the output files of a pipeline run.
// Every file is written atomically: content goes to a temp file in the
// destination directory which is renamed into place, so readers never see a
// partial artifact. metadata.json is written strictly last and marks the
// run as complete.
package artifacts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/models"
	"github.com/marketscope/marketscope/pkg/simgraph"
)

var log = internal.GetLogger()

// Artifact file names within the output directory.
const (
	ClusteredCompaniesFile = "clustered_companies.csv"
	EmbeddingsFile         = "embeddings.f32bin"
	AdjacencyFile          = "adjacency.csrbin"
	MetadataFile           = "metadata.json"
)

// Run bundles everything one pipeline run persists.
type Run struct {
	Companies  []models.Company
	Labels     []int
	Embeddings [][]float32
	Graph      *simgraph.Graph
	Metadata   *models.RunMetadata
}

// Store writes run artifacts into a single output directory.
type Store struct {
	outputDir string
}

func NewStore(cfg *config.Config) *Store {
	return &Store{outputDir: cfg.Data.OutputDir}
}

// OutputDir returns the directory artifacts are written to.
func (s *Store) OutputDir() string {
	return s.outputDir
}

// WriteAll persists the run. The three data artifacts are written
// concurrently; metadata.json is written only after all of them have been
// renamed into place.
func (s *Store) WriteAll(ctx context.Context, run *Run) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.outputDir, err)
	}

	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.writeClusteredCompanies(run.Companies, run.Labels)
	})
	eg.Go(func() error {
		return s.writeEmbeddings(run.Embeddings)
	})
	eg.Go(func() error {
		return s.writeAdjacency(run.Graph)
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	run.Metadata.OutputFiles = map[string]string{
		"clustered_companies": ClusteredCompaniesFile,
		"embeddings":          EmbeddingsFile,
		"adjacency":           AdjacencyFile,
	}
	if err := s.writeMetadata(run.Metadata); err != nil {
		return err
	}

	log.Infof("Run artifacts written to %s", s.outputDir)

	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.outputDir, name)
}

// writeAtomic streams content into a temp file in the destination directory
// and renames it into place once fully flushed.
func writeAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	buffered := bufio.NewWriter(tmp)
	err = write(buffered)
	if err == nil {
		err = buffered.Flush()
	}
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to rename %s into place: %w", path, err)
	}

	return nil
}
