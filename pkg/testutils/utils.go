// Package testutils provides shared helpers for package tests: a default
// test configuration, a stub encoder with hand-picked vectors, and the small
// fixture corpus used by the end-to-end pipeline tests.
package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jinzhu/copier"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/pkg/models"
)

// NewTestConfig returns a config with production defaults and the hash
// encoder provider, so tests never touch the network.
func NewTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Model.Name = "sentence-transformers/all-mpnet-base-v2"

	cfg.Clustering.K = 20
	cfg.Clustering.Tau = 0.55
	cfg.Clustering.Alpha = 0.6
	cfg.Clustering.Seed = 42
	cfg.Clustering.NSamples = 5
	cfg.Clustering.GraphBlockSize = 1024

	cfg.Encoder.Provider = "hash"
	cfg.Encoder.BatchSize = 32
	cfg.Encoder.Local.ServerURL = "http://localhost:5557"
	cfg.Encoder.Local.TimeoutSeconds = 60
	cfg.Encoder.OpenAI.Endpoint = "https://api.openai.com/v1"
	cfg.Encoder.OpenAI.MaxRequestTokens = 200000

	cfg.Data.InputPath = "data/companies.csv"
	cfg.Data.OutputDir = "output"

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"

	return cfg
}

// StubEncoder returns hand-picked vectors keyed by exact text. Unknown
// texts are an error so tests fail loudly on unexpected input.
type StubEncoder struct {
	model   string
	vectors map[string][]float32
}

func NewStubEncoder(model string, vectors map[string][]float32) *StubEncoder {
	return &StubEncoder{model: model, vectors: vectors}
}

func (e *StubEncoder) ModelName() string {
	return e.model
}

func (e *StubEncoder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := e.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no stub vector registered for %q", text)
		}
		out[i] = append([]float32(nil), vec...)
	}
	return out, nil
}

// CopyCompanies deep-copies a fixture slice so tests can mutate rows
// without corrupting shared fixtures.
func CopyCompanies(companies []models.Company) []models.Company {
	copied := make([]models.Company, 0, len(companies))
	if err := copier.Copy(&copied, &companies); err != nil {
		panic(err)
	}
	return copied
}

// FindProjectRoot returns the absolute path to the project root directory.
func FindProjectRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("could not get current file path")
	}

	dir := filepath.Dir(currentFilePath)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		if dir == filepath.Dir(dir) {
			return "", fmt.Errorf("project root not found")
		}

		dir = filepath.Dir(dir)
	}
}
