// Package embeddings implements the embedding stage: product and customer
// texts are encoded separately, combined by the alpha weighting, and
// L2-normalized so that cosine similarity reduces to a dot product.
package embeddings

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/viterin/vek/vek32"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/models"
)

var log = internal.GetLogger()

// normEpsilon keeps all-zero rows finite during normalization.
const normEpsilon = 1e-8

// Generator produces one combined unit-norm vector per company.
type Generator struct {
	encoder   models.Encoder
	alpha     float32
	batchSize int
}

// NewGenerator returns a Generator using the given encoder. The encoder is
// an injected dependency; whoever constructs it owns caching and reuse.
func NewGenerator(cfg *config.Config, enc models.Encoder) *Generator {
	return &Generator{
		encoder:   enc,
		alpha:     float32(cfg.Clustering.Alpha),
		batchSize: cfg.Encoder.BatchSize,
	}
}

// Generate encodes the product and customer text slices, which must be of
// equal length, and returns the N×D matrix of combined unit-norm vectors.
// Rows whose raw embeddings are all zero stay zero rather than turning NaN.
func (g *Generator) Generate(ctx context.Context, products, customers []string) ([][]float32, error) {
	if len(products) != len(customers) {
		return nil, fmt.Errorf(
			"product and customer text counts differ: %d vs %d",
			len(products),
			len(customers),
		)
	}
	if len(products) == 0 {
		return [][]float32{}, nil
	}

	log.Infof("Embedding %d companies with model %s", len(products), g.encoder.ModelName())

	productVecs, err := g.encodeAll(ctx, products, "product")
	if err != nil {
		return nil, fmt.Errorf("encoding product texts failed: %w", err)
	}

	customerVecs, err := g.encodeAll(ctx, customers, "customer")
	if err != nil {
		return nil, fmt.Errorf("encoding customer texts failed: %w", err)
	}

	dims := len(productVecs[0])
	out := make([][]float32, len(products))
	for i := range out {
		if len(productVecs[i]) != dims || len(customerVecs[i]) != dims {
			return nil, fmt.Errorf("encoder returned inconsistent dimensions at row %d", i)
		}
		out[i] = combine(productVecs[i], customerVecs[i], g.alpha)
	}

	log.Debugf("Generated %d embeddings of dimension %d", len(out), dims)

	return out, nil
}

// encodeAll runs the encoder over texts in bounded batches.
func (g *Generator) encodeAll(ctx context.Context, texts []string, kind string) ([][]float32, error) {
	bar := progressbar.NewOptions(len(texts),
		progressbar.OptionSetDescription("Encoding "+kind+" texts"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := g.encoder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, models.NewEncoderError(
				fmt.Sprintf("encoder returned %d vectors for %d texts", len(vecs), end-start),
				nil,
			)
		}

		out = append(out, vecs...)
		_ = bar.Add(end - start)
	}
	_ = bar.Finish()

	return out, nil
}

// combine forms alpha*product + (1-alpha)*customer and L2-normalizes it.
func combine(product, customer []float32, alpha float32) []float32 {
	vec := vek32.MulNumber(product, alpha)
	vek32.Add_Inplace(vec, vek32.MulNumber(customer, 1-alpha))
	vek32.DivNumber_Inplace(vec, vek32.Norm(vec)+normEpsilon)
	return vec
}
