package models

import (
	"context"
)

// Encoder turns a batch of strings into fixed-dimension vectors. The same
// encoder instance is reused for both product and customer texts within a
// run, so the output dimension is constant for the lifetime of the instance.
type Encoder interface {
	// EmbedTexts embeds the given texts
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// ModelName returns the model identifier this encoder was built for
	ModelName() string
}
