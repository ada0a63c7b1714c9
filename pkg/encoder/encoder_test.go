package encoder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketscope/marketscope/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Model: config.ModelConfig{Name: "test-model"},
		Encoder: config.EncoderConfig{
			Provider:  "hash",
			BatchSize: 32,
			Local: config.LocalEncoderConfig{
				ServerURL:      "http://localhost:5557",
				TimeoutSeconds: 5,
			},
			OpenAI: config.OpenAIEncoderConfig{
				Endpoint:         "https://api.openai.com/v1",
				MaxRequestTokens: 200000,
			},
		},
	}
}

func TestProviderCachesEncoderPerModel(t *testing.T) {
	provider := NewProvider(testConfig())

	first, err := provider.Get()
	require.NoError(t, err)
	second, err := provider.Get()
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestProviderInvalidProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Encoder.Provider = "bogus"
	provider := NewProvider(cfg)

	_, err := provider.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestProviderWrapsWithCache(t *testing.T) {
	cfg := testConfig()
	cfg.Encoder.CachePath = filepath.Join(t.TempDir(), "embeddings.db")
	provider := NewProvider(cfg)

	enc, err := provider.Get()
	require.NoError(t, err)

	cached, ok := enc.(*CachedEncoder)
	require.True(t, ok)
	defer cached.Close()

	assert.Equal(t, "test-model", cached.ModelName())
}

func TestHashEncoderDeterministic(t *testing.T) {
	enc := NewHashEncoder("test-model")
	ctx := context.Background()

	texts := []string{"smart home automation platform", "online freelance marketplace platform"}

	first, err := enc.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	second, err := enc.EmbedTexts(ctx, texts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	assert.Len(t, first[0], HashEncoderDimensions)
}

func TestHashEncoderSharedWordsOverlap(t *testing.T) {
	enc := NewHashEncoder("test-model")
	ctx := context.Background()

	vecs, err := enc.EmbedTexts(ctx, []string{
		"smart home platform",
		"freelance marketplace platform",
	})
	require.NoError(t, err)

	dot := func(a, b []float32) float32 {
		var sum float32
		for i := range a {
			sum += a[i] * b[i]
		}
		return sum
	}

	// "platform" is shared, so the two vectors land on a common bucket
	assert.Greater(t, dot(vecs[0], vecs[1]), float32(0))
}

func TestHashEncoderEmptyText(t *testing.T) {
	enc := NewHashEncoder("test-model")

	vecs, err := enc.EmbedTexts(context.Background(), []string{""})
	require.NoError(t, err)
	require.Len(t, vecs, 1)

	for _, v := range vecs[0] {
		assert.Zero(t, v)
	}
}
