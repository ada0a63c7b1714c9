// Package encoder provides the text-to-vector encoders behind the embedding
// stage: a client for a local embedding service, a client for
// OpenAI-compatible APIs, and a deterministic hash encoder for tests and dry
// runs. A Provider constructs them and keeps at most one live encoder per
// model identifier.
package encoder

import (
	"fmt"
	"sync"

	"github.com/marketscope/marketscope/config"
	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/models"
)

var log = internal.GetLogger()

const InvalidProviderError = "encoder provider is not set or is invalid"

// Provider builds encoders on demand and caches one instance per provider
// and model identifier. The cache is read-only after an encoder has been
// constructed, so callers may share a Provider freely.
type Provider struct {
	cfg *config.Config

	mu    sync.Mutex
	cache map[string]models.Encoder
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		cfg:   cfg,
		cache: make(map[string]models.Encoder),
	}
}

// Get returns the encoder for the configured provider and model, building it
// on first use. When encoder.cache_path is set, the returned encoder reads
// and writes a persistent embedding cache around the underlying client.
func (p *Provider) Get() (models.Encoder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := p.cfg.Encoder.Provider + "/" + p.cfg.Model.Name
	if enc, ok := p.cache[key]; ok {
		return enc, nil
	}

	enc, err := p.build()
	if err != nil {
		return nil, err
	}

	if path := p.cfg.Encoder.CachePath; path != "" {
		enc, err = NewCachedEncoder(enc, path)
		if err != nil {
			return nil, fmt.Errorf("opening embedding cache failed: %w", err)
		}
		log.Infof("Using persistent embedding cache at %s", path)
	}

	p.cache[key] = enc

	return enc, nil
}

func (p *Provider) build() (models.Encoder, error) {
	switch p.cfg.Encoder.Provider {
	case "local":
		return NewLocalEncoder(p.cfg), nil
	case "openai":
		return NewOpenAIEncoder(p.cfg)
	case "hash":
		return NewHashEncoder(p.cfg.Model.Name), nil
	default:
		return nil, models.NewEncoderError(InvalidProviderError, nil)
	}
}
