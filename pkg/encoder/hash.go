package encoder

import (
	"context"
	"hash/fnv"
	"strings"
)

// HashEncoderDimensions is the fixed output width of the hash encoder.
const HashEncoderDimensions = 384

// HashEncoder is a deterministic in-process encoder for tests and dry runs.
// Each word is hashed into a bucket, so texts sharing words land on shared
// buckets and cosine structure roughly tracks token overlap. It needs no
// network and always produces the same vectors for the same input.
type HashEncoder struct {
	model string
}

func NewHashEncoder(model string) *HashEncoder {
	return &HashEncoder{model: model}
}

func (e *HashEncoder) ModelName() string {
	return e.model
}

// EmbedTexts embeds the given texts
func (e *HashEncoder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, HashEncoderDimensions)
		for _, word := range strings.Fields(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(word))
			vec[h.Sum32()%uint32(HashEncoderDimensions)]++
		}
		out[i] = vec
	}

	return out, nil
}
