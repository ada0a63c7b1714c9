package encoder

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"go.etcd.io/bbolt"

	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/models"
)

var bucketEmbeddings = []byte("embeddings")

// CachedEncoder wraps another encoder with a persistent on-disk cache keyed
// by model and text content, so repeated runs over overlapping datasets only
// pay for texts not seen before.
type CachedEncoder struct {
	inner models.Encoder
	db    *bbolt.DB
}

func NewCachedEncoder(inner models.Encoder, path string) (*CachedEncoder, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embeddings bucket: %w", err)
	}

	return &CachedEncoder{inner: inner, db: db}, nil
}

func (e *CachedEncoder) ModelName() string {
	return e.inner.ModelName()
}

// Close releases the cache database file.
func (e *CachedEncoder) Close() error {
	return e.db.Close()
}

func (e *CachedEncoder) cacheKey(text string) []byte {
	return []byte(internal.Hash256Hex(e.inner.ModelName() + "\x00" + text))
}

// EmbedTexts embeds the given texts, serving hits from the cache and
// delegating only misses to the wrapped encoder. Output order matches the
// input order.
func (e *CachedEncoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	var missIdx []int

	err := e.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for i, text := range texts {
			if v := b.Get(e.cacheKey(text)); v != nil {
				out[i] = bytesToVector(v)
			} else {
				missIdx = append(missIdx, i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(missIdx) == 0 {
		return out, nil
	}
	log.Debugf("embedding cache: %d hits, %d misses", len(texts)-len(missIdx), len(missIdx))

	missTexts := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
	}

	embeddings, err := e.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(missTexts) {
		return nil, models.NewEncoderError(
			fmt.Sprintf(
				"encoder returned %d vectors for %d texts",
				len(embeddings),
				len(missTexts),
			),
			nil,
		)
	}

	err = e.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for j, i := range missIdx {
			out[i] = embeddings[j]
			if err := b.Put(e.cacheKey(texts[i]), vectorToBytes(embeddings[j])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func vectorToBytes(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func bytesToVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
