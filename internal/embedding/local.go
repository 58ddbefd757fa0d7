package embedding

import (
	"context"
	"hash/fnv"

	"github.com/skillsift/skillsift/pkg/utils"
)

// HashingEmbedder is the credential-free local fallback: a deterministic
// feature-hashing bag-of-words embedder. Each word and each adjacent word
// pair is hashed into a bucket of the output vector, which is then
// L2-normalized. Far weaker than a learned model, but it needs no network,
// no credentials, and no model file, and identical text always maps to an
// identical vector.
type HashingEmbedder struct {
	dimensions int
	cache      *Cache
}

var _ Embedder = (*HashingEmbedder)(nil)

// NewHashingEmbedder returns a hashing embedder with the given output
// dimension and cache capacity.
func NewHashingEmbedder(dimensions, cacheSize int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &HashingEmbedder{
		dimensions: dimensions,
		cache:      NewCache(cacheSize),
	}
}

// Embed returns the embedding for text. Empty text yields the zero vector.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	vec := make([]float32, e.dimensions)
	words := utils.SplitWords(text)
	for i, word := range words {
		vec[e.bucket(word)]++
		if i > 0 {
			vec[e.bucket(words[i-1]+" "+word)]++
		}
	}
	utils.NormalizeL2(vec)

	e.cache.Set(text, vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// Name identifies the provider in logs.
func (e *HashingEmbedder) Name() string {
	return "local-hash"
}

// Close is a no-op.
func (e *HashingEmbedder) Close() error {
	return nil
}

func (e *HashingEmbedder) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dimensions))
}
