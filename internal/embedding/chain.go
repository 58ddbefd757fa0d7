package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Chain wraps a primary remote provider with a mandatory local fallback.
// When the primary fails transiently (quota, timeout, network), the chain
// downgrades to the local provider for the rest of the session rather
// than hammering an exhausted API on every request.
type Chain struct {
	mu         sync.RWMutex
	primary    Embedder // nil when no API key was configured
	local      Embedder
	downgraded bool
	batchSize  int
	logger     *zap.Logger
}

var _ Embedder = (*Chain)(nil)

// NewChain creates a provider chain. primary may be nil, in which case
// all requests go straight to the local provider.
func NewChain(primary, local Embedder, batchSize int, logger *zap.Logger) *Chain {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Chain{
		primary:   primary,
		local:     local,
		batchSize: batchSize,
		logger:    logger,
	}
}

// active returns the provider requests should currently use.
func (c *Chain) active() Embedder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.primary == nil || c.downgraded {
		return c.local
	}
	return c.primary
}

// downgrade switches the chain to the local provider permanently for
// this process. Returns false if already downgraded.
func (c *Chain) downgrade(cause error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.downgraded || c.primary == nil {
		return false
	}
	c.downgraded = true
	c.logger.Warn("embedding provider unavailable, falling back to local model",
		zap.String("provider", c.primary.Name()),
		zap.String("fallback", c.local.Name()),
		zap.Error(cause))
	return true
}

// Embed generates an embedding for a single text, falling back to the
// local provider on transient primary failures.
func (c *Chain) Embed(ctx context.Context, text string) ([]float32, error) {
	provider := c.active()
	vec, err := provider.Embed(ctx, text)
	if err == nil {
		return vec, nil
	}
	if provider != c.local && IsTransient(err) {
		c.downgrade(err)
		return c.local.Embed(ctx, text)
	}
	return nil, err
}

// EmbedBatch generates embeddings for texts in order, sending at most
// batchSize inputs per provider call. A transient failure mid-batch
// downgrades the chain and the remaining texts (including the failed
// chunk) are re-embedded locally from scratch, so the result is always
// dimensionally uniform.
func (c *Chain) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	provider := c.active()
	vecs, err := c.embedChunked(ctx, provider, texts)
	if err == nil {
		return vecs, nil
	}
	if provider != c.local && IsTransient(err) {
		c.downgrade(err)
		return c.embedChunked(ctx, c.local, texts)
	}
	return nil, err
}

func (c *Chain) embedChunked(ctx context.Context, provider Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := provider.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("%s: got %d embeddings for %d inputs", provider.Name(), len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Dimensions returns the dimensionality of the currently active provider.
// The value changes after a downgrade when the local model differs from
// the remote one.
func (c *Chain) Dimensions() int {
	return c.active().Dimensions()
}

// Name identifies the currently active provider.
func (c *Chain) Name() string {
	return c.active().Name()
}

// Downgraded reports whether the chain has fallen back to the local
// provider.
func (c *Chain) Downgraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.downgraded
}

// Close releases both providers.
func (c *Chain) Close() error {
	var firstErr error
	if c.primary != nil {
		if err := c.primary.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.local.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
