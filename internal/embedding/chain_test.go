package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

// fakeEmbedder is a scriptable Embedder for chain tests.
type fakeEmbedder struct {
	name       string
	dimensions int
	failWith   error
	calls      int
	batchSizes []int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batchSizes = append(f.batchSizes, len(texts))
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, f.dimensions)
		vec[0] = float32(i + 1)
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dimensions }
func (f *fakeEmbedder) Name() string    { return f.name }
func (f *fakeEmbedder) Close() error    { return nil }

func TestChainQuotaFallbackIsSticky(t *testing.T) {
	primary := &fakeEmbedder{
		name:       "remote",
		dimensions: 8,
		failWith:   fmt.Errorf("remote: %w", ErrQuotaExceeded),
	}
	local := &fakeEmbedder{name: "local", dimensions: 4}
	chain := NewChain(primary, local, 100, zap.NewNop())

	vec, err := chain.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("expected local 4-dim vector, got %d", len(vec))
	}
	if !chain.Downgraded() {
		t.Error("chain should be downgraded after quota failure")
	}

	// Subsequent calls must not touch the primary again.
	primaryCalls := primary.calls
	if _, err := chain.Embed(context.Background(), "again"); err != nil {
		t.Fatalf("Embed after downgrade: %v", err)
	}
	if primary.calls != primaryCalls {
		t.Errorf("primary called %d more times after downgrade", primary.calls-primaryCalls)
	}
	if chain.Dimensions() != 4 {
		t.Errorf("Dimensions() = %d after downgrade, want 4", chain.Dimensions())
	}
	if chain.Name() != "local" {
		t.Errorf("Name() = %q after downgrade, want local", chain.Name())
	}
}

func TestChainFatalErrorPropagates(t *testing.T) {
	authErr := errors.New("invalid API key")
	primary := &fakeEmbedder{name: "remote", dimensions: 8, failWith: authErr}
	local := &fakeEmbedder{name: "local", dimensions: 4}
	chain := NewChain(primary, local, 100, zap.NewNop())

	_, err := chain.Embed(context.Background(), "hello")
	if !errors.Is(err, authErr) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if chain.Downgraded() {
		t.Error("chain must not downgrade on a non-transient error")
	}
	if local.calls != 0 {
		t.Errorf("local called %d times on fatal error", local.calls)
	}
}

func TestChainNilPrimaryUsesLocal(t *testing.T) {
	local := &fakeEmbedder{name: "local", dimensions: 4}
	chain := NewChain(nil, local, 100, zap.NewNop())

	vec, err := chain.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("expected 4-dim vector, got %d", len(vec))
	}
	if chain.Downgraded() {
		t.Error("chain with nil primary is not downgraded, it just has no remote")
	}
}

func TestChainBatchChunking(t *testing.T) {
	local := &fakeEmbedder{name: "local", dimensions: 4}
	chain := NewChain(nil, local, 3, zap.NewNop())

	texts := []string{"a", "b", "c", "d", "e", "f", "g"}
	vecs, err := chain.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("got %d vectors for %d texts", len(vecs), len(texts))
	}
	want := []int{3, 3, 1}
	if len(local.batchSizes) != len(want) {
		t.Fatalf("batch sizes %v, want %v", local.batchSizes, want)
	}
	for i, size := range want {
		if local.batchSizes[i] != size {
			t.Errorf("chunk %d has size %d, want %d", i, local.batchSizes[i], size)
		}
	}
	// First position of each chunk restarts the marker, proving order
	// follows chunk boundaries.
	if vecs[0][0] != 1 || vecs[3][0] != 1 || vecs[6][0] != 1 {
		t.Error("chunk boundaries not where expected")
	}
}

func TestChainBatchQuotaFallbackReembedsAll(t *testing.T) {
	primary := &fakeEmbedder{
		name:       "remote",
		dimensions: 8,
		failWith:   fmt.Errorf("remote: %w", ErrQuotaExceeded),
	}
	local := &fakeEmbedder{name: "local", dimensions: 4}
	chain := NewChain(primary, local, 2, zap.NewNop())

	vecs, err := chain.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	for i, vec := range vecs {
		if len(vec) != 4 {
			t.Errorf("vector %d has %d dims, want uniform 4 after fallback", i, len(vec))
		}
	}
}

func TestChainEmptyBatch(t *testing.T) {
	chain := NewChain(nil, &fakeEmbedder{name: "local", dimensions: 4}, 100, zap.NewNop())
	vecs, err := chain.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil): %v", err)
	}
	if len(vecs) != 0 {
		t.Errorf("expected no vectors, got %d", len(vecs))
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"quota", fmt.Errorf("openai: %w: limit hit", ErrQuotaExceeded), true},
		{"deadline", context.DeadlineExceeded, true},
		{"auth", errors.New("invalid API key"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
