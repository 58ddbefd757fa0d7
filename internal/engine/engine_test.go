package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/skillsift/skillsift/internal/config"
	"github.com/skillsift/skillsift/internal/embedding"
	"github.com/skillsift/skillsift/internal/models"
	"github.com/skillsift/skillsift/internal/rerank"
	"github.com/skillsift/skillsift/internal/vector"
)

const testCatalog = `[
  {
    "id": "a1",
    "name": "Python Programming Test",
    "description": "Assesses Python coding skills for developers",
    "type": "Knowledge & Skills",
    "url": "https://example.com/python"
  },
  {
    "id": "a2",
    "name": "Teamwork Styles Questionnaire",
    "description": "Measures collaboration and interpersonal style",
    "type": "Personality & Behavior",
    "url": "https://example.com/teamwork"
  }
]`

// memStore is an in-memory StoreOpener for tests.
type memStore struct {
	mu    sync.Mutex
	items []models.Assessment
}

func (m *memStore) Replace(_ context.Context, items []models.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]models.Assessment(nil), items...)
	return nil
}

func (m *memStore) List(_ context.Context) ([]models.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Assessment(nil), m.items...), nil
}

func (m *memStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

func (m *memStore) Close() error { return nil }

// countingEmbedder counts batch calls to observe rebuilds.
type countingEmbedder struct {
	embedding.Embedder
	mu         sync.Mutex
	batchCalls int
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.batchCalls++
	c.mu.Unlock()
	return c.Embedder.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) batches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batchCalls
}

func testConfig(t *testing.T, catalogJSON string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(catalogPath, []byte(catalogJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.CatalogPath = catalogPath
	cfg.Storage.IndexPath = filepath.Join(dir, "catalog.index")
	cfg.Storage.MetadataPath = filepath.Join(dir, "catalog.db")
	return cfg
}

func newTestEngine(t *testing.T, catalogJSON string) (*Engine, *memStore) {
	t.Helper()
	cfg := testConfig(t, catalogJSON)
	store := &memStore{}
	e := New(cfg, embedding.NewHashingEmbedder(64, 100), rerank.NoopReranker{}, store, zap.NewNop())
	return e, store
}

func TestRecommendReturnsCatalogItems(t *testing.T) {
	e, _ := newTestEngine(t, testCatalog)

	resp, err := e.Recommend(context.Background(), &models.RecommendRequest{
		Query: "Python developer who works well in teams",
		TopK:  2,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Count != 2 || len(resp.Recommendations) != 2 {
		t.Fatalf("Count = %d, len = %d, want 2", resp.Count, len(resp.Recommendations))
	}
	names := map[string]bool{}
	for _, rec := range resp.Recommendations {
		names[rec.AssessmentName] = true
		if rec.AssessmentURL == "" {
			t.Errorf("recommendation %q missing URL", rec.AssessmentName)
		}
	}
	if !names["Python Programming Test"] || !names["Teamwork Styles Questionnaire"] {
		t.Errorf("unexpected recommendation set: %v", names)
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	e, _ := newTestEngine(t, `[]`)

	resp, err := e.Recommend(context.Background(), &models.RecommendRequest{Query: "anything", TopK: 5})
	if err != nil {
		t.Fatalf("Recommend on empty catalog: %v", err)
	}
	if resp.Count != 0 || len(resp.Recommendations) != 0 {
		t.Errorf("expected empty result, got %+v", resp)
	}
}

func TestRecommendRejectsInvalidRequest(t *testing.T) {
	e, _ := newTestEngine(t, testCatalog)

	_, err := e.Recommend(context.Background(), &models.RecommendRequest{Query: "   ", TopK: 5})
	if !errors.Is(err, models.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}

	_, err = e.Recommend(context.Background(), &models.RecommendRequest{Query: "ok", TopK: -1})
	if !errors.Is(err, models.ErrInvalidTopK) {
		t.Errorf("expected ErrInvalidTopK, got %v", err)
	}
}

func TestInitializeLoadsPersistedIndex(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	store := &memStore{}
	emb := &countingEmbedder{Embedder: embedding.NewHashingEmbedder(64, 100)}

	first := New(cfg, emb, rerank.NoopReranker{}, store, zap.NewNop())
	if err := first.Initialize(context.Background()); err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	buildsAfterFirst := emb.batches()
	if buildsAfterFirst == 0 {
		t.Fatal("first Initialize should have embedded the catalog")
	}

	// A fresh engine over the same artifacts must load, not rebuild.
	second := New(cfg, emb, rerank.NoopReranker{}, store, zap.NewNop())
	if err := second.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if emb.batches() != buildsAfterFirst {
		t.Error("second Initialize rebuilt instead of loading the persisted index")
	}
	if second.Status().IndexSize != 2 {
		t.Errorf("IndexSize = %d, want 2", second.Status().IndexSize)
	}
}

func TestInitializeRebuildsOnDimensionChange(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	store := &memStore{}

	first := New(cfg, embedding.NewHashingEmbedder(64, 100), rerank.NoopReranker{}, store, zap.NewNop())
	if err := first.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Same artifacts, different provider dimensionality.
	second := New(cfg, embedding.NewHashingEmbedder(128, 100), rerank.NoopReranker{}, store, zap.NewNop())
	if err := second.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize with new dimensions: %v", err)
	}
	if got := second.Status().Dimensions; got != 128 {
		t.Errorf("Dimensions = %d after rebuild, want 128", got)
	}
}

func TestInitializeRebuildsOnMetadataMismatch(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	store := &memStore{}

	first := New(cfg, embedding.NewHashingEmbedder(64, 100), rerank.NoopReranker{}, store, zap.NewNop())
	if err := first.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Drop the metadata out from under the index file.
	store.items = store.items[:1]

	second := New(cfg, embedding.NewHashingEmbedder(64, 100), rerank.NoopReranker{}, store, zap.NewNop())
	if err := second.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize after mismatch: %v", err)
	}
	if got := second.Status().IndexSize; got != 2 {
		t.Errorf("IndexSize = %d after rebuild, want 2", got)
	}
	if n, _ := store.Count(context.Background()); n != 2 {
		t.Errorf("store count = %d after rebuild, want 2", n)
	}
}

func TestInitializeRebuildsOnCorruptIndexFile(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	if err := os.WriteFile(cfg.Storage.IndexPath, []byte{0x01, 0x02, 0x03}, 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(cfg, embedding.NewHashingEmbedder(64, 100), rerank.NoopReranker{}, &memStore{}, zap.NewNop())
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize with corrupt index file: %v", err)
	}
	if got := e.Status().IndexSize; got != 2 {
		t.Errorf("IndexSize = %d, want 2", got)
	}
}

func TestInitializeConcurrentSingleBuild(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	emb := &countingEmbedder{Embedder: embedding.NewHashingEmbedder(64, 100)}
	e := New(cfg, emb, rerank.NoopReranker{}, &memStore{}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.Initialize(context.Background()); err != nil {
				t.Errorf("Initialize: %v", err)
			}
		}()
	}
	wg.Wait()

	if emb.batches() != 1 {
		t.Errorf("catalog embedded %d times, want 1", emb.batches())
	}
}

func TestInitializeFailsOnMissingCatalog(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	if err := os.Remove(cfg.Storage.CatalogPath); err != nil {
		t.Fatal(err)
	}

	e := New(cfg, embedding.NewHashingEmbedder(64, 100), rerank.NoopReranker{}, &memStore{}, zap.NewNop())
	if err := e.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize should fail when the catalog file is missing")
	}

	// Failure must be retryable: restore the catalog and try again.
	if err := os.WriteFile(cfg.Storage.CatalogPath, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize retry: %v", err)
	}
}

// quotaEmbedder simulates a remote provider whose quota is exhausted.
type quotaEmbedder struct {
	dims  int
	calls int
}

func (q *quotaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	_, err := q.EmbedBatch(ctx, []string{text})
	return nil, err
}

func (q *quotaEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	q.calls++
	return nil, fmt.Errorf("remote: %w", embedding.ErrQuotaExceeded)
}

func (q *quotaEmbedder) Dimensions() int { return q.dims }
func (q *quotaEmbedder) Name() string    { return "remote" }
func (q *quotaEmbedder) Close() error    { return nil }

func TestRecommendSurvivesQuotaFallback(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	primary := &quotaEmbedder{dims: 1536}
	chain := embedding.NewChain(primary, embedding.NewHashingEmbedder(64, 100), 100, zap.NewNop())

	e := New(cfg, chain, rerank.NoopReranker{}, &memStore{}, zap.NewNop())
	resp, err := e.Recommend(context.Background(), &models.RecommendRequest{
		Query: "python developer",
		TopK:  2,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("Count = %d, want 2", resp.Count)
	}
	if !chain.Downgraded() {
		t.Error("chain should be downgraded after the quota failure")
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want exactly 1", primary.calls)
	}
	if got := e.Status().Dimensions; got != 64 {
		t.Errorf("Dimensions = %d, want local provider's 64", got)
	}
}

// switchableEmbedder swaps its backing embedder mid-session, modelling a
// provider downgrade that changes output dimensionality.
type switchableEmbedder struct {
	mu      sync.Mutex
	current embedding.Embedder
}

func (s *switchableEmbedder) swap(e embedding.Embedder) {
	s.mu.Lock()
	s.current = e
	s.mu.Unlock()
}

func (s *switchableEmbedder) active() embedding.Embedder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *switchableEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.active().Embed(ctx, text)
}

func (s *switchableEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.active().EmbedBatch(ctx, texts)
}

func (s *switchableEmbedder) Dimensions() int { return s.active().Dimensions() }
func (s *switchableEmbedder) Name() string    { return s.active().Name() }
func (s *switchableEmbedder) Close() error    { return s.active().Close() }

func TestRecommendRebuildsOnMidSessionDimensionChange(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	emb := &switchableEmbedder{current: embedding.NewHashingEmbedder(128, 100)}
	e := New(cfg, emb, rerank.NoopReranker{}, &memStore{}, zap.NewNop())

	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := e.Status().Dimensions; got != 128 {
		t.Fatalf("Dimensions = %d before downgrade, want 128", got)
	}

	emb.swap(embedding.NewHashingEmbedder(64, 100))

	resp, err := e.Recommend(context.Background(), &models.RecommendRequest{Query: "teamwork", TopK: 2})
	if err != nil {
		t.Fatalf("Recommend after dimension change: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("Count = %d, want 2", resp.Count)
	}
	if got := e.Status().Dimensions; got != 64 {
		t.Errorf("Dimensions = %d after rebuild, want 64", got)
	}
}

// fixedReranker reverses candidate order so reranking is observable.
type fixedReranker struct{}

func (fixedReranker) Rerank(_ context.Context, _ string, candidates []models.Assessment) ([]int, error) {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = len(candidates) - 1 - i
	}
	return order, nil
}

func (fixedReranker) Name() string { return "fixed" }

func TestRecommendAppliesRerankOrder(t *testing.T) {
	cfg := testConfig(t, testCatalog)
	cfg.Rerank.CandidateMultiplier = 2
	store := &memStore{}

	plain := New(cfg, embedding.NewHashingEmbedder(64, 100), rerank.NoopReranker{}, store, zap.NewNop())
	base, err := plain.Recommend(context.Background(), &models.RecommendRequest{Query: "python coding", TopK: 2})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	reranked := New(cfg, embedding.NewHashingEmbedder(64, 100), fixedReranker{}, store, zap.NewNop())
	flipped, err := reranked.Recommend(context.Background(), &models.RecommendRequest{Query: "python coding", TopK: 2})
	if err != nil {
		t.Fatalf("Recommend with reranker: %v", err)
	}

	if base.Recommendations[0].AssessmentName == flipped.Recommendations[0].AssessmentName {
		t.Error("reranker order was not applied")
	}
}

func TestStatusBeforeInitialize(t *testing.T) {
	e, _ := newTestEngine(t, testCatalog)
	st := e.Status()
	if st.Ready {
		t.Error("engine should not be ready before Initialize")
	}
	if st.IndexSize != 0 {
		t.Errorf("IndexSize = %d before Initialize, want 0", st.IndexSize)
	}
}

func TestLoadPersistedErrorClassification(t *testing.T) {
	// Dimension header mismatch surfaces as ErrDimensionMismatch from the
	// index loader; the engine treats it as a rebuild trigger.
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.index")

	idx, err := vector.NewFlatIndex(8)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Build([]vector.Entry{{ID: "x", Vector: make([]float32, 8)}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	other, err := vector.NewFlatIndex(16)
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Load(path); !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
