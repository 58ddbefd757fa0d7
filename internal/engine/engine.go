// Package engine ties catalog, embeddings, vector search and reranking
// together behind a single Recommend operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skillsift/skillsift/internal/catalog"
	"github.com/skillsift/skillsift/internal/config"
	"github.com/skillsift/skillsift/internal/embedding"
	"github.com/skillsift/skillsift/internal/models"
	"github.com/skillsift/skillsift/internal/rerank"
	"github.com/skillsift/skillsift/internal/vector"
)

// Engine serves assessment recommendations. Construction is cheap;
// the index is loaded or built on the first call that needs it, so a
// failed initialization surfaces on a request and the next request
// retries it.
type Engine struct {
	cfg      *config.Config
	embedder embedding.Embedder
	reranker rerank.Reranker
	store    StoreOpener
	logger   *zap.Logger

	initMu sync.Mutex
	ready  bool

	stateMu sync.RWMutex
	index   *vector.FlatIndex
	items   []models.Assessment
	byID    map[string]models.Assessment
	builtAt time.Time
}

// StoreOpener abstracts the persisted metadata store for tests.
type StoreOpener interface {
	Replace(ctx context.Context, items []models.Assessment) error
	List(ctx context.Context) ([]models.Assessment, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Status is a point-in-time snapshot for the status endpoint.
type Status struct {
	Ready          bool      `json:"ready"`
	IndexSize      int       `json:"index_size"`
	Dimensions     int       `json:"dimensions"`
	Provider       string    `json:"provider"`
	Reranker       string    `json:"reranker"`
	BuiltAt        time.Time `json:"built_at,omitempty"`
	CatalogPath    string    `json:"catalog_path"`
	EmbedderDowngr bool      `json:"provider_downgraded"`
}

// New creates an engine. No I/O happens until Initialize or the first
// Recommend call.
func New(cfg *config.Config, embedder embedding.Embedder, reranker rerank.Reranker, store StoreOpener, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		embedder: embedder,
		reranker: reranker,
		store:    store,
		logger:   logger,
		byID:     make(map[string]models.Assessment),
	}
}

// Initialize loads the persisted index or rebuilds it from the catalog.
// Safe to call concurrently; only the first caller does the work, and a
// failure leaves the engine uninitialized so later calls retry.
func (e *Engine) Initialize(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.ready {
		return nil
	}

	if err := e.loadOrBuild(ctx); err != nil {
		return err
	}
	e.ready = true
	return nil
}

// loadOrBuild tries the persisted artifacts first and falls back to a
// full rebuild when they are absent, corrupt, or dimensionally stale.
func (e *Engine) loadOrBuild(ctx context.Context) error {
	err := e.loadPersisted(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		e.logger.Info("no persisted index, building from catalog")
	} else if errors.Is(err, vector.ErrIndexCorrupt) || errors.Is(err, vector.ErrDimensionMismatch) {
		e.logger.Warn("persisted index unusable, rebuilding", zap.Error(err))
	} else {
		return err
	}
	return e.rebuild(ctx)
}

// loadPersisted restores the vector index and its parallel metadata.
// The two artifacts must agree on entry count; disagreement means one
// was written without the other and the pair is treated as corrupt.
func (e *Engine) loadPersisted(ctx context.Context) error {
	idx, err := vector.NewFlatIndex(e.embedder.Dimensions())
	if err != nil {
		return err
	}
	if err := idx.Load(e.cfg.Storage.IndexPath); err != nil {
		return err
	}

	items, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}
	if len(items) != idx.Size() {
		return fmt.Errorf("%w: index has %d entries, metadata has %d",
			vector.ErrIndexCorrupt, idx.Size(), len(items))
	}

	e.setState(idx, items)
	e.logger.Info("loaded persisted index",
		zap.Int("entries", idx.Size()),
		zap.Int("dimensions", idx.Dimensions()))
	return nil
}

// Rebuild re-reads the catalog, re-embeds every entry, and atomically
// swaps in the new index. Exposed for the reindex endpoint and the
// catalog watcher.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if err := e.rebuild(ctx); err != nil {
		return err
	}
	e.ready = true
	return nil
}

func (e *Engine) rebuild(ctx context.Context) error {
	items, err := catalog.Load(e.cfg.Storage.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	dims := e.embedder.Dimensions()
	entries := make([]vector.Entry, 0, len(items))
	if len(items) > 0 {
		texts := make([]string, len(items))
		for i := range items {
			texts[i] = items[i].IndexText()
		}
		vecs, err := e.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed catalog: %w", err)
		}
		if len(vecs) != len(items) {
			return fmt.Errorf("embed catalog: got %d vectors for %d items", len(vecs), len(items))
		}
		// The provider may have downgraded mid-build; trust the vectors.
		dims = len(vecs[0])
		for i := range items {
			entries = append(entries, vector.Entry{ID: items[i].ID, Vector: vecs[i]})
		}
	}

	idx, err := vector.NewFlatIndex(dims)
	if err != nil {
		return err
	}
	if err := idx.Build(entries); err != nil {
		return err
	}

	if err := idx.Save(e.cfg.Storage.IndexPath); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	if err := e.store.Replace(ctx, items); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	e.setState(idx, items)
	e.logger.Info("index built",
		zap.Int("entries", len(items)),
		zap.Int("dimensions", dims))
	return nil
}

func (e *Engine) setState(idx *vector.FlatIndex, items []models.Assessment) {
	byID := make(map[string]models.Assessment, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	e.stateMu.Lock()
	e.index = idx
	e.items = items
	e.byID = byID
	e.builtAt = time.Now()
	e.stateMu.Unlock()
}

// Recommend returns the top assessments for a query. The candidate set
// is over-fetched when reranking is active so the LLM has room to
// promote items the vector stage underrated.
func (e *Engine) Recommend(ctx context.Context, req *models.RecommendRequest) (*models.RecommendResponse, error) {
	if err := req.Validate(e.cfg.Recommend.DefaultTopK, e.cfg.Recommend.MaxTopK); err != nil {
		return nil, err
	}
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	e.stateMu.RLock()
	idx := e.index
	size := idx.Size()
	e.stateMu.RUnlock()

	if size == 0 {
		return &models.RecommendResponse{
			Recommendations: []models.Recommendation{},
			Query:           req.Query,
			Count:           0,
		}, nil
	}

	queryVec, err := e.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embedding.ErrUnavailable, err)
	}

	// A mid-session provider downgrade can change dimensionality out
	// from under the index; re-embed the catalog with the new provider.
	if len(queryVec) != idx.Dimensions() {
		e.logger.Warn("embedding dimensions changed, rebuilding index",
			zap.Int("index", idx.Dimensions()),
			zap.Int("query", len(queryVec)))
		if err := e.Rebuild(ctx); err != nil {
			return nil, err
		}
		e.stateMu.RLock()
		idx = e.index
		e.stateMu.RUnlock()
	}

	_, isNoop := e.reranker.(rerank.NoopReranker)
	candidateK := req.TopK
	if !isNoop {
		multiplier := e.cfg.Rerank.CandidateMultiplier
		if multiplier < 1 {
			multiplier = 1
		}
		candidateK = req.TopK * multiplier
	}

	results, err := idx.Search(ctx, queryVec, candidateK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	candidates := make([]models.Assessment, 0, len(results))
	e.stateMu.RLock()
	for _, res := range results {
		if item, ok := e.byID[res.ID]; ok {
			candidates = append(candidates, item)
		}
	}
	e.stateMu.RUnlock()

	if !isNoop && len(candidates) > 1 {
		order, err := e.reranker.Rerank(ctx, req.Query, candidates)
		if err != nil {
			return nil, fmt.Errorf("rerank: %w", err)
		}
		reordered := make([]models.Assessment, 0, len(candidates))
		for _, pos := range order {
			reordered = append(reordered, candidates[pos])
		}
		candidates = reordered
	}

	if len(candidates) > req.TopK {
		candidates = candidates[:req.TopK]
	}

	recs := make([]models.Recommendation, len(candidates))
	for i, c := range candidates {
		recs[i] = models.NewRecommendation(c)
	}
	return &models.RecommendResponse{
		Recommendations: recs,
		Query:           req.Query,
		Count:           len(recs),
	}, nil
}

// Status reports the engine's current state for the status endpoint.
func (e *Engine) Status() Status {
	e.initMu.Lock()
	ready := e.ready
	e.initMu.Unlock()

	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	st := Status{
		Ready:       ready,
		Provider:    e.embedder.Name(),
		Reranker:    e.reranker.Name(),
		CatalogPath: e.cfg.Storage.CatalogPath,
	}
	if chain, ok := e.embedder.(*embedding.Chain); ok {
		st.EmbedderDowngr = chain.Downgraded()
	}
	if e.index != nil {
		st.IndexSize = e.index.Size()
		st.Dimensions = e.index.Dimensions()
		st.BuiltAt = e.builtAt
	}
	return st
}

// Close releases the embedder and the metadata store.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.embedder.Close(); err != nil {
		firstErr = err
	}
	if err := e.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
