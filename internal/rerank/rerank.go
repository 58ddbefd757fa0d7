// Package rerank reorders vector-search candidates using an LLM judgment
// pass. Reranking is strictly best-effort: any LLM failure degrades to the
// incoming vector order instead of failing the request.
package rerank

import (
	"context"

	"go.uber.org/zap"

	"github.com/skillsift/skillsift/internal/models"
)

// Reranker reorders candidates by relevance to the query. The returned
// slice is a permutation of 0..len(candidates)-1 over the input; callers
// truncate to their own result size.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []models.Assessment) ([]int, error)
	Name() string
}

// LLMReranker prompts an LLM with the query and a numbered candidate list
// and parses the returned ordering. Clients are tried in order; when all
// of them fail the input order is kept.
type LLMReranker struct {
	clients []Client
	logger  *zap.Logger
}

var _ Reranker = (*LLMReranker)(nil)

// NewLLMReranker creates a reranker backed by the given LLM clients,
// tried in preference order.
func NewLLMReranker(logger *zap.Logger, clients ...Client) *LLMReranker {
	return &LLMReranker{clients: clients, logger: logger}
}

// Rerank asks an LLM for a relevance ordering. On client or parse failure
// the input order is returned with a nil error; the caller cannot
// distinguish a degraded result from a real one, and does not need to.
func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []models.Assessment) ([]int, error) {
	if len(candidates) < 2 {
		return identityOrder(len(candidates)), nil
	}

	prompt := BuildPrompt(query, candidates)
	for _, client := range r.clients {
		reply, err := client.Complete(ctx, prompt)
		if err != nil {
			r.logger.Warn("rerank call failed",
				zap.String("client", client.Name()),
				zap.Error(err))
			continue
		}
		return ParseRankOrder(reply, len(candidates)), nil
	}

	r.logger.Warn("all rerank clients failed, keeping vector order")
	return identityOrder(len(candidates)), nil
}

// Name identifies the reranker in logs.
func (r *LLMReranker) Name() string {
	names := "llm"
	for _, c := range r.clients {
		names += "/" + c.Name()
	}
	return names
}

// NoopReranker returns candidates in their incoming order. Used when
// reranking is disabled or no LLM credential is configured.
type NoopReranker struct{}

var _ Reranker = (*NoopReranker)(nil)

// Rerank returns the identity ordering.
func (NoopReranker) Rerank(_ context.Context, _ string, candidates []models.Assessment) ([]int, error) {
	return identityOrder(len(candidates)), nil
}

// Name identifies the reranker in logs.
func (NoopReranker) Name() string {
	return "noop"
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
