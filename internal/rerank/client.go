package rerank

import "context"

// Client is a minimal text-completion interface over an LLM API. Only
// single-turn prompting is needed for reranking.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}
