package rerank

import (
	"time"

	"go.uber.org/zap"

	"github.com/skillsift/skillsift/internal/config"
)

// NewFromConfig builds the reranker from configuration. Gemini is the
// preferred judge when its key is present, with OpenAI as the alternate.
// Disabled reranking or no key at all yields the no-op reranker; either
// way Recommend keeps working.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (Reranker, error) {
	if !cfg.Rerank.EnabledOrDefault() {
		logger.Info("reranking disabled by config")
		return NoopReranker{}, nil
	}

	timeout := time.Duration(cfg.Rerank.TimeoutSecs) * time.Second

	var clients []Client
	if cfg.Embedding.GeminiKey != "" {
		gemini, err := NewGeminiClient(GeminiConfig{
			APIKey:  cfg.Embedding.GeminiKey,
			Model:   cfg.Rerank.GeminiModel,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		clients = append(clients, gemini)
	}
	if cfg.Embedding.OpenAIKey != "" {
		openai, err := NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.Embedding.OpenAIKey,
			Model:   cfg.Rerank.OpenAIModel,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		clients = append(clients, openai)
	}
	if len(clients) == 0 {
		logger.Info("no LLM API key configured, reranking disabled")
		return NoopReranker{}, nil
	}

	reranker := NewLLMReranker(logger, clients...)
	logger.Info("using LLM reranker", zap.String("clients", reranker.Name()))
	return reranker, nil
}
