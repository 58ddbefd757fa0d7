package embedding

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skillsift/skillsift/internal/config"
)

// NewFromConfig builds the embedding chain from configuration. Provider
// selection is static: an OpenAI key wins over a Gemini key, and with no
// key at all requests go straight to the local model. The local model is
// the configured ONNX model when model_path is set, otherwise the
// hashing embedder, which has no external requirements.
func NewFromConfig(cfg *config.EmbeddingConfig, logger *zap.Logger) (*Chain, error) {
	local, err := newLocal(cfg, logger)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	var primary Embedder
	switch {
	case cfg.OpenAIKey != "":
		primary, err = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			Timeout: timeout,
		})
	case cfg.GeminiKey != "":
		primary, err = NewGeminiEmbedder(GeminiConfig{
			APIKey:  cfg.GeminiKey,
			Model:   cfg.GeminiModel,
			Timeout: timeout,
		})
	}
	if err != nil {
		local.Close()
		return nil, err
	}

	if primary != nil {
		logger.Info("using remote embedding provider",
			zap.String("provider", primary.Name()),
			zap.String("fallback", local.Name()))
	} else {
		logger.Info("no embedding API key configured, using local model",
			zap.String("provider", local.Name()))
	}

	return NewChain(primary, local, cfg.BatchSize, logger), nil
}

func newLocal(cfg *config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if cfg.ModelPath != "" {
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("load local model %s: %w", cfg.ModelPath, err)
		}
		logger.Info("loaded ONNX embedding model", zap.String("path", cfg.ModelPath))
		return onnx, nil
	}
	return NewHashingEmbedder(cfg.Dimensions, cfg.CacheSize), nil
}
