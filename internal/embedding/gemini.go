package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default Gemini configuration.
const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "text-embedding-004"
	geminiDefaultTimeout = 60 * time.Second
	geminiDimensions     = 768
)

// GeminiConfig holds configuration for the Gemini embedding provider.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiEmbedder generates embeddings using the Gemini API.
type GeminiEmbedder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

var _ Embedder = (*GeminiEmbedder)(nil)

type geminiContentPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiContentPart `json:"parts"`
}

type geminiEmbedEntry struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedEntry `json:"requests"`
}

type geminiBatchResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiEmbedder creates a Gemini embedding provider.
func NewGeminiEmbedder(cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = geminiDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = geminiDefaultTimeout
	}

	return &GeminiEmbedder{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Embed generates an embedding for a single text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("gemini: no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for texts via batchEmbedContents.
// The response preserves request order.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	modelName := "models/" + e.model
	batch := geminiBatchRequest{Requests: make([]geminiEmbedEntry, len(texts))}
	for i, t := range texts {
		if t == "" {
			t = " "
		}
		batch.Requests[i] = geminiEmbedEntry{
			Model:   modelName,
			Content: geminiContent{Parts: []geminiContentPart{{Text: t}}},
		}
	}

	jsonBody, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:batchEmbedContents?key=%s", e.baseURL, modelName, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var batchResp geminiBatchResponse
	if err := json.Unmarshal(body, &batchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if batchResp.Error != nil {
		if batchResp.Error.Code == http.StatusTooManyRequests || batchResp.Error.Status == "RESOURCE_EXHAUSTED" || isQuotaMessage(batchResp.Error.Message) {
			return nil, fmt.Errorf("gemini: %w: %s", ErrQuotaExceeded, batchResp.Error.Message)
		}
		return nil, fmt.Errorf("gemini error: %s", batchResp.Error.Message)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("gemini: %w (status 429)", ErrQuotaExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(batchResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: got %d embeddings for %d inputs", len(batchResp.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for i, emb := range batchResp.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (e *GeminiEmbedder) Dimensions() int {
	return geminiDimensions
}

// Name identifies the provider in logs.
func (e *GeminiEmbedder) Name() string {
	return "gemini"
}

// Close releases resources.
func (e *GeminiEmbedder) Close() error {
	return nil
}
