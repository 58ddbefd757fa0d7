// Package config provides configuration loading and structs for the SkillSift server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Recommend RecommendConfig `yaml:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the catalog source and the persisted index artifacts.
// IndexPath and MetadataPath are loaded and saved together; they must hold
// the same entries in the same order.
type StorageConfig struct {
	CatalogPath  string `yaml:"catalog_path"`
	IndexPath    string `yaml:"index_path"`
	MetadataPath string `yaml:"metadata_path"`
}

// EmbeddingConfig holds embedding provider settings. When an API key is
// empty it is resolved from the OPENAI_API_KEY / GEMINI_API_KEY environment
// variables; having no key at all is not an error and selects the local model.
type EmbeddingConfig struct {
	OpenAIKey   string `yaml:"openai_api_key"`
	GeminiKey   string `yaml:"gemini_api_key"`
	OpenAIModel string `yaml:"openai_model"`
	GeminiModel string `yaml:"gemini_model"`
	ModelPath   string `yaml:"model_path"` // local ONNX model; blank uses the hashing embedder
	Dimensions  int    `yaml:"dimensions"` // local model output size
	MaxTokens   int    `yaml:"max_tokens"`
	BatchSize   int    `yaml:"batch_size"`
	CacheSize   int    `yaml:"cache_size"`
	TimeoutSecs int    `yaml:"timeout_seconds"`
}

// RerankConfig holds LLM reranking settings. Enabled defaults to true when
// unset; reranking silently degrades to vector order when no LLM is reachable.
type RerankConfig struct {
	Enabled             *bool  `yaml:"enabled"`
	GeminiModel         string `yaml:"gemini_model"`
	OpenAIModel         string `yaml:"openai_model"`
	CandidateMultiplier int    `yaml:"candidate_multiplier"` // over-fetch factor for the rerank stage
	TimeoutSecs         int    `yaml:"timeout_seconds"`
}

// EnabledOrDefault reports whether reranking is on; defaults to true when unset.
func (r *RerankConfig) EnabledOrDefault() bool {
	if r.Enabled != nil {
		return *r.Enabled
	}
	return true
}

// RecommendConfig holds request validation settings. MaxTopK is the
// documented ceiling: larger requests are clamped, not rejected.
type RecommendConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
	MaxTopK     int `yaml:"max_top_k"`
}

// Load reads and parses the config file at path, resolves API keys from the
// environment, expands relative paths, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if cfg.Embedding.OpenAIKey == "" {
		cfg.Embedding.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Embedding.GeminiKey == "" {
		cfg.Embedding.GeminiKey = os.Getenv("GEMINI_API_KEY")
	}

	configDir := filepath.Dir(path)
	cfg.Storage.CatalogPath = expandPath(cfg.Storage.CatalogPath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Storage.MetadataPath = expandPath(cfg.Storage.MetadataPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
