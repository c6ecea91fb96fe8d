package embedding

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Provider names accepted in embedding.provider.
const (
	ProviderONNX   = "onnx"
	ProviderOllama = "ollama"
	ProviderTFIDF  = "tfidf"
	ProviderMock   = "mock"
)

// New builds the configured provider. corpus is the set of catalog patterns (the tfidf
// vocabulary). When store is non-nil, model-backed providers persist batch embeddings in it.
// A positive cache size adds an LRU cache for repeated queries.
func New(cfg *config.EmbeddingConfig, corpus []string, store EmbeddingStore, logger *zap.Logger) (Embedder, error) {
	logger = utils.OrNop(logger)

	var (
		emb      Embedder
		modelKey string
	)
	switch cfg.Provider {
	case ProviderONNX:
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		emb = onnx
		modelKey = fmt.Sprintf("onnx:%s:%d", filepath.Base(cfg.ModelPath), cfg.Dimensions)
	case ProviderOllama:
		emb = NewOllamaEmbedder(cfg.OllamaURL, cfg.Model, cfg.Dimensions, cfg.Timeout)
		modelKey = fmt.Sprintf("ollama:%s:%d", cfg.Model, cfg.Dimensions)
	case ProviderTFIDF:
		emb = NewTFIDFEmbedder(corpus, cfg.Language)
	case ProviderMock:
		emb = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, ollama, tfidf, mock)", cfg.Provider)
	}
	logger.Info("embedding provider ready",
		zap.String("provider", cfg.Provider),
		zap.Int("dimensions", emb.Dimensions()),
	)

	if store != nil && modelKey != "" {
		emb = NewPersistentEmbedder(emb, store, modelKey, logger)
	}
	if cfg.CacheSize > 0 {
		cached, err := NewCachedEmbedder(emb, cfg.CacheSize)
		if err != nil {
			_ = emb.Close()
			return nil, err
		}
		emb = cached
	}
	return emb, nil
}
