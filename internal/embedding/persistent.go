package embedding

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/pkg/utils"
)

// EmbeddingStore persists embeddings keyed by model and text.
type EmbeddingStore interface {
	GetEmbeddings(ctx context.Context, model string, texts []string) (map[string][]float32, error)
	PutEmbeddings(ctx context.Context, model string, texts []string, vectors [][]float32) error
}

// PersistentEmbedder answers batch requests from an EmbeddingStore and only sends the
// texts it has never seen to the wrapped embedder. Single-text Embed calls go straight
// through; queries are not persisted.
type PersistentEmbedder struct {
	inner  Embedder
	store  EmbeddingStore
	model  string
	logger *zap.Logger
}

// NewPersistentEmbedder wraps inner. model namespaces the stored vectors and must change
// whenever the wrapped model does.
func NewPersistentEmbedder(inner Embedder, store EmbeddingStore, model string, logger *zap.Logger) *PersistentEmbedder {
	return &PersistentEmbedder{inner: inner, store: store, model: model, logger: utils.OrNop(logger)}
}

// Embed delegates to the wrapped embedder.
func (p *PersistentEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.inner.Embed(ctx, text)
}

// EmbedBatch returns stored vectors where present and embeds the rest in one call.
// Store failures are logged and treated as misses.
func (p *PersistentEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	stored, err := p.store.GetEmbeddings(ctx, p.model, texts)
	if err != nil {
		p.logger.Warn("embedding store lookup failed", zap.String("model", p.model), zap.Error(err))
		stored = nil
	}
	lookup := func(text string) ([]float32, bool) {
		v, ok := stored[text]
		if ok && p.inner.Dimensions() > 0 && len(v) != p.inner.Dimensions() {
			return nil, false
		}
		return v, ok
	}
	out, missed, vecs, err := embedMisses(ctx, texts, lookup, p.inner.EmbedBatch)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("embedding store batch",
		zap.String("model", p.model),
		zap.Int("requested", len(texts)),
		zap.Int("embedded", len(missed)),
	)
	if len(missed) > 0 {
		if err := p.store.PutEmbeddings(ctx, p.model, missed, vecs); err != nil {
			p.logger.Warn("embedding store write failed", zap.String("model", p.model), zap.Error(err))
		}
	}
	return out, nil
}

// Dimensions returns the wrapped embedder's dimension.
func (p *PersistentEmbedder) Dimensions() int {
	return p.inner.Dimensions()
}

// Close closes the wrapped embedder. The store is owned by the caller.
func (p *PersistentEmbedder) Close() error {
	return p.inner.Close()
}
