package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/matcher"
	"github.com/hyperjump/kotae/internal/roster"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Components holds initialized services.
type Components struct {
	Catalog  *catalog.Catalog
	Store    *storage.SQLiteStorage
	Embedder embedding.Embedder
	Matcher  *matcher.Matcher
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

// initializeComponents wires catalog, snapshot store, provider and matcher in that order.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	logger = utils.OrNop(logger)
	c := &Components{Catalog: catalog.Load(cfg.Catalog.Path, logger)}

	var store embedding.EmbeddingStore
	if cfg.Storage.EmbeddingCachePath != "" {
		s, err := storage.NewSQLiteStorage(cfg.Storage.EmbeddingCachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedding cache: %w", err)
		}
		c.Store = s
		store = s
		logger.Info("embedding cache opened", zap.String("path", cfg.Storage.EmbeddingCachePath))
	}

	emb, err := embedding.New(&cfg.Embedding, c.Catalog.Patterns(), store, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	c.Embedder = emb

	opts := []matcher.Option{
		matcher.WithThreshold(cfg.Matcher.ThresholdOrDefault()),
		matcher.WithEmbedTimeout(cfg.Matcher.EmbedTimeoutOrDefault()),
		matcher.WithMessages(matcher.Messages{
			Prompt:   cfg.Messages.Prompt,
			Fallback: cfg.Messages.Fallback,
			Apology:  cfg.Messages.Apology,
		}),
		matcher.WithLogger(logger),
	}
	if cfg.Roster.Enabled {
		opts = append(opts, matcher.WithResponders(roster.NewResponder(cfg.Roster, logger)))
		logger.Info("roster responder enabled", zap.String("path", cfg.Roster.Path))
	}

	m, err := matcher.New(ctx, c.Catalog, emb, opts...)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build matcher: %w", err)
	}
	c.Matcher = m
	return c, nil
}
