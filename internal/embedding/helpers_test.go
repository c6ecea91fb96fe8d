package embedding

import (
	"context"
	"errors"
	"sync"
)

// countingEmbedder wraps MockEmbedder and records what it was asked to embed.
type countingEmbedder struct {
	*MockEmbedder
	mu         sync.Mutex
	embedCalls int
	batchCalls [][]string
	fail       bool
	closed     bool
}

func newCountingEmbedder(dims int) *countingEmbedder {
	return &countingEmbedder{MockEmbedder: NewMockEmbedder(dims)}
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.embedCalls++
	c.mu.Unlock()
	if c.fail {
		return nil, errors.New("provider unavailable")
	}
	return c.MockEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.batchCalls = append(c.batchCalls, append([]string(nil), texts...))
	c.mu.Unlock()
	if c.fail {
		return nil, errors.New("provider unavailable")
	}
	return c.MockEmbedder.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Close() error {
	c.closed = true
	return nil
}

// memoryStore is an in-memory EmbeddingStore.
type memoryStore struct {
	data    map[string]map[string][]float32
	getErr  error
	putErr  error
	putHits int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]map[string][]float32{}}
}

func (m *memoryStore) GetEmbeddings(_ context.Context, model string, texts []string) (map[string][]float32, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := map[string][]float32{}
	for _, t := range texts {
		if v, ok := m.data[model][t]; ok {
			out[t] = v
		}
	}
	return out, nil
}

func (m *memoryStore) PutEmbeddings(_ context.Context, model string, texts []string, vectors [][]float32) error {
	m.putHits++
	if m.putErr != nil {
		return m.putErr
	}
	if m.data[model] == nil {
		m.data[model] = map[string][]float32{}
	}
	for i, t := range texts {
		m.data[model][t] = vectors[i]
	}
	return nil
}
