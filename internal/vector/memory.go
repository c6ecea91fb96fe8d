package vector

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmptyIndex is returned when searching an index with no rows.
	ErrEmptyIndex = errors.New("vector index is empty")
	// ErrDimensionMismatch is returned when a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Hit is a single row of the index and its similarity to a query.
type Hit struct {
	Index int
	Score float64
}

// MemoryIndex is an ordered in-memory table of vectors searched by brute-force cosine
// similarity. Row positions are stable: the i-th added vector is row i.
type MemoryIndex struct {
	dimensions int
	vectors    [][]float64
	norms      []float64
	mu         sync.RWMutex
}

// NewMemoryIndex creates an index for vectors of the given dimension. A non-positive
// dimension is taken from the first added vector.
func NewMemoryIndex(dimensions int) *MemoryIndex {
	if dimensions < 0 {
		dimensions = 0
	}
	return &MemoryIndex{dimensions: dimensions}
}

// Add appends rows in order.
func (m *MemoryIndex) Add(vectors ...[]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range vectors {
		if m.dimensions == 0 && len(m.vectors) == 0 {
			m.dimensions = len(v)
		}
		if len(v) != m.dimensions {
			return fmt.Errorf("row %d: got %d, expected %d: %w", len(m.vectors)+i, len(v), m.dimensions, ErrDimensionMismatch)
		}
	}
	for _, v := range vectors {
		row := toFloat64(v)
		m.vectors = append(m.vectors, row)
		m.norms = append(m.norms, floats.Norm(row, 2))
	}
	return nil
}

// Best returns the row with the highest cosine similarity to query. Ties go to the
// lowest row index.
func (m *MemoryIndex) Best(query []float32) (Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.vectors) == 0 {
		return Hit{}, ErrEmptyIndex
	}
	scores, err := m.scoreLocked(query)
	if err != nil {
		return Hit{}, err
	}
	best := Hit{Index: 0, Score: scores[0]}
	for i := 1; i < len(scores); i++ {
		if scores[i] > best.Score {
			best = Hit{Index: i, Score: scores[i]}
		}
	}
	return best, nil
}

// Search returns up to k rows ordered by descending similarity, ties by ascending row index.
func (m *MemoryIndex) Search(query []float32, k int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.vectors) == 0 {
		return nil, nil
	}
	scores, err := m.scoreLocked(query)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{Index: i, Score: s}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (m *MemoryIndex) scoreLocked(query []float32) ([]float64, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query: got %d, expected %d: %w", len(query), m.dimensions, ErrDimensionMismatch)
	}
	q := toFloat64(query)
	qn := floats.Norm(q, 2)
	scores := make([]float64, len(m.vectors))
	if qn == 0 {
		return scores, nil
	}
	for i, row := range m.vectors {
		if m.norms[i] == 0 {
			continue
		}
		scores[i] = floats.Dot(q, row) / (qn * m.norms[i])
	}
	return scores, nil
}

// Size returns the number of rows in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

// Dimensions returns the row dimension (0 until known).
func (m *MemoryIndex) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}
