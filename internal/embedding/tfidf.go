package embedding

import (
	"context"
	"math"
	"sort"
)

// TFIDFEmbedder embeds text as a TF-IDF vector over the vocabulary of a fixed corpus
// (the catalog patterns). It needs no model files, and terms outside the corpus are ignored,
// so unrelated text embeds to the zero vector.
type TFIDFEmbedder struct {
	analyzer *Analyzer
	terms    []string
	index    map[string]int
	idf      []float64
}

// NewTFIDFEmbedder builds the vocabulary and smoothed inverse document frequencies
// idf(t) = ln((1+N)/(1+df(t))) + 1 from corpus.
func NewTFIDFEmbedder(corpus []string, language string) *TFIDFEmbedder {
	analyzer := NewAnalyzer(language)
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range analyzer.Terms(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	index := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return &TFIDFEmbedder{analyzer: analyzer, terms: terms, index: index, idf: idf}
}

// Embed returns the TF-IDF vector for text.
func (e *TFIDFEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(e.terms))
	for _, term := range e.analyzer.Terms(text) {
		if i, ok := e.index[term]; ok {
			vec[i]++
		}
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * e.idf[i])
	}
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *TFIDFEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = e.Embed(ctx, text)
	}
	return out, nil
}

// Dimensions returns the vocabulary size.
func (e *TFIDFEmbedder) Dimensions() int {
	return len(e.terms)
}

// Vocabulary returns the sorted corpus terms.
func (e *TFIDFEmbedder) Vocabulary() []string {
	return append([]string(nil), e.terms...)
}

// Close is a no-op.
func (e *TFIDFEmbedder) Close() error {
	return nil
}
