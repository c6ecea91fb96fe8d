package embedding

import (
	"context"
	"fmt"
)

// embedMisses resolves texts using lookup first and sends the distinct misses to embed in a
// single call. It returns the vectors in input order plus the newly embedded texts and vectors.
func embedMisses(
	ctx context.Context,
	texts []string,
	lookup func(text string) ([]float32, bool),
	embed func(ctx context.Context, texts []string) ([][]float32, error),
) (out [][]float32, missed []string, missedVecs [][]float32, err error) {
	out = make([][]float32, len(texts))
	pending := make(map[string][]int)
	for i, text := range texts {
		if v, ok := lookup(text); ok {
			out[i] = v
			continue
		}
		if _, seen := pending[text]; !seen {
			missed = append(missed, text)
		}
		pending[text] = append(pending[text], i)
	}
	if len(missed) == 0 {
		return out, nil, nil, nil
	}
	missedVecs, err = embed(ctx, missed)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(missedVecs) != len(missed) {
		return nil, nil, nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(missedVecs), len(missed))
	}
	for j, text := range missed {
		for _, i := range pending[text] {
			out[i] = missedVecs[j]
		}
	}
	return out, missed, missedVecs, nil
}
