package matcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/embedding"
)

func BenchmarkMatch_MockEmbedder(b *testing.B) {
	cat := &catalog.Catalog{}
	for i := 0; i < 50; i++ {
		in := catalog.Intent{Response: fmt.Sprintf("response %d", i)}
		for j := 0; j < 10; j++ {
			in.Patterns = append(in.Patterns, fmt.Sprintf("pattern %d variant %d", i, j))
		}
		cat.Intents = append(cat.Intents, in)
	}
	emb := embedding.NewMockEmbedder(384)
	m, err := New(context.Background(), cat, emb, WithEmbedTimeout(0))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Match(ctx, "pattern 25 variant 3")
	}
}
