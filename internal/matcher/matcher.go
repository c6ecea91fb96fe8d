// Package matcher maps free-text input to the response of the most similar catalog pattern.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Kind tells which step of the pipeline produced a Result.
type Kind string

const (
	KindPrompt    Kind = "prompt"
	KindResponder Kind = "responder"
	KindMatch     Kind = "match"
	KindFallback  Kind = "fallback"
	KindError     Kind = "error"
)

// Result is the outcome of matching one input. Index is -1 when no pattern was scored.
type Result struct {
	Response string  `json:"response"`
	Kind     Kind    `json:"kind"`
	Score    float64 `json:"score"`
	Index    int     `json:"index"`
	Pattern  string  `json:"pattern,omitempty"`
	Tag      string  `json:"tag,omitempty"`
}

// Responder may answer an input before similarity matching. It returns false to pass.
type Responder interface {
	Respond(ctx context.Context, input string) (string, bool)
}

// Messages are the canned replies that do not come from the catalog.
type Messages struct {
	Prompt   string
	Fallback string
	Apology  string
}

// DefaultMessages returns the built-in English messages.
func DefaultMessages() Messages {
	return Messages{
		Prompt:   config.DefaultPrompt,
		Fallback: config.DefaultFallback,
		Apology:  config.DefaultApology,
	}
}

type options struct {
	threshold    float64
	embedTimeout time.Duration
	messages     Messages
	responders   []Responder
	logger       *zap.Logger
}

// Option configures a Matcher.
type Option func(*options)

// WithThreshold sets the minimum similarity for a match.
func WithThreshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// WithEmbedTimeout bounds each query embedding call. Zero disables the bound.
func WithEmbedTimeout(d time.Duration) Option {
	return func(o *options) { o.embedTimeout = d }
}

// WithMessages replaces the canned messages. Empty fields keep their defaults.
func WithMessages(m Messages) Option {
	return func(o *options) {
		if m.Prompt != "" {
			o.messages.Prompt = m.Prompt
		}
		if m.Fallback != "" {
			o.messages.Fallback = m.Fallback
		}
		if m.Apology != "" {
			o.messages.Apology = m.Apology
		}
	}
}

// WithResponders appends pre-match responders, consulted in order.
func WithResponders(rs ...Responder) Option {
	return func(o *options) {
		for _, r := range rs {
			if r != nil {
				o.responders = append(o.responders, r)
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Matcher holds the pattern index and its embeddings. It is read-only after New and safe
// for concurrent use.
type Matcher struct {
	entries  []catalog.Entry
	table    *vector.MemoryIndex
	embedder embedding.Embedder
	opts     options
	logger   *zap.Logger
}

// New flattens cat, embeds every pattern in a single batch call and returns a ready Matcher.
// The embedder is not called when the catalog has no patterns.
func New(ctx context.Context, cat *catalog.Catalog, embedder embedding.Embedder, opts ...Option) (*Matcher, error) {
	if embedder == nil {
		return nil, errors.New("matcher requires an embedder")
	}
	o := options{
		threshold:    config.DefaultThreshold,
		embedTimeout: config.DefaultEmbedTimeout,
		messages:     DefaultMessages(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := utils.OrNop(o.logger)

	m := &Matcher{
		entries:  cat.Index(),
		table:    vector.NewMemoryIndex(embedder.Dimensions()),
		embedder: embedder,
		opts:     o,
		logger:   logger,
	}
	if len(m.entries) == 0 {
		logger.Warn("catalog is empty, every query gets the fallback")
		return m, nil
	}

	patterns := make([]string, len(m.entries))
	for i, e := range m.entries {
		patterns[i] = e.Pattern
	}
	start := time.Now()
	vecs, err := embedder.EmbedBatch(ctx, patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to embed patterns: %w", err)
	}
	if len(vecs) != len(patterns) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d patterns", len(vecs), len(patterns))
	}
	if err := m.table.Add(vecs...); err != nil {
		return nil, fmt.Errorf("failed to build pattern table: %w", err)
	}
	logger.Info("pattern table built",
		zap.Int("patterns", len(patterns)),
		zap.Int("dimensions", m.table.Dimensions()),
		zap.Duration("took", time.Since(start)),
	)
	return m, nil
}

// Size returns the number of indexed patterns.
func (m *Matcher) Size() int {
	return len(m.entries)
}

// BestResponse returns the reply for input. It always returns a string; failures are
// logged and answered with the apology message.
func (m *Matcher) BestResponse(ctx context.Context, input string) string {
	return m.Match(ctx, input).Response
}

// Match runs the full pipeline and reports how the response was chosen.
func (m *Matcher) Match(ctx context.Context, input string) Result {
	if strings.TrimSpace(input) == "" {
		return Result{Response: m.opts.messages.Prompt, Kind: KindPrompt, Index: -1}
	}

	for _, r := range m.opts.responders {
		if resp, ok := r.Respond(ctx, input); ok {
			return Result{Response: resp, Kind: KindResponder, Index: -1}
		}
	}

	if len(m.entries) == 0 {
		return Result{Response: m.opts.messages.Fallback, Kind: KindFallback, Index: -1}
	}

	query, err := m.embedQuery(ctx, input)
	if err != nil {
		m.logger.Error("failed to embed query", zap.Error(err))
		return Result{Response: m.opts.messages.Apology, Kind: KindError, Index: -1}
	}

	hit, err := m.table.Best(query)
	if err != nil {
		m.logger.Error("failed to score query", zap.Error(err))
		return Result{Response: m.opts.messages.Apology, Kind: KindError, Index: -1}
	}

	e := m.entries[hit.Index]
	res := Result{
		Score:   hit.Score,
		Index:   hit.Index,
		Pattern: e.Pattern,
		Tag:     e.Tag,
	}
	if hit.Score >= m.opts.threshold {
		res.Response = e.Response
		res.Kind = KindMatch
	} else {
		res.Response = m.opts.messages.Fallback
		res.Kind = KindFallback
	}
	m.logger.Info("query matched",
		zap.Float64("score", hit.Score),
		zap.Int("index", hit.Index),
		zap.String("tag", e.Tag),
		zap.String("kind", string(res.Kind)),
	)
	return res
}

func (m *Matcher) embedQuery(ctx context.Context, input string) ([]float32, error) {
	if m.opts.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.embedTimeout)
		defer cancel()
	}
	// Embedders that ignore ctx still return on timeout; their late result is discarded.
	type result struct {
		vec []float32
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("embedder panic: %v", rec)}
			}
		}()
		vec, err := m.embedder.Embed(ctx, input)
		done <- result{vec, err}
	}()
	select {
	case r := <-done:
		return r.vec, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
