package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/matcher"
)

type stubBot struct {
	reply string
	calls atomic.Int64
	last  atomic.Value
	panic bool
}

func (b *stubBot) BestResponse(_ context.Context, input string) string {
	b.calls.Add(1)
	b.last.Store(input)
	if b.panic {
		panic("boom")
	}
	return b.reply
}

// brokenEmbedder embeds patterns fine but fails every query, by error or by panic.
type brokenEmbedder struct {
	err      error
	panicMsg string
}

func (b *brokenEmbedder) Embed(context.Context, string) ([]float32, error) {
	if b.panicMsg != "" {
		panic(b.panicMsg)
	}
	return nil, b.err
}

func (b *brokenEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (b *brokenEmbedder) Dimensions() int { return 2 }
func (b *brokenEmbedder) Close() error    { return nil }

func newTestServer(bot Chatbot) *Server {
	return NewServer(bot, &config.ServerConfig{Host: "127.0.0.1", Port: 0}, nil)
}

func postChat(t *testing.T, s *Server, body string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object of strings: %v: %s", err, rec.Body.String())
	}
	return rec, out
}

func TestHandleChat_Success(t *testing.T) {
	bot := &stubBot{reply: "Hi!"}
	s := newTestServer(bot)
	rec, out := postChat(t, s, `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["response"] != "Hi!" || out["status"] != "success" {
		t.Errorf("body = %v", out)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := bot.last.Load(); got != "hello" {
		t.Errorf("bot received %v", got)
	}
}

func TestHandleChat_ExtraFieldsIgnored(t *testing.T) {
	s := newTestServer(&stubBot{reply: "ok"})
	rec, out := postChat(t, s, `{"message":"hello","lang":"id"}`)
	if rec.Code != http.StatusOK || out["response"] != "ok" {
		t.Errorf("status = %d body = %v", rec.Code, out)
	}
}

func TestHandleChat_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"invalid json", `{"message":`},
		{"array", `["hello"]`},
		{"string", `"hello"`},
		{"json null", `null`},
		{"empty object", `{}`},
		{"missing message", `{"text":"hello"}`},
		{"null message", `{"message":null}`},
		{"number message", `{"message":42}`},
		{"object message", `{"message":{"text":"hi"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &stubBot{reply: "unused"}
			s := newTestServer(bot)
			rec, out := postChat(t, s, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if len(out) != 1 || out["error"] != "Invalid request format" {
				t.Errorf("body = %v", out)
			}
			if bot.calls.Load() != 0 {
				t.Error("bot should not be called for invalid requests")
			}
		})
	}
}

func TestHandleChat_BodyTooLarge(t *testing.T) {
	s := newTestServer(&stubBot{reply: "unused"})
	big := `{"message":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec, out := postChat(t, s, big)
	if rec.Code != http.StatusBadRequest || out["error"] != "Invalid request format" {
		t.Errorf("status = %d body = %v", rec.Code, out)
	}
}

func TestHandleChat_Panic(t *testing.T) {
	s := newTestServer(&stubBot{panic: true})
	rec, out := postChat(t, s, `{"message":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if out["error"] != "Internal server error" || out["status"] != "error" || len(out) != 2 {
		t.Errorf("body = %v", out)
	}
}

func TestRoutes_OnlyPostChat(t *testing.T) {
	s := newTestServer(&stubBot{reply: "x"})
	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/chat", http.StatusMethodNotAllowed},
		{http.MethodPost, "/health", http.StatusNotFound},
		{http.MethodGet, "/", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(&stubBot{reply: "x"})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code >= 300 {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("preflight Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(&stubBot{reply: "x"})
	rec, _ := postChat(t, s, `{"message":"hi"}`)
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestHandleChat_WithMatcher(t *testing.T) {
	cat := &catalog.Catalog{Intents: []catalog.Intent{
		{Patterns: []string{"hello", "hi"}, Response: "Hi! How can I help?"},
		{Patterns: []string{"opening hours"}, Response: "We open at 9."},
	}}
	emb := embedding.NewTFIDFEmbedder(cat.Patterns(), "")
	m, err := matcher.New(context.Background(), cat, emb)
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(m)

	tests := []struct {
		body string
		want string
	}{
		{`{"message":"hello"}`, "Hi! How can I help?"},
		{`{"message":"what are your opening hours?"}`, "We open at 9."},
		{`{"message":"asdkjh"}`, config.DefaultFallback},
		{`{"message":""}`, config.DefaultPrompt},
		{`{"message":"   "}`, config.DefaultPrompt},
	}
	for _, tt := range tests {
		rec, out := postChat(t, s, tt.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.body, rec.Code)
		}
		if out["response"] != tt.want || out["status"] != "success" {
			t.Errorf("%s: body = %v, want response %q", tt.body, out, tt.want)
		}
	}
}

func TestHandleChat_ProviderFailure(t *testing.T) {
	cat := &catalog.Catalog{Intents: []catalog.Intent{
		{Patterns: []string{"hello"}, Response: "Hi!"},
	}}
	tests := []struct {
		name string
		emb  *brokenEmbedder
	}{
		{"error", &brokenEmbedder{err: errors.New("connection refused")}},
		{"panic", &brokenEmbedder{panicMsg: "provider exploded"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := matcher.New(context.Background(), cat, tt.emb)
			if err != nil {
				t.Fatal(err)
			}
			rec, out := postChat(t, newTestServer(m), `{"message":"hello"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if out["response"] != config.DefaultApology || out["status"] != "success" {
				t.Errorf("body = %v, want apology", out)
			}
		})
	}
}
