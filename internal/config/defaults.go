package config

import "time"

const (
	// DefaultThreshold is the minimum cosine similarity for a pattern to count as a match.
	DefaultThreshold = 0.6
	// DefaultEmbedTimeout bounds a single query embedding call.
	DefaultEmbedTimeout = 10 * time.Second

	DefaultPrompt   = "Please enter your question."
	DefaultFallback = "I'm not sure about your question. Could you elaborate?"
	DefaultApology  = "Sorry, something went wrong while processing your request."
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "./intents.json"
	}
	if cfg.Messages.Prompt == "" {
		cfg.Messages.Prompt = DefaultPrompt
	}
	if cfg.Messages.Fallback == "" {
		cfg.Messages.Fallback = DefaultFallback
	}
	if cfg.Messages.Apology == "" {
		cfg.Messages.Apology = DefaultApology
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kotae/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.OllamaURL == "" {
		cfg.Embedding.OllamaURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-minilm"
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Roster.Column == "" {
		cfg.Roster.Column = "bidang"
	}
	if cfg.Roster.TriggerPhrases == nil {
		cfg.Roster.TriggerPhrases = []string{"jumlah peserta"}
	}
	if cfg.Roster.FieldKeyword == "" {
		cfg.Roster.FieldKeyword = "bidang"
	}
	if cfg.Roster.Answer == "" {
		cfg.Roster.Answer = "Jumlah peserta magang pada bidang {field} adalah {count} orang."
	}
	if cfg.Roster.Unavailable == "" {
		cfg.Roster.Unavailable = "Maaf, saya tidak dapat mengambil data saat ini."
	}
}
