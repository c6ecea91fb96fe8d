// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Messages  MessagesConfig  `yaml:"messages"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Storage   StorageConfig   `yaml:"storage"`
	Roster    RosterConfig    `yaml:"roster"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CatalogConfig points at the intent catalog document.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// MatcherConfig holds intent matching settings. Pointer fields distinguish
// "unset" from an explicit zero.
type MatcherConfig struct {
	Threshold    *float64       `yaml:"threshold"`
	EmbedTimeout *time.Duration `yaml:"embed_timeout"`
}

// ThresholdOrDefault returns the configured similarity threshold, or DefaultThreshold when unset.
func (m *MatcherConfig) ThresholdOrDefault() float64 {
	if m.Threshold != nil {
		return *m.Threshold
	}
	return DefaultThreshold
}

// EmbedTimeoutOrDefault returns the query embedding timeout; zero disables it.
func (m *MatcherConfig) EmbedTimeoutOrDefault() time.Duration {
	if m.EmbedTimeout != nil {
		return *m.EmbedTimeout
	}
	return DefaultEmbedTimeout
}

// MessagesConfig holds the user-facing canned replies.
type MessagesConfig struct {
	Prompt   string `yaml:"prompt"`
	Fallback string `yaml:"fallback"`
	Apology  string `yaml:"apology"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "onnx", "ollama", "tfidf" or "mock".
	Provider   string        `yaml:"provider"`
	ModelPath  string        `yaml:"model_path"`
	Dimensions int           `yaml:"dimensions"`
	MaxTokens  int           `yaml:"max_tokens"`
	CacheSize  int           `yaml:"cache_size"`
	OllamaURL  string        `yaml:"ollama_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	// Language tunes the tfidf tokenizer ("id" enables stemming and stopwords).
	Language string `yaml:"language"`
}

// StorageConfig holds paths for persisted data.
type StorageConfig struct {
	// EmbeddingCachePath is the SQLite file used to persist pattern embeddings
	// across restarts. Empty disables persistence.
	EmbeddingCachePath string `yaml:"embedding_cache_path"`
}

// RosterConfig configures the spreadsheet-backed participant counter.
type RosterConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Path           string   `yaml:"path"`
	Sheet          string   `yaml:"sheet"`
	Column         string   `yaml:"column"`
	TriggerPhrases []string `yaml:"trigger_phrases"`
	FieldKeyword   string   `yaml:"field_keyword"`
	Answer         string   `yaml:"answer"`
	Unavailable    string   `yaml:"unavailable"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	expandPaths(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// Default returns a config with all defaults applied and relative paths
// resolved against dir.
func Default(dir string) *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	expandPaths(cfg, dir)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandPaths(cfg *Config, configDir string) {
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Storage.EmbeddingCachePath = expandPath(cfg.Storage.EmbeddingCachePath, configDir)
	cfg.Roster.Path = expandPath(cfg.Roster.Path, configDir)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" is relative to the home directory; other relative paths are relative to configDir.
// Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}
