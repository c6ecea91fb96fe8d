package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/pkg/utils"
)

// ErrNoIntents is returned by Parse when the document has no "intents" key.
var ErrNoIntents = errors.New("catalog has no intents key")

type document struct {
	Intents *[]Intent `json:"intents"`
}

// Parse decodes a catalog document. Blank patterns are dropped. A document without an
// "intents" key returns an empty catalog together with ErrNoIntents.
func Parse(data []byte) (*Catalog, error) {
	cat, _, err := parse(data)
	return cat, err
}

func parse(data []byte) (*Catalog, int, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Empty(), 0, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if doc.Intents == nil {
		return Empty(), 0, ErrNoIntents
	}
	dropped := 0
	cat := &Catalog{Intents: make([]Intent, 0, len(*doc.Intents))}
	for _, in := range *doc.Intents {
		kept := make([]string, 0, len(in.Patterns))
		for _, p := range in.Patterns {
			if strings.TrimSpace(p) == "" {
				dropped++
				continue
			}
			kept = append(kept, p)
		}
		in.Patterns = kept
		cat.Intents = append(cat.Intents, in)
	}
	return cat, dropped, nil
}

// LoadFile reads and parses the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty(), fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return cat, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Load reads the catalog at path and never fails: any problem is logged and an empty
// catalog is returned, so the service still starts and answers with the fallback.
func Load(path string, logger *zap.Logger) *Catalog {
	logger = utils.OrNop(logger)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read catalog", zap.String("path", path), zap.Error(err))
		return Empty()
	}
	cat, dropped, err := parse(data)
	switch {
	case errors.Is(err, ErrNoIntents):
		logger.Warn("catalog has no intents", zap.String("path", path))
		return Empty()
	case err != nil:
		logger.Error("failed to parse catalog", zap.String("path", path), zap.Error(err))
		return Empty()
	}
	if dropped > 0 {
		logger.Warn("dropped blank patterns", zap.String("path", path), zap.Int("count", dropped))
	}
	st := cat.Stats()
	logger.Info("catalog loaded",
		zap.String("path", path),
		zap.Int("intents", st.Intents),
		zap.Int("patterns", st.Patterns),
	)
	return cat
}
