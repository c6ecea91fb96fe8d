// Package cli formats command output for kotae.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/matcher"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json)", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// AskResult is the answer to one message. Match is nil when the answer came from a server.
type AskResult struct {
	Message  string          `json:"message"`
	Response string          `json:"response"`
	Match    *matcher.Result `json:"match,omitempty"`
}

// WriteAskResult writes an answer to w in the given format.
func WriteAskResult(w io.Writer, res *AskResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintln(w, res.Response)
	if m := res.Match; m != nil {
		fmt.Fprintf(w, "\n[%s]", m.Kind)
		if m.Index >= 0 {
			fmt.Fprintf(w, " score: %.4f | pattern #%d: %s", m.Score, m.Index, utils.Truncate(m.Pattern, 80))
			if m.Tag != "" {
				fmt.Fprintf(w, " | tag: %s", m.Tag)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

type catalogReport struct {
	Path       string              `json:"path"`
	Intents    int                 `json:"intents"`
	Patterns   int                 `json:"patterns"`
	Duplicates []catalog.Duplicate `json:"duplicates"`
}

// WriteCatalogStats writes a catalog summary to w in the given format.
func WriteCatalogStats(w io.Writer, path string, st catalog.Stats, format OutputFormat) error {
	if format == OutputJSON {
		dups := st.Duplicates
		if dups == nil {
			dups = []catalog.Duplicate{}
		}
		return writeJSON(w, catalogReport{Path: path, Intents: st.Intents, Patterns: st.Patterns, Duplicates: dups})
	}
	fmt.Fprintf(w, "Catalog: %s\n", path)
	fmt.Fprintf(w, "  Intents:  %d\n", st.Intents)
	fmt.Fprintf(w, "  Patterns: %d\n", st.Patterns)
	if len(st.Duplicates) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nPatterns with conflicting responses (%d):\n", len(st.Duplicates))
	for _, d := range st.Duplicates {
		fmt.Fprintf(w, "  %q\n", d.Pattern)
		for _, r := range d.Responses {
			fmt.Fprintf(w, "    -> %s\n", utils.Truncate(r, 80))
		}
	}
	return nil
}

type cacheReport struct {
	Path      string               `json:"path"`
	SizeBytes int64                `json:"size_bytes"`
	Total     int64                `json:"total"`
	Models    []storage.ModelStats `json:"models"`
}

// WriteCacheStats writes embedding store statistics to w in the given format.
func WriteCacheStats(w io.Writer, path string, sizeBytes int64, models []storage.ModelStats, format OutputFormat) error {
	var total int64
	for _, m := range models {
		total += m.Count
	}
	if format == OutputJSON {
		if models == nil {
			models = []storage.ModelStats{}
		}
		return writeJSON(w, cacheReport{Path: path, SizeBytes: sizeBytes, Total: total, Models: models})
	}
	fmt.Fprintf(w, "Embedding cache: %s\n", path)
	fmt.Fprintf(w, "  Size:    %s\n", FormatBytes(sizeBytes))
	fmt.Fprintf(w, "  Vectors: %d\n", total)
	for _, m := range models {
		fmt.Fprintf(w, "  - %s: %d vectors, %d dims\n", m.Model, m.Count, m.Dimensions)
	}
	return nil
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
