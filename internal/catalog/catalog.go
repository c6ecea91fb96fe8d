// Package catalog loads the intent catalog and flattens it into the pattern index used by
// the matcher.
package catalog

import (
	"sort"
	"strings"
)

// Intent is one group of example phrasings that share a canned response.
type Intent struct {
	Tag      string   `json:"tag,omitempty"`
	Patterns []string `json:"patterns"`
	Response string   `json:"response"`
}

// Catalog is the immutable set of intents loaded at startup.
type Catalog struct {
	Intents []Intent `json:"intents"`
}

// Entry is one row of the pattern index. Its position in the slice returned by Index is
// the row of its embedding in the pattern table.
type Entry struct {
	Pattern  string
	Response string
	Tag      string
	Intent   int
}

// Duplicate is a pattern that appears under more than one response.
type Duplicate struct {
	Pattern   string   `json:"pattern"`
	Responses []string `json:"responses"`
}

// Stats summarizes a catalog.
type Stats struct {
	Intents    int
	Patterns   int
	Duplicates []Duplicate
}

// Empty returns a catalog with no intents.
func Empty() *Catalog {
	return &Catalog{}
}

// Index flattens the catalog into one entry per pattern, in catalog order.
func (c *Catalog) Index() []Entry {
	if c == nil {
		return nil
	}
	var entries []Entry
	for i, intent := range c.Intents {
		for _, p := range intent.Patterns {
			entries = append(entries, Entry{
				Pattern:  p,
				Response: intent.Response,
				Tag:      intent.Tag,
				Intent:   i,
			})
		}
	}
	return entries
}

// Patterns returns the pattern texts of Index, in the same order.
func (c *Catalog) Patterns() []string {
	entries := c.Index()
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Pattern
	}
	return out
}

// Stats counts intents and patterns and reports patterns (compared case-insensitively)
// that map to more than one distinct response.
func (c *Catalog) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	st := Stats{Intents: len(c.Intents)}
	responses := make(map[string][]string)
	display := make(map[string]string)
	var order []string
	for _, e := range c.Index() {
		st.Patterns++
		key := strings.ToLower(strings.TrimSpace(e.Pattern))
		if _, ok := display[key]; !ok {
			display[key] = e.Pattern
			order = append(order, key)
		}
		if !contains(responses[key], e.Response) {
			responses[key] = append(responses[key], e.Response)
		}
	}
	for _, key := range order {
		if rs := responses[key]; len(rs) > 1 {
			st.Duplicates = append(st.Duplicates, Duplicate{Pattern: display[key], Responses: rs})
		}
	}
	sort.SliceStable(st.Duplicates, func(i, j int) bool {
		return strings.ToLower(st.Duplicates[i].Pattern) < strings.ToLower(st.Duplicates[j].Pattern)
	})
	return st
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
