package embedding

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"golang.org/x/text/unicode/norm"
)

// indonesianStopwords are dropped when the "id" language is selected.
var indonesianStopwords = []string{
	"yang", "dan", "untuk", "dengan", "pada", "dari", "oleh", "karena",
	"sebagai", "juga", "di", "ke", "ini", "itu", "adalah", "atau", "akan", "dalam",
}

var (
	idPrefix = regexp.MustCompile(`^(di|ke|se|me|be|ter)`)
	idSuffix = regexp.MustCompile(`(kan|an|i)$`)
)

// Analyzer turns text into normalized terms for the tfidf embedder and the hash tokenizer.
// Tokenization and filtering run on the bleve analysis pipeline.
type Analyzer struct {
	tokenizer analysis.Tokenizer
	filters   []analysis.TokenFilter
}

// NewAnalyzer returns an analyzer for language. "id" adds stopword removal and light
// Indonesian affix stripping; anything else only folds, splits and lowercases.
func NewAnalyzer(language string) *Analyzer {
	a := &Analyzer{
		tokenizer: bleveunicode.NewUnicodeTokenizer(),
		filters:   []analysis.TokenFilter{lowercase.NewLowerCaseFilter()},
	}
	if strings.EqualFold(language, "id") {
		stopwords := analysis.NewTokenMap()
		for _, w := range indonesianStopwords {
			stopwords.AddToken(w)
		}
		// Stripping a suffix can turn a stopword into a non-stopword ("ini" -> "in"), so
		// stopwords are removed both before and after stemming.
		a.filters = append(a.filters,
			stop.NewStopTokensFilter(stopwords),
			indonesianAffixFilter{},
			stop.NewStopTokensFilter(stopwords),
		)
	}
	return a
}

// Terms folds diacritics, splits on Unicode word boundaries and runs the token filters.
func (a *Analyzer) Terms(text string) []string {
	stream := a.tokenizer.Tokenize([]byte(foldMarks(text)))
	for _, f := range a.filters {
		stream = f.Filter(stream)
	}
	if len(stream) == 0 {
		return nil
	}
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// foldMarks decomposes text (NFKD) and drops combining marks, so "café" becomes "cafe".
func foldMarks(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, norm.NFKD.String(text))
}

// indonesianAffixFilter strips one common prefix and one common suffix from each token and
// drops tokens left empty.
type indonesianAffixFilter struct{}

func (indonesianAffixFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	out := input[:0]
	for _, tok := range input {
		term := stemIndonesian(string(tok.Term))
		if term == "" {
			continue
		}
		tok.Term = []byte(term)
		out = append(out, tok)
	}
	return out
}

func stemIndonesian(word string) string {
	word = idPrefix.ReplaceAllString(word, "")
	return idSuffix.ReplaceAllString(word, "")
}
