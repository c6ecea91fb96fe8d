package embedding

import "hash/fnv"

const (
	clsTokenID = 101
	sepTokenID = 102
	// firstWordID keeps hashed word ids clear of the special-token range.
	firstWordID = 1000
	vocabSize   = 30522
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// HashTokenizer maps normalized words to hashed vocabulary ids. Words come from an Analyzer
// without stemming or stopwords, so case, accents and punctuation do not change the ids.
type HashTokenizer struct {
	analyzer *Analyzer
}

// NewHashTokenizer returns a tokenizer using language-neutral word splitting.
func NewHashTokenizer() *HashTokenizer {
	return &HashTokenizer{analyzer: NewAnalyzer("")}
}

// Tokenize produces [CLS] words... [SEP] padded to maxTokens.
func (t *HashTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 2 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1

	pos := 1
	for _, word := range t.analyzer.Terms(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(firstWordID + HashString(word)%(vocabSize-firstWordID))
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos] = sepTokenID
	attentionMask[pos] = 1
	return inputIDs, attentionMask, tokenTypeIDs
}

// HashString returns a deterministic non-negative FNV-1a hash of s.
func HashString(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}
