package embedding

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// BERT special token IDs. Word IDs start above the reserved range.
const (
	tokenCLS        = 101
	tokenSEP        = 102
	firstWordID     = 1000
	vocabCap        = 30000
	defaultMaxToken = 256
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer splits text into lowercase words and hashes each into the
// model's vocabulary range. It has no vocabulary file, so models only see
// stable IDs for words, not the IDs they were trained on.
type SimpleTokenizer struct{}

// Tokenize produces [CLS] words... [SEP], zero padded to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxToken
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = tokenCLS
	attentionMask[0] = 1

	pos := 1
	for _, word := range splitWords(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = wordID(word)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = tokenSEP
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// splitWords lowercases text and splits it on anything that is not a letter
// or digit.
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func wordID(word string) int64 {
	return firstWordID + int64(hash64(word)%uint64(vocabCap-firstWordID))
}

func hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
