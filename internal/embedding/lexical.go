package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
)

const DefaultLexicalDimension = 384

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "been": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "he": {}, "her": {},
	"his": {}, "i": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "she": {}, "that": {}, "the": {}, "their": {}, "there": {}, "they": {},
	"this": {}, "to": {}, "was": {}, "we": {}, "were": {}, "will": {}, "with": {}, "you": {},
}

// LexicalEncoder is an offline feature-hashing encoder: each non stop-word
// token increments one of Dimension buckets. It has no model state, so it is
// trivially safe to share. Text made only of stop-words or punctuation maps
// to the zero vector.
type LexicalEncoder struct {
	dimension int
}

func NewLexicalEncoder(dimension int) *LexicalEncoder {
	if dimension <= 0 {
		dimension = DefaultLexicalDimension
	}
	return &LexicalEncoder{dimension: dimension}
}

func (e *LexicalEncoder) Dimension() int {
	return e.dimension
}

func (e *LexicalEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	for _, token := range Tokenize(text) {
		bucket := xxhash.Sum64String(token) % uint64(e.dimension)
		vec[bucket]++
	}
	return vec, nil
}

// Tokenize case-folds text and splits it on anything that is not a letter or
// digit, dropping stop-words.
func Tokenize(text string) []string {
	// a Caser is stateful, so one per call
	folded := cases.Fold().String(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
