// Package relevance scores free-text documents against a query.
//
// The contract is deliberately simple and deterministic:
//
//   - Case and whitespace are normalized, text is split on word boundaries.
//   - A query is an implicit AND of its distinct tokens: a document scores
//     above zero only when it contains every one of them.
//   - The score is token-frequency weighted and normalized by document
//     length, so denser matches rank higher.
//
// An empty or whitespace-only query matches everything; callers degrade to an
// unranked listing with a uniform score.
package relevance

import (
	"strings"
	"unicode"
)

// MatchAllScore is the uniform score assigned when the query is empty and the
// operation degenerates to a listing. Non-negative and equal across rows.
const MatchAllScore = 1.0

// Tokenize lower-cases s and splits it on any non-letter, non-digit rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// QueryTokens returns the distinct tokens of a query, in first-seen order.
// An empty result means "match all".
func QueryTokens(q string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range Tokenize(q) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// Doc is the indexed form of one document's searchable text.
type Doc struct {
	freq map[string]int
	len  int
}

// Index builds the token-frequency representation of text.
func Index(text string) Doc {
	tokens := Tokenize(text)
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return Doc{freq: freq, len: len(tokens)}
}

// Score returns the relevance of the document for the given query tokens.
//
// Zero when any query token is absent (conjunctive match) or the document is
// empty. Otherwise the sum of matched token frequencies divided by the
// document token count, which is always positive and at most 1.
func (d Doc) Score(queryTokens []string) float64 {
	if len(queryTokens) == 0 {
		return MatchAllScore
	}
	if d.len == 0 {
		return 0
	}
	matched := 0
	for _, tok := range queryTokens {
		n := d.freq[tok]
		if n == 0 {
			return 0
		}
		matched += n
	}
	return float64(matched) / float64(d.len)
}

// ScoreText is a convenience for one-shot scoring without keeping the index.
func ScoreText(text string, queryTokens []string) float64 {
	return Index(text).Score(queryTokens)
}
