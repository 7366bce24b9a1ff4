// Package token normalizes free-text queries into word tokens. Both the
// feature extractor and the learning engine tokenize the same way, so a
// query and its learned signature always agree on vocabulary.
package token

import (
	"strings"
	"unicode"
)

// stopwords are dropped from signatures but kept in positional token lists:
// position weighting needs the raw sequence, signatures need the content.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"how": true, "i": true, "in": true, "is": true, "it": true, "my": true,
	"of": true, "on": true, "or": true, "our": true, "please": true,
	"that": true, "the": true, "this": true, "to": true, "we": true,
	"what": true, "when": true, "with": true, "you": true,
}

// Normalize lowercases a query and strips non-semantic punctuation,
// keeping word-internal hyphens and underscores (e.g. "multi-tenant").
func Normalize(query string) string {
	var b strings.Builder
	b.Grow(len(query))
	for _, r := range strings.ToLower(query) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize returns the normalized word sequence of a query, in order.
func Tokenize(query string) []string {
	norm := Normalize(query)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}

// ContentWords returns the unique non-stopword tokens, preserving first-seen
// order.
func ContentWords(query string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range Tokenize(query) {
		if stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Overlap computes the Jaccard similarity of two token sets.
func Overlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
