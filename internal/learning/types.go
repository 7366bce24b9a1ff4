// Package learning implements the pattern learning engine: the single
// source of mutable shared state in taskrouter. It records routing outcomes
// per (query-shape signature, handler) pair, applies asymmetric time-decayed
// weight adjustment, and feeds learned boosts back into calibration.
package learning

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"taskrouter/internal/token"
)

// Outcome is the caller-reported result of a routed selection.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Signature is a normalized fingerprint of a query's keyword and domain
// content, used as the learning key.
type Signature string

// ComputeSignature hashes the unique sorted content words of a query plus
// its classified domain. Queries with the same vocabulary and domain share
// a signature regardless of word order.
func ComputeSignature(query, domain string) Signature {
	words := token.ContentWords(query)
	if len(words) == 0 {
		return ""
	}
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Strings(sorted)

	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(sorted, "\x1f")))
	_, _ = h.Write([]byte("\x1e" + domain))
	return Signature(fmt.Sprintf("%016x", h.Sum64()))
}

// Observation is one feedback event in a signature's rolling window.
type Observation struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Success bool      `json:"success"`
}

// PatternWeight is the learned state for one (signature, handler) pair.
// Values are immutable once published: updates replace the whole struct,
// so a concurrent reader never observes a half-applied increment.
type PatternWeight struct {
	Signature  Signature     `json:"signature"`
	Handler    string        `json:"handler"`
	Domain     string        `json:"domain"`
	Keywords   []string      `json:"keywords"`
	Weight     float64       `json:"weight"`     // always in [min, max]
	Confidence float64       `json:"confidence"` // last reinforced confidence
	History    []Observation `json:"history"`    // bounded, time-ordered
	UpdatedAt  time.Time     `json:"updated_at"`
}

// SuccessRate returns the fraction of successful observations in the
// rolling window, and the window size.
func (p *PatternWeight) SuccessRate() (float64, int) {
	if len(p.History) == 0 {
		return 0, 0
	}
	ok := 0
	for _, o := range p.History {
		if o.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(p.History)), len(p.History)
}

// Suggestion is a learned routing hint returned by Suggest.
type Suggestion struct {
	Handler    string
	Domain     string
	Confidence float64 // stored confidence, time-decayed
	Similarity float64
	Signature  Signature
}

// PatternSummary is the introspection view of one learned pattern.
type PatternSummary struct {
	Signature    Signature
	Handler      string
	Domain       string
	Keywords     []string
	Weight       float64
	SuccessRate  float64
	Observations int
	UpdatedAt    time.Time
}

// key joins signature and handler into the store key.
func key(sig Signature, handler string) string {
	return string(sig) + "|" + handler
}
