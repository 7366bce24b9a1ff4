package rules

import (
	_ "embed"
	"fmt"
	"sort"
)

//go:embed conflict_rules.mg
var conflictRules string

// ConflictTable is the typed snapshot of the evaluated rulebase. It is
// immutable after load and safe for concurrent reads.
type ConflictTable struct {
	pairs     map[[2]string]bool  // symmetric closure, both orders present
	resources map[string][]string // domain -> finite-resource terms, sorted
}

// LoadConflictTable evaluates the embedded rulebase and snapshots it.
func LoadConflictTable() (*ConflictTable, error) {
	return LoadConflictTableFrom(conflictRules)
}

// LoadConflictTableFrom evaluates a caller-supplied rulebase. The program
// must declare antagonist/2, resource_term/2, and conflict_pair/2.
func LoadConflictTableFrom(program string) (*ConflictTable, error) {
	engine, err := NewEngine(program)
	if err != nil {
		return nil, err
	}

	t := &ConflictTable{
		pairs:     make(map[[2]string]bool),
		resources: make(map[string][]string),
	}

	pairs, err := engine.Facts("conflict_pair")
	if err != nil {
		return nil, err
	}
	for _, f := range pairs {
		a, okA := f.Args[0].(string)
		b, okB := f.Args[1].(string)
		if !okA || !okB {
			return nil, fmt.Errorf("conflict_pair fact has non-string args: %v", f.Args)
		}
		t.pairs[[2]string{a, b}] = true
	}

	terms, err := engine.Facts("resource_term")
	if err != nil {
		return nil, err
	}
	for _, f := range terms {
		d, okD := f.Args[0].(string)
		r, okR := f.Args[1].(string)
		if !okD || !okR {
			return nil, fmt.Errorf("resource_term fact has non-string args: %v", f.Args)
		}
		t.resources[d] = append(t.resources[d], r)
	}
	for d := range t.resources {
		sort.Strings(t.resources[d])
	}

	return t, nil
}

// Antagonistic reports whether two domains are a known antagonistic pair.
// Symmetric: order does not matter.
func (t *ConflictTable) Antagonistic(a, b string) bool {
	return t.pairs[[2]string{a, b}]
}

// SharedResources returns the finite-resource terms both domains reference.
func (t *ConflictTable) SharedResources(a, b string) []string {
	ra, rb := t.resources[a], t.resources[b]
	if len(ra) == 0 || len(rb) == 0 {
		return nil
	}

	set := make(map[string]bool, len(ra))
	for _, r := range ra {
		set[r] = true
	}
	var shared []string
	for _, r := range rb {
		if set[r] {
			shared = append(shared, r)
		}
	}
	return shared
}

// Resources returns the finite-resource terms for one domain.
func (t *ConflictTable) Resources(domain string) []string {
	out := make([]string, len(t.resources[domain]))
	copy(out, t.resources[domain])
	return out
}
