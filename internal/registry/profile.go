// Package registry holds the in-memory catalog of handler profiles.
// Profiles are loaded once from an external definition file and are
// immutable afterward; the classification pipeline only ever reads them.
package registry

import (
	"fmt"
	"regexp"
	"strings"
)

// HandlerProfile describes one specialist handler: what domain it serves,
// what vocabulary signals it, and how heavily its matches count.
type HandlerProfile struct {
	Name             string
	Domain           string
	SecondaryDomains []string
	PrimaryKeywords  []string // ordered; earlier keywords matter more
	ContextPatterns  []*regexp.Regexp
	IntentVerbs      []string
	WeightMultiplier float64
	Description      string

	// rawPatterns keeps the original expressions for introspection.
	rawPatterns []string
}

// RawPatterns returns the uncompiled context-pattern expressions.
func (p *HandlerProfile) RawPatterns() []string {
	out := make([]string, len(p.rawPatterns))
	copy(out, p.rawPatterns)
	return out
}

// ServesDomain reports whether the profile serves a domain as primary
// or secondary.
func (p *HandlerProfile) ServesDomain(domain string) bool {
	if p.Domain == domain {
		return true
	}
	for _, d := range p.SecondaryDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// validate rejects malformed definitions at the boundary so nothing
// downstream has to tolerate partial profiles.
func (p *HandlerProfile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("handler has no name")
	}
	if strings.TrimSpace(p.Domain) == "" {
		return fmt.Errorf("handler %q has no domain", p.Name)
	}
	if len(p.PrimaryKeywords) == 0 && len(p.rawPatterns) == 0 {
		return fmt.Errorf("handler %q has neither keywords nor patterns", p.Name)
	}
	if p.WeightMultiplier <= 0 {
		return fmt.Errorf("handler %q has non-positive weight multiplier %.2f", p.Name, p.WeightMultiplier)
	}
	return nil
}
