package registry

import (
	"fmt"
)

// SpecialHandlers names the handlers the selection policy routes to when it
// cannot route to a single-domain specialist.
type SpecialHandlers struct {
	Fallback     string // default handler for FALLBACK
	Coordination string // cross-domain coordination handler
	Strategic    string // strategic escalation handler
	Conflict     string // conflict-resolution recommendation
}

// Registry is the immutable in-memory handler catalog. Iteration order is
// definition order; the multi-domain detector's stable tie-break depends
// on it, so it is part of the contract, not an accident.
type Registry struct {
	profiles []*HandlerProfile
	byName   map[string]*HandlerProfile
	byDomain map[string]*HandlerProfile
	special  SpecialHandlers
}

// LoadError is returned when handler definitions cannot produce a usable
// registry. It is fatal at startup: an empty or invalid registry makes the
// whole router meaningless.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry load failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("registry load failed: %s", e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// New assembles a registry from validated profiles. It refuses to build
// with zero handlers or duplicate names/domains.
func New(profiles []*HandlerProfile, special SpecialHandlers) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, &LoadError{Reason: "no handlers defined"}
	}

	r := &Registry{
		profiles: profiles,
		byName:   make(map[string]*HandlerProfile, len(profiles)),
		byDomain: make(map[string]*HandlerProfile, len(profiles)),
		special:  special,
	}

	for _, p := range profiles {
		if err := p.validate(); err != nil {
			return nil, &LoadError{Reason: "invalid handler definition", Err: err}
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, &LoadError{Reason: fmt.Sprintf("duplicate handler name %q", p.Name)}
		}
		if _, dup := r.byDomain[p.Domain]; dup {
			return nil, &LoadError{Reason: fmt.Sprintf("duplicate primary domain %q", p.Domain)}
		}
		r.byName[p.Name] = p
		r.byDomain[p.Domain] = p
	}

	if special.Fallback == "" {
		// Without a designated fallback the policy would have nowhere to
		// send degenerate queries. Default to the first handler.
		r.special.Fallback = profiles[0].Name
	}
	return r, nil
}

// Profiles returns the profiles in definition order.
func (r *Registry) Profiles() []*HandlerProfile {
	return r.profiles
}

// ByDomain returns the primary handler for a domain.
func (r *Registry) ByDomain(domain string) (*HandlerProfile, bool) {
	p, ok := r.byDomain[domain]
	return p, ok
}

// ByName returns a handler profile by name.
func (r *Registry) ByName(name string) (*HandlerProfile, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Domains returns all primary domains in definition order.
func (r *Registry) Domains() []string {
	out := make([]string, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p.Domain)
	}
	return out
}

// Special returns the designated special handlers.
func (r *Registry) Special() SpecialHandlers {
	return r.special
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	return len(r.profiles)
}
