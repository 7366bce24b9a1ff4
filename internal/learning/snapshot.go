package learning

import "time"

// Snapshot is an immutable view of the learned weights, captured once per
// classification call. Reads against it are race-free by construction: the
// underlying maps are never mutated after publication.
type Snapshot struct {
	maps   []weightMap
	engine *Engine
	now    time.Time
}

// Boost returns the learned multiplicative boost for a (signature, handler)
// pair, decayed toward neutral with age. A pair that was never observed
// boosts by exactly 1.0.
func (s *Snapshot) Boost(sig Signature, handler string) float64 {
	if s == nil || sig == "" {
		return 1.0
	}
	pw := s.lookup(sig, handler)
	if pw == nil {
		return 1.0
	}
	// Decay pulls the deviation from neutral toward zero, not the weight
	// toward zero: an old 1.6 behaves like 1.3, an old 0.4 like 0.7.
	decay := s.engine.decayFactor(s.now.Sub(pw.UpdatedAt))
	return 1.0 + (pw.Weight-1.0)*decay
}

// Weight returns the raw stored weight for a pair, if present.
func (s *Snapshot) Weight(sig Signature, handler string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	pw := s.lookup(sig, handler)
	if pw == nil {
		return 0, false
	}
	return pw.Weight, true
}

func (s *Snapshot) lookup(sig Signature, handler string) *PatternWeight {
	return s.maps[stripeIndex(sig)][key(sig, handler)]
}
