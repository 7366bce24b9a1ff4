package config

import "fmt"

// RoutingConfig tunes the classification pipeline: sub-score blending,
// multi-domain qualification, conflict gating, and escalation policy.
type RoutingConfig struct {
	// Calibrator blend weights. Must sum to 1.0.
	KeywordWeight float64 `yaml:"keyword_weight"` // default 0.4
	PatternWeight float64 `yaml:"pattern_weight"` // default 0.4
	IntentWeight  float64 `yaml:"intent_weight"`  // default 0.2

	// PatternMatchFactor scales a context-pattern match relative to a
	// keyword match. Patterns are more specific, so they weigh heavier.
	PatternMatchFactor float64 `yaml:"pattern_match_factor"` // default 1.4

	// IntentBonus is the flat contribution of one matched intent verb.
	IntentBonus float64 `yaml:"intent_bonus"` // default 0.3

	// MinConfidenceFloor is the minimum confidence any domain must reach
	// before routing anywhere but FALLBACK.
	MinConfidenceFloor float64 `yaml:"min_confidence_floor"` // default 0.3

	// MinSecondaryThreshold bounds the dynamic multi-domain threshold
	// from below: threshold = max(MinSecondaryThreshold, top*SecondaryRatio).
	MinSecondaryThreshold float64 `yaml:"min_secondary_threshold"` // default 0.25
	SecondaryRatio        float64 `yaml:"secondary_ratio"`         // default 0.6

	// CoordinationMargin raises or lowers the dynamic threshold when the
	// query carries explicit coordination or isolation language.
	CoordinationMargin float64 `yaml:"coordination_margin"` // default 0.05

	// EscalationDomainCount is the qualifying-domain count that always
	// triggers strategic escalation.
	EscalationDomainCount int `yaml:"escalation_domain_count"` // default 5

	// StrategicDomainCount triggers escalation when combined with
	// strategic-complexity language in the query.
	StrategicDomainCount int `yaml:"strategic_domain_count"` // default 3

	// FallbackConfidence is the fixed confidence reported on FALLBACK.
	FallbackConfidence float64 `yaml:"fallback_confidence"` // default 0.2

	// LowSeverityIndicators is the minimum supporting-indicator count
	// before a low-severity conflict is reported at all.
	LowSeverityIndicators int `yaml:"low_severity_indicators"` // default 3

	// MomentumDecay scales the confidence of domains folded in from
	// recent conversational context. Each step back decays again.
	MomentumDecay float64 `yaml:"momentum_decay"` // default 0.5
}

// DefaultRouting returns the production routing defaults.
func DefaultRouting() RoutingConfig {
	return RoutingConfig{
		KeywordWeight:         0.4,
		PatternWeight:         0.4,
		IntentWeight:          0.2,
		PatternMatchFactor:    1.4,
		IntentBonus:           0.3,
		MinConfidenceFloor:    0.3,
		MinSecondaryThreshold: 0.25,
		SecondaryRatio:        0.6,
		CoordinationMargin:    0.05,
		EscalationDomainCount: 5,
		StrategicDomainCount:  3,
		FallbackConfidence:    0.2,
		LowSeverityIndicators: 3,
		MomentumDecay:         0.5,
	}
}

// Validate checks the routing invariants.
func (r *RoutingConfig) Validate() error {
	sum := r.KeywordWeight + r.PatternWeight + r.IntentWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("blend weights must sum to 1.0, got %.3f", sum)
	}
	if r.MinConfidenceFloor < 0 || r.MinConfidenceFloor > 1 {
		return fmt.Errorf("min_confidence_floor %.2f outside [0,1]", r.MinConfidenceFloor)
	}
	if r.SecondaryRatio <= 0 || r.SecondaryRatio >= 1 {
		return fmt.Errorf("secondary_ratio %.2f outside (0,1)", r.SecondaryRatio)
	}
	if r.EscalationDomainCount < r.StrategicDomainCount {
		return fmt.Errorf("escalation_domain_count %d below strategic_domain_count %d",
			r.EscalationDomainCount, r.StrategicDomainCount)
	}
	return nil
}
