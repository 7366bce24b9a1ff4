package triage

import (
	"taskrouter/internal/config"
	"taskrouter/internal/learning"
	"taskrouter/internal/registry"
)

// Calibrate combines sub-scores into one calibrated confidence per domain.
// The blend is keyword 0.4 / pattern 0.4 / intent 0.2 (configurable), then
// the profile's static weight multiplier, then the learned boost for the
// (query signature, handler) pair from the snapshot, decayed toward neutral
// with age. The result is clamped to [0, 1].
//
// Deterministic for a fixed registry and snapshot, and strictly read-only
// against both. A nil snapshot means no learned adjustment.
func Calibrate(reg *registry.Registry, cfg config.RoutingConfig, f Features, snap *learning.Snapshot) []DomainScore {
	out := make([]DomainScore, len(f.Scores))
	copy(out, f.Scores)
	if f.TooShort {
		return out
	}

	for i := range out {
		base := out[i].KeywordScore*cfg.KeywordWeight +
			out[i].PatternScore*cfg.PatternWeight +
			out[i].IntentScore*cfg.IntentWeight

		multiplier := 1.0
		if p, ok := reg.ByName(out[i].Handler); ok {
			multiplier = p.WeightMultiplier
		}

		boost := 1.0
		if snap != nil {
			sig := learning.ComputeSignature(f.Query, out[i].Domain)
			boost = snap.Boost(sig, out[i].Handler)
		}

		out[i].Confidence = clamp01(base * multiplier * boost)
	}
	return out
}
