package triage

import (
	"sort"
	"strconv"
	"strings"

	"taskrouter/internal/config"
)

// coordinationSignals are connective and enumeration words that suggest the
// query deliberately spans domains.
var coordinationSignals = map[string]bool{
	"across": true, "alongside": true, "also": true, "and": true,
	"combined": true, "coordinate": true, "coordination": true,
	"integrate": true, "parallel": true, "plus": true, "sequential": true,
	"simultaneously": true, "then": true, "together": true,
}

// isolationSignals pull the other way: the user wants exactly one thing.
var isolationSignals = map[string]bool{
	"just": true, "only": true, "single": true, "specifically": true,
}

// domainCountUnits are the nouns a stated domain count attaches to,
// e.g. "across 5 domains".
var domainCountUnits = map[string]bool{
	"areas": true, "domains": true, "specialties": true, "teams": true,
}

// DomainDecision is the multi-domain detector output.
type DomainDecision struct {
	Qualifying        []DomainScore // primary first, confidence descending
	Threshold         float64
	IsMultiDomain     bool
	StatedDomainCount int // explicit "N domains" in the text, 0 if absent
}

// DetectMultiDomain decides whether a query needs coordination across
// domains. The qualification threshold is dynamic: a fraction of the top
// confidence, floored by config, and nudged by explicit coordination or
// isolation language. Momentum scores from conversational context are
// folded in at their (already decayed) confidence.
//
// Equal confidences keep registry iteration order: the sort is stable by
// contract, and tests pin that behavior.
func DetectMultiDomain(cfg config.RoutingConfig, scores []DomainScore, tokens []string, momentum []DomainScore) DomainDecision {
	candidates := foldMomentum(scores, momentum)

	sorted := make([]DomainScore, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	var d DomainDecision
	if len(sorted) == 0 {
		return d
	}

	top := sorted[0].Confidence
	threshold := top * cfg.SecondaryRatio
	if threshold < cfg.MinSecondaryThreshold {
		threshold = cfg.MinSecondaryThreshold
	}

	coordination, isolation := false, false
	for i, t := range tokens {
		if coordinationSignals[t] {
			coordination = true
		}
		if isolationSignals[t] {
			isolation = true
		}
		if domainCountUnits[t] && i > 0 {
			if n, err := strconv.Atoi(tokens[i-1]); err == nil && n > d.StatedDomainCount {
				d.StatedDomainCount = n
			}
		}
	}
	// An enumeration ("x, y and z") reads as coordination even without a
	// connective keyword; normalized commas are gone, so approximate with
	// repeated "and".
	if strings.Count(strings.Join(tokens, " "), " and ") >= 2 {
		coordination = true
	}
	if coordination {
		threshold -= cfg.CoordinationMargin
	}
	if isolation {
		threshold += cfg.CoordinationMargin
	}

	d.Threshold = threshold
	for i, s := range sorted {
		// The primary domain always qualifies; secondaries must strictly
		// exceed the threshold so noise domains stay out.
		if i == 0 || s.Confidence > threshold {
			d.Qualifying = append(d.Qualifying, s)
		}
	}
	d.IsMultiDomain = len(d.Qualifying) >= 2
	return d
}

// foldMomentum merges conversational-momentum scores into the candidate
// list. A domain already scored by this query keeps the higher confidence.
func foldMomentum(scores []DomainScore, momentum []DomainScore) []DomainScore {
	if len(momentum) == 0 {
		return scores
	}

	out := make([]DomainScore, len(scores))
	copy(out, scores)
	index := make(map[string]int, len(out))
	for i, s := range out {
		index[s.Domain] = i
	}

	for _, m := range momentum {
		if i, ok := index[m.Domain]; ok {
			if m.Confidence > out[i].Confidence {
				out[i].Confidence = m.Confidence
			}
			continue
		}
		index[m.Domain] = len(out)
		out = append(out, m)
	}
	return out
}
