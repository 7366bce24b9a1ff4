package triage

import (
	"fmt"
	"strings"

	"taskrouter/internal/config"
	"taskrouter/internal/registry"
)

// strategicTerms mark queries whose complexity asks for strategic
// coordination rather than a single specialist.
var strategicTerms = map[string]bool{
	"comprehensive": true, "crisis": true, "enterprise-wide": true,
	"overhaul": true, "strategic": true, "strategy": true,
}

// Select maps the pipeline outputs to a final handler. It is a pure
// decision function evaluated in fixed precedence order: FALLBACK, then
// STRATEGIC_ESCALATION, then MULTI_DOMAIN_COORDINATED, then SINGLE_DOMAIN.
// Ambiguity is resolved by that order, never by further querying.
func Select(reg *registry.Registry, cfg config.RoutingConfig, f Features, d DomainDecision, conflicts []ConflictRecord) SelectionResult {
	special := reg.Special()

	// 1. FALLBACK: degenerate queries never error, they route to the
	// designated default at fixed low confidence.
	if f.TooShort {
		return SelectionResult{
			State:      StateFallback,
			Handler:    special.Fallback,
			Confidence: cfg.FallbackConfidence,
			Rationale:  "query too short for classification",
		}
	}
	if len(d.Qualifying) == 0 || d.Qualifying[0].Confidence < cfg.MinConfidenceFloor {
		return SelectionResult{
			State:      StateFallback,
			Handler:    special.Fallback,
			Confidence: cfg.FallbackConfidence,
			Domains:    domainNames(d.Qualifying),
			Rationale:  fmt.Sprintf("no domain cleared the %.2f confidence floor", cfg.MinConfidenceFloor),
		}
	}

	top := d.Qualifying[0]
	qualCount := len(d.Qualifying)

	// 2. STRATEGIC_ESCALATION: too many fronts for one specialist, or a
	// smaller spread with explicitly strategic language. An explicit
	// "N domains" statement at or above the escalation count is believed.
	strategic := hasStrategicLanguage(f.Tokens)
	escalate := qualCount >= cfg.EscalationDomainCount ||
		d.StatedDomainCount >= cfg.EscalationDomainCount ||
		(qualCount >= cfg.StrategicDomainCount && strategic)
	if escalate && special.Strategic != "" {
		return SelectionResult{
			State:      StateStrategicEscalation,
			Handler:    special.Strategic,
			Confidence: top.Confidence,
			Domains:    domainNames(d.Qualifying),
			Conflicts:  conflicts,
			Rationale:  escalationRationale(qualCount, d.StatedDomainCount, strategic),
		}
	}

	// 3. MULTI_DOMAIN_COORDINATED: 2+ fronts below escalation scale.
	if d.IsMultiDomain && special.Coordination != "" {
		rationale := fmt.Sprintf("%d domains qualify for coordination", qualCount)
		if rec, ok := highestConflict(conflicts); ok && rec.Severity == SeverityHigh && special.Conflict != "" {
			rationale += fmt.Sprintf("; high-severity %s/%s conflict, recommend %s",
				rec.DomainA, rec.DomainB, special.Conflict)
		}
		return SelectionResult{
			State:      StateMultiDomainCoordinated,
			Handler:    special.Coordination,
			Confidence: top.Confidence,
			Domains:    domainNames(d.Qualifying),
			Conflicts:  conflicts,
			Rationale:  rationale,
		}
	}

	// 4. SINGLE_DOMAIN: the default path.
	return SelectionResult{
		State:      StateSingleDomain,
		Handler:    top.Handler,
		Confidence: top.Confidence,
		Domains:    domainNames(d.Qualifying),
		Conflicts:  conflicts,
		Rationale:  fmt.Sprintf("%s is the dominant domain at %.2f confidence", top.Domain, top.Confidence),
	}
}

func hasStrategicLanguage(tokens []string) bool {
	for _, t := range tokens {
		if strategicTerms[t] {
			return true
		}
	}
	return false
}

func escalationRationale(qualCount, stated int, strategic bool) string {
	var reasons []string
	if qualCount >= 5 {
		reasons = append(reasons, fmt.Sprintf("%d domains qualify", qualCount))
	}
	if stated >= 5 {
		reasons = append(reasons, fmt.Sprintf("query states %d domains", stated))
	}
	if strategic {
		reasons = append(reasons, "strategic-complexity language")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("%d domains qualify", qualCount))
	}
	return "strategic escalation: " + strings.Join(reasons, "; ")
}

func highestConflict(conflicts []ConflictRecord) (ConflictRecord, bool) {
	rank := map[Severity]int{SeverityLow: 0, SeverityMedium: 1, SeverityHigh: 2}
	best := -1
	var out ConflictRecord
	for _, c := range conflicts {
		if rank[c.Severity] > best {
			best = rank[c.Severity]
			out = c
		}
	}
	return out, best >= 0
}

func domainNames(scores []DomainScore) []string {
	if len(scores) == 0 {
		return nil
	}
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.Domain
	}
	return out
}
