package triage

import (
	"taskrouter/internal/config"
	"taskrouter/internal/registry"
	"taskrouter/internal/rules"
	"taskrouter/internal/token"
)

// ConflictDetector flags qualifying-domain pairs whose guidance may
// contradict. The static antagonism table and resource-term facts come from
// the evaluated rulebase; the dynamic heuristic checks whether both
// handlers' own vocabularies reference the same finite resource.
type ConflictDetector struct {
	table *rules.ConflictTable
	cfg   config.RoutingConfig
}

// NewConflictDetector builds a detector over an evaluated conflict table.
func NewConflictDetector(table *rules.ConflictTable, cfg config.RoutingConfig) *ConflictDetector {
	return &ConflictDetector{table: table, cfg: cfg}
}

// Detect examines every unordered pair of qualifying domains. Severity is
// high when both a static antagonism and a resource overlap support the
// conflict, medium when exactly one does, low otherwise — and a low-severity
// record is only emitted with enough supporting indicators to not be noise.
// Each pair produces at most one record regardless of order.
func (d *ConflictDetector) Detect(reg *registry.Registry, qualifying []DomainScore) []ConflictRecord {
	var records []ConflictRecord

	for i := 0; i < len(qualifying); i++ {
		for j := i + 1; j < len(qualifying); j++ {
			a, b := qualifying[i].Domain, qualifying[j].Domain
			if a == b {
				continue
			}
			if rec, ok := d.evaluatePair(reg, a, b); ok {
				records = append(records, rec)
			}
		}
	}
	return records
}

func (d *ConflictDetector) evaluatePair(reg *registry.Registry, a, b string) (ConflictRecord, bool) {
	indicators := 0

	antagonistic := d.table.Antagonistic(a, b)
	if antagonistic {
		indicators++
	}

	shared := d.table.SharedResources(a, b)
	indicators += len(shared)

	// Dynamic heuristic: both handlers' own keyword vocabularies name the
	// same finite resource, even if the rulebase does not tie their
	// domains to it.
	profileShared := d.profileResourceOverlap(reg, a, b)
	indicators += len(profileShared)

	resourceOverlap := len(shared) > 0 || len(profileShared) > 0

	var severity Severity
	switch {
	case antagonistic && resourceOverlap:
		severity = SeverityHigh
	case antagonistic || resourceOverlap:
		severity = SeverityMedium
	default:
		severity = SeverityLow
	}

	if severity == SeverityLow && indicators < d.cfg.LowSeverityIndicators {
		return ConflictRecord{}, false
	}
	if indicators == 0 {
		return ConflictRecord{}, false
	}

	return ConflictRecord{
		DomainA:        a,
		DomainB:        b,
		Severity:       severity,
		IndicatorCount: indicators,
	}, true
}

// profileResourceOverlap returns resource terms that appear in both
// domains' handler vocabularies (keywords and raw patterns).
func (d *ConflictDetector) profileResourceOverlap(reg *registry.Registry, a, b string) []string {
	pa, okA := reg.ByDomain(a)
	pb, okB := reg.ByDomain(b)
	if !okA || !okB {
		return nil
	}

	vocabA := profileVocabulary(pa)
	vocabB := profileVocabulary(pb)

	var shared []string
	seen := make(map[string]bool)
	for _, term := range d.table.Resources(a) {
		if vocabA[term] && vocabB[term] && !seen[term] {
			seen[term] = true
			shared = append(shared, term)
		}
	}
	for _, term := range d.table.Resources(b) {
		if vocabA[term] && vocabB[term] && !seen[term] {
			seen[term] = true
			shared = append(shared, term)
		}
	}
	return shared
}

func profileVocabulary(p *registry.HandlerProfile) map[string]bool {
	vocab := make(map[string]bool)
	for _, kw := range p.PrimaryKeywords {
		for _, t := range token.Tokenize(kw) {
			vocab[t] = true
		}
	}
	for _, raw := range p.RawPatterns() {
		for _, t := range token.Tokenize(raw) {
			vocab[t] = true
		}
	}
	return vocab
}
