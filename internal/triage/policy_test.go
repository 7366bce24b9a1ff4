package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskrouter/internal/config"
)

func decisionOf(scores ...DomainScore) DomainDecision {
	return DomainDecision{
		Qualifying:    scores,
		IsMultiDomain: len(scores) >= 2,
	}
}

func featuresOf(query string) Features {
	return Features{Query: query, Tokens: strings.Fields(query)}
}

func TestSelect_TooShortGoesToFallback(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	r := Select(reg, cfg, Features{Query: "ok", TooShort: true}, DomainDecision{}, nil)
	assert.Equal(t, StateFallback, r.State)
	assert.Equal(t, "generalist", r.Handler)
	assert.Equal(t, cfg.FallbackConfidence, r.Confidence)
	assert.Equal(t, "query too short for classification", r.Rationale)
}

func TestSelect_BelowFloorGoesToFallback(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	d := decisionOf(DomainScore{Domain: "security", Handler: "security-auditor", Confidence: 0.2})
	r := Select(reg, cfg, featuresOf("vaguely about stuff"), d, nil)
	assert.Equal(t, StateFallback, r.State)
	assert.Equal(t, "generalist", r.Handler)
	assert.Contains(t, r.Rationale, "confidence floor")
}

func TestSelect_SingleDomain(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	d := decisionOf(DomainScore{Domain: "testing", Handler: "test-engineer", Confidence: 0.8})
	r := Select(reg, cfg, featuresOf("pytest mock failures"), d, nil)
	assert.Equal(t, StateSingleDomain, r.State)
	assert.Equal(t, "test-engineer", r.Handler)
	assert.InDelta(t, 0.8, r.Confidence, 1e-9)
	assert.Equal(t, []string{"testing"}, r.Domains)
}

func TestSelect_MultiDomainCoordinated(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	d := decisionOf(
		DomainScore{Domain: "security", Handler: "security-auditor", Confidence: 0.7},
		DomainScore{Domain: "performance", Handler: "performance-tuner", Confidence: 0.5},
	)
	r := Select(reg, cfg, featuresOf("harden and speed up auth"), d, nil)
	assert.Equal(t, StateMultiDomainCoordinated, r.State)
	assert.Equal(t, "project-coordinator", r.Handler)
	assert.Equal(t, []string{"security", "performance"}, r.Domains)
}

func TestSelect_HighConflictRecommendsMediator(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	d := decisionOf(
		DomainScore{Domain: "security", Handler: "security-auditor", Confidence: 0.7},
		DomainScore{Domain: "performance", Handler: "performance-tuner", Confidence: 0.5},
	)
	conflicts := []ConflictRecord{
		{DomainA: "security", DomainB: "performance", Severity: SeverityHigh, IndicatorCount: 3},
	}
	r := Select(reg, cfg, featuresOf("harden and speed up auth"), d, conflicts)
	assert.Equal(t, StateMultiDomainCoordinated, r.State)
	assert.Contains(t, r.Rationale, "conflict-mediator")
	assert.Equal(t, conflicts, r.Conflicts)
}

func TestSelect_EscalationPrecedence(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	wide := decisionOf(
		DomainScore{Domain: "security", Handler: "security-auditor", Confidence: 0.8},
		DomainScore{Domain: "performance", Handler: "performance-tuner", Confidence: 0.7},
		DomainScore{Domain: "database", Handler: "database-admin", Confidence: 0.6},
		DomainScore{Domain: "testing", Handler: "test-engineer", Confidence: 0.55},
		DomainScore{Domain: "frontend", Handler: "frontend-dev", Confidence: 0.5},
	)

	tests := []struct {
		name  string
		query string
		d     DomainDecision
		want  State
	}{
		{
			name:  "five qualifying domains escalate",
			query: "overlapping work everywhere",
			d:     wide,
			want:  StateStrategicEscalation,
		},
		{
			name:  "stated domain count escalates past detection",
			query: "review work across 5 domains",
			d: func() DomainDecision {
				d := decisionOf(DomainScore{Domain: "security", Handler: "security-auditor", Confidence: 0.6})
				d.StatedDomainCount = 5
				return d
			}(),
			want: StateStrategicEscalation,
		},
		{
			name:  "three domains with strategic language escalate",
			query: "comprehensive overhaul of auth speed and docs",
			d: decisionOf(
				DomainScore{Domain: "security", Handler: "security-auditor", Confidence: 0.7},
				DomainScore{Domain: "performance", Handler: "performance-tuner", Confidence: 0.6},
				DomainScore{Domain: "documentation", Handler: "docs-writer", Confidence: 0.5},
			),
			want: StateStrategicEscalation,
		},
		{
			name:  "three domains without strategic language coordinate",
			query: "fix auth speed and docs",
			d: decisionOf(
				DomainScore{Domain: "security", Handler: "security-auditor", Confidence: 0.7},
				DomainScore{Domain: "performance", Handler: "performance-tuner", Confidence: 0.6},
				DomainScore{Domain: "documentation", Handler: "docs-writer", Confidence: 0.5},
			),
			want: StateMultiDomainCoordinated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := Select(reg, cfg, featuresOf(tt.query), tt.d, nil)
			assert.Equal(t, tt.want, r.State)
			if tt.want == StateStrategicEscalation {
				assert.Equal(t, "chief-architect", r.Handler)
				assert.Contains(t, r.Rationale, "strategic escalation")
			}
		})
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "SINGLE_DOMAIN", StateSingleDomain.String())
	assert.Equal(t, "MULTI_DOMAIN_COORDINATED", StateMultiDomainCoordinated.String())
	assert.Equal(t, "STRATEGIC_ESCALATION", StateStrategicEscalation.String())
	assert.Equal(t, "FALLBACK", StateFallback.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}
