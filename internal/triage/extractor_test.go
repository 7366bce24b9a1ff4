package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskrouter/internal/config"
)

func scoreFor(t *testing.T, f Features, domain string) DomainScore {
	t.Helper()
	for _, s := range f.Scores {
		if s.Domain == domain {
			return s
		}
	}
	t.Fatalf("no score for domain %q", domain)
	return DomainScore{}
}

func TestExtractFeatures_TooShort(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	for _, q := range []string{"", "  ", "hi", "a?!"} {
		f := ExtractFeatures(reg, cfg, q)
		assert.True(t, f.TooShort, "query %q", q)
		require.Len(t, f.Scores, reg.Len())
		for _, s := range f.Scores {
			assert.Zero(t, s.KeywordScore)
			assert.Zero(t, s.PatternScore)
			assert.Zero(t, s.IntentScore)
		}
	}
}

func TestExtractFeatures_KeywordPositionWeighting(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	early := ExtractFeatures(reg, cfg, "pytest setup for the deployment pipeline")
	late := ExtractFeatures(reg, cfg, "deployment pipeline setup for pytest")

	se := scoreFor(t, early, "testing")
	sl := scoreFor(t, late, "testing")
	assert.Greater(t, se.KeywordScore, sl.KeywordScore,
		"earlier keyword mention should score higher")
}

func TestExtractFeatures_WholeWordsOnly(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	// "mockingbird" must not count as the keyword "mock".
	f := ExtractFeatures(reg, cfg, "the mockingbird essay")
	assert.Zero(t, scoreFor(t, f, "testing").KeywordScore)

	f = ExtractFeatures(reg, cfg, "fix the mock in this suite")
	assert.Greater(t, scoreFor(t, f, "testing").KeywordScore, 0.0)
}

func TestExtractFeatures_PatternsAndIntents(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	f := ExtractFeatures(reg, cfg, "debug why the mock fails under pytest")
	s := scoreFor(t, f, "testing")
	// Both testing patterns match, so the pattern score saturates.
	assert.InDelta(t, 1.0, s.PatternScore, 1e-9)
	// One intent verb ("debug") present.
	assert.InDelta(t, cfg.IntentBonus, s.IntentScore, 1e-9)

	// Case-insensitive matching throughout.
	upper := ExtractFeatures(reg, cfg, "DEBUG WHY THE MOCK FAILS UNDER PYTEST")
	assert.Equal(t, s, scoreFor(t, upper, "testing"))
}

func TestExtractFeatures_UnrelatedDomainsScoreZero(t *testing.T) {
	t.Parallel()
	reg := fixtureRegistry(t)
	cfg := config.DefaultRouting()

	f := ExtractFeatures(reg, cfg, "pytest async mock failures")
	for _, domain := range []string{"security", "performance", "database", "frontend", "documentation"} {
		s := scoreFor(t, f, domain)
		assert.Zero(t, s.KeywordScore, domain)
		assert.Zero(t, s.PatternScore, domain)
		assert.Zero(t, s.IntentScore, domain)
	}
}
