package triage

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskrouter/internal/learning"
)

func newTestClassifier(t *testing.T) (*Classifier, *learning.Engine) {
	t.Helper()
	cfg := fixtureConfig()
	engine, err := learning.NewEngine(cfg.Learning)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	c, err := NewClassifier(cfg, StaticSource{Registry: fixtureRegistry(t)}, engine)
	require.NoError(t, err)
	return c, engine
}

func TestClassify_SingleDomainScenario(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	r := c.Classify("pytest async mock failures", nil)
	assert.Equal(t, StateSingleDomain, r.State)
	assert.Equal(t, "test-engineer", r.Handler)
	assert.GreaterOrEqual(t, r.Confidence, 0.7)
	assert.Equal(t, []string{"testing"}, r.Domains)
}

func TestClassify_StrategicEscalationScenario(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	r := c.Classify("comprehensive security performance testing analysis coordination across 5 domains", nil)
	assert.Equal(t, StateStrategicEscalation, r.State)
	assert.Equal(t, "chief-architect", r.Handler)
}

func TestClassify_EmptyQueryFallsBack(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	r := c.Classify("", nil)
	assert.Equal(t, StateFallback, r.State)
	assert.Equal(t, "generalist", r.Handler)
	assert.LessOrEqual(t, r.Confidence, 0.6)
	assert.Contains(t, r.Rationale, "query too short")
}

func TestClassify_MultiDomainWithConflicts(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	r := c.Classify("coordinate security audit and performance tuning and database migration", nil)
	assert.Equal(t, StateMultiDomainCoordinated, r.State)
	assert.Equal(t, "project-coordinator", r.Handler)
	assert.Contains(t, r.Domains, "security")
	assert.Contains(t, r.Domains, "performance")
	assert.Contains(t, r.Domains, "database")

	var high *ConflictRecord
	for i := range r.Conflicts {
		if r.Conflicts[i].Severity == SeverityHigh {
			high = &r.Conflicts[i]
		}
	}
	require.NotNil(t, high, "security/performance should register a high conflict")
	assert.ElementsMatch(t,
		[]string{"security", "performance"},
		[]string{high.DomainA, high.DomainB})
	assert.Contains(t, r.Rationale, "conflict-mediator")
}

func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	const query = "coordinate security audit and performance tuning and database migration"
	first := c.Classify(query, nil)
	second := c.Classify(query, nil)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated classification diverged (-first +second):\n%s", diff)
	}
}

func TestClassify_FeedbackImprovesRouting(t *testing.T) {
	t.Parallel()
	c, engine := newTestClassifier(t)

	const query = "optimize slow query performance"
	before := c.Classify(query, nil)
	require.Equal(t, StateSingleDomain, before.State)
	require.Equal(t, "performance-tuner", before.Handler)

	for i := 0; i < 5; i++ {
		c.Feedback(query, before.Handler, 0.8, learning.OutcomeSuccess)
	}
	after := c.Classify(query, nil)

	assert.Equal(t, "performance-tuner", after.Handler)
	assert.Greater(t, after.Confidence, before.Confidence)
	assert.EqualValues(t, 5, engine.TotalObservations())

	sug, ok := c.Suggest("optimize a slow query")
	require.True(t, ok)
	assert.Equal(t, "performance-tuner", sug.Handler)
	assert.Greater(t, sug.Confidence, before.Confidence,
		"learned suggestion should beat the pre-learning calibration")
}

func TestClassify_FailuresPullConfidenceBackDown(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	const query = "optimize slow query performance"
	base := c.Classify(query, nil)

	for i := 0; i < 3; i++ {
		c.Feedback(query, base.Handler, 0.8, learning.OutcomeSuccess)
	}
	boosted := c.Classify(query, nil)
	require.Greater(t, boosted.Confidence, base.Confidence)

	for i := 0; i < 3; i++ {
		c.Feedback(query, base.Handler, 0.8, learning.OutcomeFailure)
	}
	penalized := c.Classify(query, nil)
	assert.Less(t, penalized.Confidence, boosted.Confidence)
}

func TestClassifyBatch_MatchesSequential(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	queries := []string{
		"pytest async mock failures",
		"security audit of auth tokens",
		"",
		"coordinate security audit and performance tuning and database migration",
	}

	var sequential []SelectionResult
	for _, q := range queries {
		sequential = append(sequential, c.classifyWith(c.source.Current(), nil, q, nil))
	}

	batch, err := c.ClassifyBatch(context.Background(), queries)
	require.NoError(t, err)
	if diff := cmp.Diff(sequential, batch); diff != "" {
		t.Fatalf("batch diverged from sequential (-seq +batch):\n%s", diff)
	}
}

func TestClassifyBatch_CancelledContext(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ClassifyBatch(ctx, []string{"pytest async mock failures"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifier_Stats(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	c.Classify("pytest async mock failures", nil)
	c.Classify("security audit of auth tokens", nil)

	s := c.Stats()
	assert.EqualValues(t, 2, s.TotalSelections)
	assert.Greater(t, s.AverageConfidence, 0.0)
	assert.EqualValues(t, 1, s.DomainDistribution["testing"])
	assert.EqualValues(t, 1, s.DomainDistribution["security"])
}

func TestClassifier_MomentumFromRecentQueries(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier(t)

	qctx := &Context{RecentQueries: []string{"optimize slow query performance"}}
	scores := c.momentumScores(c.source.Current(), qctx)
	require.Len(t, scores, 1)
	assert.Equal(t, "performance", scores[0].Domain)

	// One conversation step back halves the pull.
	direct := c.classifyWith(c.source.Current(), nil, "optimize slow query performance", nil)
	assert.InDelta(t, direct.Confidence*c.cfg.Routing.MomentumDecay, scores[0].Confidence, 1e-9)

	// Older queries decay further.
	qctx.RecentQueries = []string{"optimize slow query performance", "pytest async mock failures"}
	scores = c.momentumScores(c.source.Current(), qctx)
	require.Len(t, scores, 2)
	assert.Less(t, scores[0].Confidence, scores[1].Confidence)

	// Too-short history entries are skipped, not scored.
	qctx.RecentQueries = []string{"ok"}
	assert.Empty(t, c.momentumScores(c.source.Current(), qctx))
}

func TestClassifier_NilEngine(t *testing.T) {
	t.Parallel()
	c, err := NewClassifier(fixtureConfig(), StaticSource{Registry: fixtureRegistry(t)}, nil)
	require.NoError(t, err)

	r := c.Classify("pytest async mock failures", nil)
	assert.Equal(t, StateSingleDomain, r.State)

	c.Feedback("anything", "test-engineer", 0.9, learning.OutcomeSuccess)
	_, ok := c.Suggest("anything")
	assert.False(t, ok)
}
