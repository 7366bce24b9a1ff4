package triage

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"taskrouter/internal/config"
	"taskrouter/internal/learning"
	"taskrouter/internal/logging"
	"taskrouter/internal/registry"
	"taskrouter/internal/rules"
)

// RegistrySource yields the registry snapshot in effect for one call.
// A static registry and the hot-reload watcher both satisfy it.
type RegistrySource interface {
	Current() *registry.Registry
}

// StaticSource wraps a registry that never changes.
type StaticSource struct{ Registry *registry.Registry }

// Current returns the wrapped registry.
func (s StaticSource) Current() *registry.Registry { return s.Registry }

// Classifier wires the full pipeline together: one Classify call runs
// extraction, calibration, multi-domain detection, conflict detection, and
// selection against consistent registry and learned-weight snapshots.
type Classifier struct {
	cfg       *config.Config
	source    RegistrySource
	engine    *learning.Engine
	conflicts *ConflictDetector

	statsMu sync.Mutex
	stats   statsState
}

type statsState struct {
	totalSelections int64
	confidenceSum   float64
	domainCounts    map[string]int64
}

// Stats is the read-only introspection view of the classifier.
type Stats struct {
	TotalSelections    int64
	AverageConfidence  float64
	DomainDistribution map[string]int64
	TopPatterns        []learning.PatternSummary
}

// NewClassifier assembles a classifier. The conflict rulebase is evaluated
// here, once; the learning engine's domain resolver is bound to this
// classifier's own extraction so signatures carry domain context.
func NewClassifier(cfg *config.Config, source RegistrySource, engine *learning.Engine) (*Classifier, error) {
	table, err := rules.LoadConflictTable()
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		cfg:       cfg,
		source:    source,
		engine:    engine,
		conflicts: NewConflictDetector(table, cfg.Routing),
		stats:     statsState{domainCounts: make(map[string]int64)},
	}

	if engine != nil {
		engine.SetDomainResolver(c.topDomain)
	}
	return c, nil
}

// Classify routes one query. It never returns an error: degenerate input
// lands in FALLBACK, not in the caller's lap. Deterministic for a fixed
// registry and unchanged learned weights.
func (c *Classifier) Classify(query string, qctx *Context) SelectionResult {
	reg := c.source.Current()
	var snap *learning.Snapshot
	if c.engine != nil {
		snap = c.engine.Snapshot()
	}

	result := c.classifyWith(reg, snap, query, qctx)
	c.recordStats(result)
	logging.Triage("classified %q -> %s (%s, %.2f)", query, result.Handler, result.State, result.Confidence)
	return result
}

// classifyWith is the pure pipeline body shared by Classify and the batch
// path: no shared state is touched beyond the supplied snapshots.
func (c *Classifier) classifyWith(reg *registry.Registry, snap *learning.Snapshot, query string, qctx *Context) SelectionResult {
	f := ExtractFeatures(reg, c.cfg.Routing, query)
	scores := Calibrate(reg, c.cfg.Routing, f, snap)
	momentum := c.momentumScores(reg, qctx)
	decision := DetectMultiDomain(c.cfg.Routing, scores, f.Tokens, momentum)
	conflicts := c.conflicts.Detect(reg, decision.Qualifying)
	return Select(reg, c.cfg.Routing, f, decision, conflicts)
}

// ClassifyBatch classifies independent queries in parallel. The whole batch
// shares one registry and one learned-weight snapshot, so results match
// what sequential calls against unchanged state would produce.
func (c *Classifier) ClassifyBatch(ctx context.Context, queries []string) ([]SelectionResult, error) {
	reg := c.source.Current()
	var snap *learning.Snapshot
	if c.engine != nil {
		snap = c.engine.Snapshot()
	}

	results := make([]SelectionResult, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = c.classifyWith(reg, snap, q, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		c.recordStats(r)
	}
	return results, nil
}

// Feedback reports an observed outcome back to the learning engine.
// Each call is a fresh observation; repeating it legitimately shifts
// weights further.
func (c *Classifier) Feedback(query, handler string, confidence float64, outcome learning.Outcome) {
	if c.engine == nil {
		return
	}
	c.engine.Record(query, handler, confidence, outcome)
}

// Suggest exposes the learning engine's best stored routing for a query.
func (c *Classifier) Suggest(query string) (learning.Suggestion, bool) {
	if c.engine == nil {
		return learning.Suggestion{}, false
	}
	return c.engine.Suggest(query)
}

// Stats returns routing telemetry. Read-only and non-blocking beyond a
// short counter lock.
func (c *Classifier) Stats() Stats {
	c.statsMu.Lock()
	total := c.stats.totalSelections
	sum := c.stats.confidenceSum
	dist := make(map[string]int64, len(c.stats.domainCounts))
	for d, n := range c.stats.domainCounts {
		dist[d] = n
	}
	c.statsMu.Unlock()

	s := Stats{
		TotalSelections:    total,
		DomainDistribution: dist,
	}
	if total > 0 {
		s.AverageConfidence = sum / float64(total)
	}
	if c.engine != nil {
		s.TopPatterns = c.engine.TopPatterns(10)
	}
	return s
}

func (c *Classifier) recordStats(r SelectionResult) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.totalSelections++
	c.stats.confidenceSum += r.Confidence
	for _, d := range r.Domains {
		c.stats.domainCounts[d]++
	}
}

// momentumScores classifies each recent query with static calibration only
// and folds its top domain in at decayed confidence: the further back the
// query, the weaker its pull.
func (c *Classifier) momentumScores(reg *registry.Registry, qctx *Context) []DomainScore {
	if qctx == nil || len(qctx.RecentQueries) == 0 {
		return nil
	}

	decay := c.cfg.Routing.MomentumDecay
	var out []DomainScore
	n := len(qctx.RecentQueries)
	for i, q := range qctx.RecentQueries {
		f := ExtractFeatures(reg, c.cfg.Routing, q)
		if f.TooShort {
			continue
		}
		scores := Calibrate(reg, c.cfg.Routing, f, nil)
		top, ok := topScore(scores)
		if !ok {
			continue
		}
		// Most recent query is one decay step away, oldest is n steps.
		steps := n - i
		weight := 1.0
		for s := 0; s < steps; s++ {
			weight *= decay
		}
		top.Confidence *= weight
		out = append(out, top)
	}
	return out
}

// topDomain is the domain resolver handed to the learning engine: static
// extraction and calibration only, so signature computation never depends
// on the weights it keys.
func (c *Classifier) topDomain(query string) string {
	reg := c.source.Current()
	f := ExtractFeatures(reg, c.cfg.Routing, query)
	if f.TooShort {
		return ""
	}
	top, ok := topScore(Calibrate(reg, c.cfg.Routing, f, nil))
	if !ok || top.Confidence == 0 {
		return ""
	}
	return top.Domain
}

func topScore(scores []DomainScore) (DomainScore, bool) {
	best := DomainScore{}
	found := false
	for _, s := range scores {
		if !found || s.Confidence > best.Confidence {
			best = s
			found = true
		}
	}
	return best, found
}
