package learning

import (
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"taskrouter/internal/config"
	"taskrouter/internal/logging"
	"taskrouter/internal/token"
)

// stripeCount spreads signatures over independent locks so concurrent
// Record calls for different signatures never block each other.
const stripeCount = 16

type weightMap map[string]*PatternWeight

// stripe holds one shard of the pattern store. Writers serialize on mu and
// publish a fresh map through ptr; readers only load ptr.
type stripe struct {
	mu  sync.Mutex
	ptr atomic.Pointer[weightMap]
}

// Engine owns all mutable learned state. The classification path reads it
// exclusively through Snapshot; only Record and Prune mutate.
type Engine struct {
	cfg     config.LearningConfig
	stripes [stripeCount]stripe
	store   *Store // nil when persistence is off

	// resolveDomain classifies a raw query into its primary domain for
	// signature computation. Injected by the classifier; identity of the
	// learning engine does not depend on it.
	resolveDomain atomic.Pointer[func(string) string]

	// now is swappable for decay tests.
	now func() time.Time

	totalObservations atomic.Int64
}

// NewEngine builds a learning engine. When cfg.StorePath is set, previously
// persisted weights are loaded before the engine is returned.
func NewEngine(cfg config.LearningConfig) (*Engine, error) {
	e := &Engine{cfg: cfg, now: time.Now}
	for i := range e.stripes {
		m := make(weightMap)
		e.stripes[i].ptr.Store(&m)
	}

	if cfg.StorePath != "" {
		store, err := NewStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		e.store = store

		weights, err := store.LoadAll()
		if err != nil {
			store.Close()
			return nil, err
		}
		for _, pw := range weights {
			s := e.stripeFor(pw.Signature)
			s.mu.Lock()
			e.publishLocked(s, pw)
			s.mu.Unlock()
		}
		logging.Learning("restored %d pattern weights from %s", len(weights), cfg.StorePath)
	}

	return e, nil
}

// SetDomainResolver injects the query-to-domain classification used for
// signature computation.
func (e *Engine) SetDomainResolver(fn func(string) string) {
	e.resolveDomain.Store(&fn)
}

// Close releases the persistence backend, if any.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

func stripeIndex(sig Signature) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sig))
	return int(h.Sum32() % stripeCount)
}

func (e *Engine) stripeFor(sig Signature) *stripe {
	return &e.stripes[stripeIndex(sig)]
}

// publishLocked swaps in a copy of the stripe map containing pw.
// Caller holds the stripe lock.
func (e *Engine) publishLocked(s *stripe, pw *PatternWeight) {
	old := *s.ptr.Load()
	next := make(weightMap, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[key(pw.Signature, pw.Handler)] = pw
	s.ptr.Store(&next)
}

// Record applies one feedback observation. Malformed input (empty query or
// handler, out-of-range confidence) is ignored without error: learning must
// never corrupt state from bad input. Successes only reinforce when the
// original selection was confident enough to trust; failures always penalize,
// and harder than successes reward.
func (e *Engine) Record(query, handler string, confidence float64, outcome Outcome) {
	if handler == "" || confidence < 0 || confidence > 1 {
		return
	}
	if outcome != OutcomeSuccess && outcome != OutcomeFailure {
		return
	}
	words := token.ContentWords(query)
	if len(words) == 0 {
		return
	}

	domain := ""
	if fn := e.resolveDomain.Load(); fn != nil {
		domain = (*fn)(query)
	}
	sig := ComputeSignature(query, domain)
	if sig == "" {
		return
	}

	s := e.stripeFor(sig)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	prev := (*s.ptr.Load())[key(sig, handler)]

	next := &PatternWeight{
		Signature: sig,
		Handler:   handler,
		Domain:    domain,
		Keywords:  words,
		Weight:    1.0,
		UpdatedAt: now,
	}
	if prev != nil {
		next.Keywords = prev.Keywords
		next.Weight = prev.Weight
		next.Confidence = prev.Confidence
		next.History = prev.History
	}

	switch outcome {
	case OutcomeSuccess:
		if confidence >= e.cfg.Threshold {
			next.Weight = e.clamp(next.Weight + e.cfg.SuccessIncrement)
			next.Confidence = confidence
		}
	case OutcomeFailure:
		next.Weight = e.clamp(next.Weight - e.cfg.FailurePenalty)
	}

	obs := Observation{ID: uuid.NewString(), At: now, Success: outcome == OutcomeSuccess}
	history := make([]Observation, 0, len(next.History)+1)
	history = append(history, next.History...)
	history = append(history, obs)
	if len(history) > e.cfg.HistoryCap {
		history = history[len(history)-e.cfg.HistoryCap:]
	}
	next.History = history

	e.publishLocked(s, next)
	e.totalObservations.Add(1)
	logging.LearningDebug("recorded %s for %s/%s: weight=%.2f window=%d",
		outcome, sig, handler, next.Weight, len(next.History))

	if e.store != nil {
		if err := e.store.Save(next); err != nil {
			logging.Error(logging.CategoryLearning, "persist pattern %s/%s: %v", sig, handler, err)
		}
	}
}

// clamp bounds a weight to [min, max], logging when the bound bites.
func (e *Engine) clamp(w float64) float64 {
	if w < e.cfg.MinWeight {
		logging.Warn(logging.CategoryLearning, "weight %.2f clamped to %.2f", w, e.cfg.MinWeight)
		return e.cfg.MinWeight
	}
	if w > e.cfg.MaxWeight {
		logging.Warn(logging.CategoryLearning, "weight %.2f clamped to %.2f", w, e.cfg.MaxWeight)
		return e.cfg.MaxWeight
	}
	return w
}

// decayFactor maps a pattern's age to its trust: fresh patterns count in
// full, patterns past the window count half.
func (e *Engine) decayFactor(age time.Duration) float64 {
	if e.cfg.DecayWindow <= 0 {
		return 1.0
	}
	d := 1.0 - float64(age)/float64(e.cfg.DecayWindow)
	if d < 0.5 {
		return 0.5
	}
	if d > 1.0 {
		return 1.0
	}
	return d
}

// Suggest returns the strongest learned routing for a query: the
// highest-weighted stored pattern whose keyword overlap clears the
// similarity floor. The stored confidence is time-decayed.
func (e *Engine) Suggest(query string) (Suggestion, bool) {
	words := token.ContentWords(query)
	if len(words) == 0 {
		return Suggestion{}, false
	}

	now := e.now()
	var best *PatternWeight
	var bestSim float64

	for i := range e.stripes {
		for _, pw := range *e.stripes[i].ptr.Load() {
			sim := token.Overlap(words, pw.Keywords)
			if sim < e.cfg.SimilarityFloor {
				continue
			}
			if best == nil || pw.Weight > best.Weight ||
				(pw.Weight == best.Weight && pw.UpdatedAt.After(best.UpdatedAt)) {
				best = pw
				bestSim = sim
			}
		}
	}

	if best == nil || best.Confidence == 0 {
		return Suggestion{}, false
	}

	return Suggestion{
		Handler:    best.Handler,
		Domain:     best.Domain,
		Confidence: best.Confidence * e.decayFactor(now.Sub(best.UpdatedAt)),
		Similarity: bestSim,
		Signature:  best.Signature,
	}, true
}

// Snapshot captures the current learned state for one classification call.
// The calibrator reads boosts from it without ever touching live maps.
func (e *Engine) Snapshot() *Snapshot {
	maps := make([]weightMap, stripeCount)
	for i := range e.stripes {
		maps[i] = *e.stripes[i].ptr.Load()
	}
	return &Snapshot{
		maps:   maps,
		engine: e,
		now:    e.now(),
	}
}

// Trend returns the rolling success rate for a (query, handler) pair.
func (e *Engine) Trend(query, handler string) (rate float64, n int, ok bool) {
	domain := ""
	if fn := e.resolveDomain.Load(); fn != nil {
		domain = (*fn)(query)
	}
	sig := ComputeSignature(query, domain)
	if sig == "" {
		return 0, 0, false
	}
	pw := (*e.stripeFor(sig).ptr.Load())[key(sig, handler)]
	if pw == nil {
		return 0, 0, false
	}
	rate, n = pw.SuccessRate()
	return rate, n, true
}

// TopPatterns returns the n highest-weighted learned patterns.
func (e *Engine) TopPatterns(n int) []PatternSummary {
	var all []PatternSummary
	for i := range e.stripes {
		for _, pw := range *e.stripes[i].ptr.Load() {
			rate, obs := pw.SuccessRate()
			all = append(all, PatternSummary{
				Signature:    pw.Signature,
				Handler:      pw.Handler,
				Domain:       pw.Domain,
				Keywords:     pw.Keywords,
				Weight:       pw.Weight,
				SuccessRate:  rate,
				Observations: obs,
				UpdatedAt:    pw.UpdatedAt,
			})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Weight != all[j].Weight {
			return all[i].Weight > all[j].Weight
		}
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// TotalObservations returns the number of feedback events recorded.
func (e *Engine) TotalObservations() int64 {
	return e.totalObservations.Load()
}

// Prune drops patterns whose last update is older than maxAge and whose
// weight has settled back to neutral. Returns the number removed.
func (e *Engine) Prune(maxAge time.Duration) int {
	cutoff := e.now().Add(-maxAge)
	removed := 0

	for i := range e.stripes {
		s := &e.stripes[i]
		s.mu.Lock()
		old := *s.ptr.Load()
		next := make(weightMap, len(old))
		for k, pw := range old {
			stale := pw.UpdatedAt.Before(cutoff) && pw.Weight >= 0.95 && pw.Weight <= 1.05
			if stale {
				removed++
				if e.store != nil {
					if err := e.store.Delete(pw.Signature, pw.Handler); err != nil {
						logging.Error(logging.CategoryLearning, "prune %s/%s: %v", pw.Signature, pw.Handler, err)
					}
				}
				continue
			}
			next[k] = pw
		}
		s.ptr.Store(&next)
		s.mu.Unlock()
	}

	if removed > 0 {
		logging.Learning("pruned %d stale pattern weights", removed)
	}
	return removed
}
