// Package triage implements the query classification pipeline: feature
// extraction, confidence calibration, multi-domain detection, conflict
// detection, and the selection policy. The whole path is pure computation
// over an immutable registry snapshot and an immutable learned-weight
// snapshot, so independent queries may classify fully in parallel.
package triage

// State is the terminal state of the selection policy.
type State int

const (
	StateSingleDomain State = iota
	StateMultiDomainCoordinated
	StateStrategicEscalation
	StateFallback
)

// MarshalJSON emits the state name rather than its ordinal.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s State) String() string {
	switch s {
	case StateSingleDomain:
		return "SINGLE_DOMAIN"
	case StateMultiDomainCoordinated:
		return "MULTI_DOMAIN_COORDINATED"
	case StateStrategicEscalation:
		return "STRATEGIC_ESCALATION"
	case StateFallback:
		return "FALLBACK"
	default:
		return "UNKNOWN"
	}
}

// Severity grades a detected conflict.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// DomainScore carries one domain's sub-scores and calibrated confidence.
// Computed per query and discarded after selection; never persisted.
type DomainScore struct {
	Domain       string
	Handler      string
	KeywordScore float64
	PatternScore float64
	IntentScore  float64
	Confidence   float64
}

// ConflictRecord flags a domain pair whose guidance may contradict.
type ConflictRecord struct {
	DomainA        string   `json:"domain_a"`
	DomainB        string   `json:"domain_b"`
	Severity       Severity `json:"severity"`
	IndicatorCount int      `json:"indicator_count"`
}

// SelectionResult is the immutable outcome of one classification.
type SelectionResult struct {
	State      State            `json:"state"`
	Handler    string           `json:"handler"`
	Confidence float64          `json:"confidence"`
	Domains    []string         `json:"domains,omitempty"` // qualifying domains, primary first
	Conflicts  []ConflictRecord `json:"conflicts,omitempty"`
	Rationale  string           `json:"rationale"`
}

// Context carries optional conversational context into classification.
// Recent queries are ordered oldest first.
type Context struct {
	RecentQueries []string
}
