package triage

import (
	"taskrouter/internal/config"
	"taskrouter/internal/registry"
	"taskrouter/internal/token"
)

// minQueryLength is the shortest normalized query worth classifying.
// Anything shorter takes the fallback fast path.
const minQueryLength = 3

// Features is the extractor output: per-domain sub-scores in registry
// order, plus the token view of the query the rest of the pipeline shares.
type Features struct {
	Query    string
	Tokens   []string
	TooShort bool
	Scores   []DomainScore // sub-scores only; Confidence filled by calibration
}

// ExtractFeatures tokenizes a query and computes keyword, pattern, and
// intent sub-scores for every registered domain. Pure function of the
// query and the registry snapshot.
func ExtractFeatures(reg *registry.Registry, cfg config.RoutingConfig, query string) Features {
	norm := token.Normalize(query)
	tokens := token.Tokenize(query)

	f := Features{Query: query, Tokens: tokens}
	if len(norm) < minQueryLength {
		f.TooShort = true
		// All-zero scores keep downstream shapes uniform.
		for _, p := range reg.Profiles() {
			f.Scores = append(f.Scores, DomainScore{Domain: p.Domain, Handler: p.Name})
		}
		return f
	}

	positions := tokenPositions(tokens)

	for _, p := range reg.Profiles() {
		score := DomainScore{Domain: p.Domain, Handler: p.Name}
		score.KeywordScore = keywordScore(p, tokens, positions)
		score.PatternScore = patternScore(p, norm, cfg.PatternMatchFactor)
		score.IntentScore = intentScore(p, positions, cfg.IntentBonus)
		f.Scores = append(f.Scores, score)
	}
	return f
}

// tokenPositions maps each token to its first occurrence index.
func tokenPositions(tokens []string) map[string]int {
	pos := make(map[string]int, len(tokens))
	for i, t := range tokens {
		if _, seen := pos[t]; !seen {
			pos[t] = i
		}
	}
	return pos
}

// keywordScore is the fraction of primary keywords present as whole words,
// weighted so that earlier matches contribute more:
// contribution = base * (1 - position/query_length).
func keywordScore(p *registry.HandlerProfile, tokens []string, positions map[string]int) float64 {
	if len(p.PrimaryKeywords) == 0 || len(tokens) == 0 {
		return 0
	}
	base := 1.0 / float64(len(p.PrimaryKeywords))
	total := 0.0
	for _, kw := range p.PrimaryKeywords {
		pos, ok := positions[kw]
		if !ok {
			continue
		}
		total += base * (1.0 - float64(pos)/float64(len(tokens)))
	}
	return clamp01(total)
}

// patternScore is the fraction of context patterns that match, with each
// match weighted heavier than a keyword match: patterns are more specific.
func patternScore(p *registry.HandlerProfile, norm string, factor float64) float64 {
	if len(p.ContextPatterns) == 0 {
		return 0
	}
	per := factor / float64(len(p.ContextPatterns))
	total := 0.0
	for _, re := range p.ContextPatterns {
		if re.MatchString(norm) {
			total += per
		}
	}
	return clamp01(total)
}

// intentScore grants a small flat bonus per intent verb present.
func intentScore(p *registry.HandlerProfile, positions map[string]int, bonus float64) float64 {
	total := 0.0
	for _, verb := range p.IntentVerbs {
		if _, ok := positions[verb]; ok {
			total += bonus
		}
	}
	return clamp01(total)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
