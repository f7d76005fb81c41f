// file: internal/resolver/resolver.go
// version: 1.2.0
// guid: 0d2e4f6a-8b0c-4d1e-9f3a-5b7c9d1e3f5a

package resolver

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Pass identifies which matching pass accepted a candidate.
type Pass string

const (
	PassExact    Pass = "exact"
	PassWeighted Pass = "weighted"
	PassPartial  Pass = "partial"
)

// Default acceptance thresholds on the 0-100 fuzzy score scale. The
// thresholds are the contract; the underlying scorers are replaceable.
const (
	DefaultWeightedThreshold = 80
	DefaultPartialThreshold  = 85
)

// Thresholds are the acceptance cutoffs for the two fuzzy passes.
type Thresholds struct {
	Weighted int
	Partial  int
}

// DefaultThresholds returns the stock cutoffs (80 weighted, 85 partial).
func DefaultThresholds() Thresholds {
	return Thresholds{Weighted: DefaultWeightedThreshold, Partial: DefaultPartialThreshold}
}

// Match is a successful resolution of noisy input to a known catalog title.
type Match struct {
	Title      string // the matched candidate, verbatim
	Index      int    // position of the candidate in the supplied slice
	Confidence int    // 0-100 fuzzy score; 100 for exact matches
	Pass       Pass   // which pass accepted the candidate
}

// Resolve maps normalized user input to the closest candidate title using
// the default thresholds. See ResolveWithThresholds.
func Resolve(normalizedInput string, candidates []string) (Match, bool) {
	return ResolveWithThresholds(normalizedInput, candidates, DefaultThresholds())
}

// ResolveWithThresholds maps normalized user input to the closest candidate
// title, or reports no match. It never fails: absence is a normal return.
//
// Pass order: exact equality short-circuits; a weighted-ratio sweep accepts
// at t.Weighted; a partial-ratio (substring containment) sweep accepts at
// t.Partial. Ties within a pass go to the first candidate in slice order,
// which for catalog candidates means catalog order.
func ResolveWithThresholds(normalizedInput string, candidates []string, t Thresholds) (Match, bool) {
	if normalizedInput == "" || len(candidates) == 0 {
		return Match{}, false
	}

	for i, c := range candidates {
		if c == normalizedInput {
			return Match{Title: c, Index: i, Confidence: 100, Pass: PassExact}, true
		}
	}

	weighted := func(a, b string) int { return fuzzy.WRatio(a, b) }
	partial := func(a, b string) int { return fuzzy.PartialRatio(a, b) }

	if m, ok := bestBy(normalizedInput, candidates, weighted, t.Weighted, PassWeighted); ok {
		return m, true
	}
	if m, ok := bestBy(normalizedInput, candidates, partial, t.Partial, PassPartial); ok {
		return m, true
	}
	return Match{}, false
}

// bestBy sweeps every candidate with the given scorer and accepts the single
// best one if it clears the threshold. Strictly-greater comparison keeps the
// first candidate in slice order on ties.
func bestBy(input string, candidates []string, score func(string, string) int, threshold int, pass Pass) (Match, bool) {
	bestIdx := -1
	bestScore := 0
	for i, c := range candidates {
		if s := score(input, c); s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestScore < threshold {
		return Match{}, false
	}
	return Match{Title: candidates[bestIdx], Index: bestIdx, Confidence: bestScore, Pass: pass}, true
}
