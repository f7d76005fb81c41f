// file: internal/recommend/recommend.go
// version: 1.2.0
// guid: 5d7e9f1a-3b5c-4d7e-8f0a-4b6c8d0e2f4a

package recommend

import (
	"context"
	"log"

	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/normalize"
	"github.com/jdfalk/movie-recommender/internal/ranker"
	"github.com/jdfalk/movie-recommender/internal/resolver"
)

// DefaultTopN is the result count used when the caller does not ask for a
// specific one.
const DefaultTopN = 10

// TitleGuesser extracts a probable movie title from free-form text. It is
// an optional collaborator; the engine consults it only when conventional
// resolution fails and the guesser reports itself enabled.
type TitleGuesser interface {
	IsEnabled() bool
	GuessTitle(ctx context.Context, text string) (string, error)
}

// Result is the outcome of one recommendation request. Resolved is empty
// when nothing in the catalog matched; Recommendations is then empty too.
type Result struct {
	Resolved        string                  `json:"resolved,omitempty"`
	Pass            resolver.Pass           `json:"pass,omitempty"`
	Recommendations []ranker.Recommendation `json:"recommendations"`
}

// Engine composes the normalizer, fuzzy resolver and similarity ranker into
// the single public recommendation entry point. It reads the immutable
// catalog and writes nothing; concurrent calls are independent.
type Engine struct {
	catalog    *catalog.Catalog
	candidates []string
	ranker     *ranker.Ranker
	thresholds resolver.Thresholds
	guesser    TitleGuesser
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds overrides the fuzzy acceptance thresholds.
func WithThresholds(t resolver.Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithTitleGuesser wires the optional AI title interpreter.
func WithTitleGuesser(g TitleGuesser) Option {
	return func(e *Engine) { e.guesser = g }
}

// NewEngine builds the orchestrator around a loaded catalog and its ranker.
func NewEngine(cat *catalog.Catalog, rnk *ranker.Ranker, opts ...Option) *Engine {
	e := &Engine{
		catalog:    cat,
		candidates: cat.CleanTitles(),
		ranker:     rnk,
		thresholds: resolver.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog snapshot this engine serves.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Recommend resolves raw user text to a catalog entry and ranks similar
// movies. Every data-driven "nothing found" condition returns an empty
// result, never an error; errors are reserved for internal faults.
func (e *Engine) Recommend(ctx context.Context, rawText string, topN int) (Result, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	query := normalize.Normalize(rawText)
	if query == "" {
		return Result{Recommendations: []ranker.Recommendation{}}, nil
	}

	match, ok := e.resolve(ctx, query)
	if !ok {
		return Result{Recommendations: []ranker.Recommendation{}}, nil
	}

	// First occurrence wins when duplicates share a normalized title.
	idx, found := e.catalog.IndexOfTitle(match.Title)
	if !found {
		idx = match.Index
	}

	recs, err := e.ranker.Rank(ctx, idx, topN)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Resolved:        e.catalog.Title(idx),
		Pass:            match.Pass,
		Recommendations: recs,
	}, nil
}

func (e *Engine) resolve(ctx context.Context, query string) (resolver.Match, bool) {
	if match, ok := resolver.ResolveWithThresholds(query, e.candidates, e.thresholds); ok {
		return match, true
	}

	if e.guesser == nil || !e.guesser.IsEnabled() {
		return resolver.Match{}, false
	}

	// Last resort: let the interpreter pull a title out of free-form text
	// ("that dream heist movie") and resolve the guess instead. A failed
	// guess is just another no-match.
	guess, err := e.guesser.GuessTitle(ctx, query)
	if err != nil {
		log.Printf("[WARN] title interpreter failed: %v", err)
		return resolver.Match{}, false
	}
	guess = normalize.Normalize(guess)
	if guess == "" || guess == query {
		return resolver.Match{}, false
	}
	return resolver.ResolveWithThresholds(guess, e.candidates, e.thresholds)
}
