// file: internal/ranker/ranker.go
// version: 1.3.0
// guid: 8a0b2c4d-6e8f-4a1b-9c3d-7e9f1a3b5c7d

package ranker

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/jdfalk/movie-recommender/internal/catalog"
)

// Policy holds the adaptive-threshold knobs. The stock values come from the
// upstream tuning and are candidates for empirical re-tuning.
type Policy struct {
	// PoolSize bounds the candidate pool the threshold statistics are
	// computed over. It caps both noise in the mean and per-request cost.
	PoolSize int
	// MeanFactor scales the pool mean into the acceptance threshold.
	MeanFactor float64
	// ScoreFloor guards degenerate pools where every score is near zero;
	// without it, 80% of a near-zero mean would accept near-zero matches.
	ScoreFloor float64
}

// DefaultPolicy returns the stock thresholding policy.
func DefaultPolicy() Policy {
	return Policy{PoolSize: 30, MeanFactor: 0.8, ScoreFloor: 0.12}
}

// Recommendation is one ranked result. Score is the cosine similarity
// expressed as a percentage, rounded to two decimal places.
type Recommendation struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Ranker answers similarity queries against the catalog's precomputed
// vectors through an in-memory chromem collection built once at startup.
// It is read-only after construction and safe for concurrent use.
type Ranker struct {
	collection *chromem.Collection
	titles     []string
	vectors    [][]float32
	count      int
	policy     Policy
}

// noTextQueries rejects text-based queries; every lookup here supplies a
// precomputed embedding.
func noTextQueries(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("catalog uses precomputed vectors; text embedding is not available")
}

// New indexes the catalog's similarity vectors. Zero-valued policy fields
// fall back to the defaults.
func New(cat *catalog.Catalog, policy Policy) (*Ranker, error) {
	def := DefaultPolicy()
	if policy.PoolSize <= 0 {
		policy.PoolSize = def.PoolSize
	}
	if policy.MeanFactor <= 0 {
		policy.MeanFactor = def.MeanFactor
	}
	if policy.ScoreFloor < 0 {
		policy.ScoreFloor = def.ScoreFloor
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("movies", nil, noTextQueries)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector collection: %w", err)
	}

	docs := make([]chromem.Document, cat.Len())
	titles := make([]string, cat.Len())
	vectors := make([][]float32, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		entry := cat.Entry(i)
		titles[i] = entry.Title
		// chromem may normalize embeddings in place; index a copy so the
		// catalog's vectors stay untouched.
		vec := make([]float32, len(cat.Vector(i)))
		copy(vec, cat.Vector(i))
		vectors[i] = cat.Vector(i)
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Metadata:  map[string]string{"title": entry.Title},
			Embedding: vec,
			Content:   entry.Title,
		}
	}
	if err := collection.AddDocuments(context.Background(), docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to index similarity vectors: %w", err)
	}

	return &Ranker{
		collection: collection,
		titles:     titles,
		vectors:    vectors,
		count:      cat.Len(),
		policy:     policy,
	}, nil
}

// Policy returns the thresholding policy in effect.
func (r *Ranker) Policy() Policy { return r.policy }

type pooled struct {
	index int
	score float64
}

// Rank produces the adaptively-thresholded top-N recommendation list for
// the given resolved catalog index. An empty result means "no strong
// recommendation" and is not an error.
func (r *Ranker) Rank(ctx context.Context, resolvedIndex, topN int) ([]Recommendation, error) {
	if resolvedIndex < 0 || resolvedIndex >= r.count {
		return nil, fmt.Errorf("resolved index %d out of range [0, %d)", resolvedIndex, r.count)
	}
	if topN <= 0 {
		return []Recommendation{}, nil
	}

	pool, err := r.pool(ctx, resolvedIndex)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return []Recommendation{}, nil
	}

	var sum float64
	for _, p := range pool {
		sum += p.score
	}
	mean := sum / float64(len(pool))
	threshold := math.Max(mean*r.policy.MeanFactor, r.policy.ScoreFloor)

	results := make([]Recommendation, 0, topN)
	for _, p := range pool {
		if p.score < threshold {
			// Pool is in descending order: nothing further can clear it.
			break
		}
		results = append(results, Recommendation{
			Title: r.titles[p.index],
			Score: math.Round(p.score*100*100) / 100,
		})
		if len(results) == topN {
			break
		}
	}
	return results, nil
}

// pool retrieves the top PoolSize non-self entries by cosine similarity, in
// stable (score descending, catalog index ascending) order.
func (r *Ranker) pool(ctx context.Context, resolvedIndex int) ([]pooled, error) {
	// One extra result so the query entry itself can be dropped.
	want := r.policy.PoolSize + 1
	if want > r.count {
		want = r.count
	}
	if want <= 0 {
		return nil, nil
	}

	hits, err := r.collection.QueryEmbedding(ctx, r.vectors[resolvedIndex], want, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	pool := make([]pooled, 0, len(hits))
	for _, hit := range hits {
		idx, convErr := strconv.Atoi(hit.ID)
		if convErr != nil {
			return nil, fmt.Errorf("unexpected document ID %q in vector collection", hit.ID)
		}
		if idx == resolvedIndex {
			// An entry is never recommended to itself.
			continue
		}
		pool = append(pool, pooled{index: idx, score: float64(hit.Similarity)})
	}
	if len(pool) > r.policy.PoolSize {
		pool = pool[:r.policy.PoolSize]
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		return pool[i].index < pool[j].index
	})
	return pool, nil
}
