// file: internal/suggest/suggest.go
// version: 1.1.0
// guid: e9f0a1b2-c3d4-4e5f-8a6b-7c8d9e0f1a2b

package suggest

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultLimit is the suggestion count used when the caller does not ask
// for a specific one.
const DefaultLimit = 8

type titleDoc struct {
	Title string `json:"title"`
}

// Index answers as-you-type title suggestions over the catalog's display
// titles. It is built once per catalog snapshot and is read-only afterward.
type Index struct {
	index  bleve.Index
	titles []string
}

// New builds an in-memory full-text index over the given display titles.
func New(titles []string) (*Index, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion index: %w", err)
	}

	batch := index.NewBatch()
	for i, title := range titles {
		if err := batch.Index(strconv.Itoa(i), titleDoc{Title: title}); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index title %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to commit suggestion index: %w", err)
	}

	stored := make([]string, len(titles))
	copy(stored, titles)
	return &Index{index: index, titles: stored}, nil
}

// Suggest returns up to limit display titles matching the query. Full-text
// hits come first; when the index finds nothing (heavy typos), a
// Levenshtein-ranked fuzzy scan over all titles takes over. An empty query
// yields no suggestions.
func (x *Index) Suggest(q string, limit int) []string {
	if q == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if hits := x.fullText(q, limit); len(hits) > 0 {
		return hits
	}
	return x.fuzzyFallback(q, limit)
}

// Close releases the underlying index.
func (x *Index) Close() error {
	return x.index.Close()
}

func (x *Index) fullText(q string, limit int) []string {
	query := bleve.NewMatchQuery(q)
	query.SetField("title")
	query.SetFuzziness(1)

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	res, err := x.index.Search(req)
	if err != nil {
		return nil
	}

	out := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		idx, convErr := strconv.Atoi(hit.ID)
		if convErr != nil || idx < 0 || idx >= len(x.titles) {
			continue
		}
		out = append(out, x.titles[idx])
	}
	return out
}

func (x *Index) fuzzyFallback(q string, limit int) []string {
	ranks := fuzzy.RankFindNormalizedFold(q, x.titles)
	sort.Sort(ranks)

	out := make([]string, 0, limit)
	for _, r := range ranks {
		out = append(out, r.Target)
		if len(out) == limit {
			break
		}
	}
	return out
}
