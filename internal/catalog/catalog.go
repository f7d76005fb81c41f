// file: internal/catalog/catalog.go
// version: 1.1.0
// guid: 2b7c4d9e-1f3a-4b5c-8d6e-7f8a9b0c1d2e

package catalog

import (
	"fmt"
	"math/rand"
	"sort"
)

// Entry is one recommendable movie. Index is the entry's stable position in
// the catalog and the join key to its similarity vector.
type Entry struct {
	Index      int      `json:"index"`
	Title      string   `json:"title"`
	CleanTitle string   `json:"clean_title"`
	Genres     []string `json:"genres"`
}

// Catalog is the immutable recommendation context: an ordered sequence of
// entries plus their precomputed similarity vectors, aligned 1:1 by index.
// A Catalog is never mutated after construction and is safe to share across
// concurrent readers without locking.
type Catalog struct {
	entries []Entry
	vectors [][]float32
	dim     int

	titleIndex map[string]int // clean title -> first catalog index
	genreIndex map[string][]int
	genres     []string
}

// New validates the loader-supplied entries and vectors and builds the
// immutable catalog context. Misaligned input is a programmer/loader fault
// and fails here, at load time, never per request.
func New(entries []Entry, vectors [][]float32) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	if len(entries) != len(vectors) {
		return nil, fmt.Errorf("catalog misaligned: %d entries but %d vectors", len(entries), len(vectors))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("similarity vectors have zero dimension")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	c := &Catalog{
		entries:    make([]Entry, len(entries)),
		vectors:    vectors,
		dim:        dim,
		titleIndex: make(map[string]int, len(entries)),
		genreIndex: make(map[string][]int),
	}
	copy(c.entries, entries)

	for i := range c.entries {
		c.entries[i].Index = i
		clean := c.entries[i].CleanTitle
		// First occurrence wins for duplicate normalized titles.
		if _, seen := c.titleIndex[clean]; !seen && clean != "" {
			c.titleIndex[clean] = i
		}
		for _, g := range c.entries[i].Genres {
			c.genreIndex[g] = append(c.genreIndex[g], i)
		}
	}

	c.genres = make([]string, 0, len(c.genreIndex))
	for g := range c.genreIndex {
		c.genres = append(c.genres, g)
	}
	sort.Strings(c.genres)

	return c, nil
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Dim returns the uniform similarity-vector dimension.
func (c *Catalog) Dim() int { return c.dim }

// Entry returns the entry at the given catalog index.
func (c *Catalog) Entry(i int) Entry { return c.entries[i] }

// Vector returns the similarity vector for the given catalog index.
func (c *Catalog) Vector(i int) []float32 { return c.vectors[i] }

// Title returns the display title at the given catalog index.
func (c *Catalog) Title(i int) string { return c.entries[i].Title }

// CleanTitles returns the normalized titles in catalog order. The slice is a
// copy; callers may hold it across requests.
func (c *Catalog) CleanTitles() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.CleanTitle
	}
	return out
}

// Titles returns the display titles in catalog order.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Title
	}
	return out
}

// IndexOfTitle resolves a normalized title to its catalog index. When the
// catalog contains duplicate normalized titles the first occurrence wins.
func (c *Catalog) IndexOfTitle(clean string) (int, bool) {
	i, ok := c.titleIndex[clean]
	return i, ok
}

// Genres returns the sorted set of genres present in the catalog.
func (c *Catalog) Genres() []string {
	out := make([]string, len(c.genres))
	copy(out, c.genres)
	return out
}

// SampleByGenre returns up to n entries for the given genre, or a random
// sample of n entries from the whole catalog when genre is empty. A genre
// present in zero entries yields an empty slice, not an error.
func (c *Catalog) SampleByGenre(genre string, n int, rng *rand.Rand) []Entry {
	if n <= 0 {
		return []Entry{}
	}

	var pool []int
	if genre == "" {
		pool = make([]int, len(c.entries))
		for i := range pool {
			pool[i] = i
		}
	} else {
		pool = c.genreIndex[genre]
	}
	if len(pool) == 0 {
		return []Entry{}
	}

	if n > len(pool) {
		n = len(pool)
	}

	perm := rng.Perm(len(pool))
	out := make([]Entry, 0, n)
	for _, p := range perm[:n] {
		out = append(out, c.entries[pool[p]])
	}
	return out
}
