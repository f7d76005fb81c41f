// file: internal/catalog/loader.go
// version: 1.1.0
// guid: 9a3b5c7d-2e4f-4a6b-8c0d-3e5f7a9b1c2d

package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jdfalk/movie-recommender/internal/normalize"
)

// movieArtifact is one record of the movies artifact. The loader computes
// CleanTitle itself so the artifact stays a plain export of the upstream
// training pipeline.
type movieArtifact struct {
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

// LoadArtifacts reads the movies and vectors artifacts produced by the
// offline pipeline and builds the validated catalog. aliases may be nil.
//
// The movies artifact is a JSON array of {title, genres}; the vectors
// artifact is a JSON array of equal-length float arrays, one per movie, in
// the same order.
func LoadArtifacts(moviesPath, vectorsPath string, aliases *AliasTable) (*Catalog, error) {
	entries, err := loadMovies(moviesPath)
	if err != nil {
		return nil, err
	}
	vectors, err := loadVectors(vectorsPath)
	if err != nil {
		return nil, err
	}

	entries = aliases.Apply(entries)

	cat, err := New(entries, vectors)
	if err != nil {
		return nil, fmt.Errorf("artifact validation failed: %w", err)
	}
	return cat, nil
}

func loadMovies(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read movies artifact: %w", err)
	}

	var raw []movieArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse movies artifact: %w", err)
	}

	entries := make([]Entry, len(raw))
	for i, m := range raw {
		entries[i] = Entry{
			Index:      i,
			Title:      m.Title,
			CleanTitle: normalize.Normalize(m.Title),
			Genres:     m.Genres,
		}
	}
	return entries, nil
}

func loadVectors(path string) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vectors artifact: %w", err)
	}

	var vectors [][]float32
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("failed to parse vectors artifact: %w", err)
	}
	return vectors, nil
}
