// file: cmd/validate.go
// version: 1.1.0
// guid: 6c7d8e9f-0a1b-2c3d-4e5f-6a7b8c9d0e1f

package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/config"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the catalog artifact files",
	Long: `Load the movie catalog and similarity vectors, verify their structural
invariants and report statistics. Exits non-zero when the artifacts would be
rejected at server startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var aliases *catalog.AliasTable
		if config.AppConfig.GenreAliasPath != "" {
			t, err := catalog.LoadAliasTable(config.AppConfig.GenreAliasPath)
			if err != nil {
				return fmt.Errorf("genre aliases invalid: %w", err)
			}
			aliases = t
			fmt.Printf("Genre aliases: %s\n", config.AppConfig.GenreAliasPath)
		}

		cat, err := catalog.LoadArtifacts(config.AppConfig.MoviesPath, config.AppConfig.VectorsPath, aliases)
		if err != nil {
			return fmt.Errorf("artifacts invalid: %w", err)
		}

		fmt.Printf("Checking %d catalog entries...\n", cat.Len())
		bar := progressbar.Default(int64(cat.Len()))

		zeroVectors := 0
		untitled := 0
		genreless := 0
		seen := make(map[string]int, cat.Len())
		duplicates := 0
		for i := 0; i < cat.Len(); i++ {
			entry := cat.Entry(i)
			if entry.CleanTitle == "" {
				untitled++
			} else if first, dup := seen[entry.CleanTitle]; dup {
				duplicates++
				fmt.Printf("\nduplicate normalized title %q (entries %d and %d); lookups resolve to entry %d\n",
					entry.CleanTitle, first, i, first)
			} else {
				seen[entry.CleanTitle] = i
			}
			if len(entry.Genres) == 0 {
				genreless++
			}

			zero := true
			for _, v := range cat.Vector(i) {
				if v != 0 {
					zero = false
					break
				}
			}
			if zero {
				zeroVectors++
			}
			bar.Add(1)
		}
		fmt.Println()

		fmt.Printf("Catalog OK: %d movies, vector dimension %d, %d genres\n",
			cat.Len(), cat.Dim(), len(cat.Genres()))
		if duplicates > 0 {
			fmt.Printf("  %d duplicate normalized titles (first occurrence wins)\n", duplicates)
		}
		if untitled > 0 {
			fmt.Printf("  %d entries normalize to an empty title and are unreachable by text query\n", untitled)
		}
		if genreless > 0 {
			fmt.Printf("  %d entries carry no genres\n", genreless)
		}
		if zeroVectors > 0 {
			fmt.Printf("  %d all-zero vectors (cosine similarity against them is 0)\n", zeroVectors)
		}
		return nil
	},
}
