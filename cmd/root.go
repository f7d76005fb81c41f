// file: cmd/root.go
// version: 1.2.0
// guid: 3b4c5d6e-7f8a-9b0c-1d2e-3f4a5b6c7d8e

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/movie-recommender/internal/ai"
	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/config"
	"github.com/jdfalk/movie-recommender/internal/metrics"
	"github.com/jdfalk/movie-recommender/internal/poster"
	"github.com/jdfalk/movie-recommender/internal/ranker"
	"github.com/jdfalk/movie-recommender/internal/recommend"
	"github.com/jdfalk/movie-recommender/internal/server"
	"github.com/jdfalk/movie-recommender/internal/suggest"
)

var cfgFile string
var moviesPath string
var vectorsPath string
var genreAliasPath string
var watchArtifacts bool
var enableAIQueries bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "movie-recommender",
	Version: "1.0.0",
	Short:   "Content-based movie recommendations from precomputed similarity vectors",
	Long: `Movie Recommender resolves free-form (and typo-laden) title queries
against a movie catalog and ranks similar movies by cosine similarity over
precomputed feature vectors.

It ships a CLI for one-shot queries and an HTTP server with browsing,
suggestions and poster lookups.`,
}

// snapshot bundles everything derived from one catalog load. A reload
// builds a fresh snapshot and swaps the pointer; requests already holding
// the old one finish against it.
type snapshot struct {
	engine  *recommend.Engine
	suggest *suggest.Index
}

func buildSnapshot() (*snapshot, error) {
	var aliases *catalog.AliasTable
	if config.AppConfig.GenreAliasPath != "" {
		t, err := catalog.LoadAliasTable(config.AppConfig.GenreAliasPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load genre aliases: %w", err)
		}
		aliases = t
	}

	cat, err := catalog.LoadArtifacts(config.AppConfig.MoviesPath, config.AppConfig.VectorsPath, aliases)
	if err != nil {
		return nil, err
	}

	rnk, err := ranker.New(cat, ranker.DefaultPolicy())
	if err != nil {
		return nil, err
	}

	opts := []recommend.Option{}
	if config.AppConfig.EnableAIQueries {
		parser := ai.NewQueryParser(config.AppConfig.APIKeys.OpenAI, true)
		opts = append(opts, recommend.WithTitleGuesser(parser))
	}
	engine := recommend.NewEngine(cat, rnk, opts...)

	idx, err := suggest.New(cat.Titles())
	if err != nil {
		return nil, fmt.Errorf("failed to build suggestion index: %w", err)
	}

	return &snapshot{engine: engine, suggest: idx}, nil
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recommendation web server",
	Long:  `Start the HTTP server exposing recommendation, browse, suggestion and poster endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := buildSnapshot()
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		var current atomic.Pointer[snapshot]
		current.Store(snap)
		metrics.Register()
		metrics.SetCatalogEntries(snap.engine.Catalog().Len())
		fmt.Printf("Loaded %d movies from %s\n", snap.engine.Catalog().Len(), config.AppConfig.MoviesPath)

		if config.AppConfig.WatchArtifacts {
			watcher := catalog.NewWatcher(func() {
				fresh, err := buildSnapshot()
				if err != nil {
					log.Printf("[ERROR] catalog reload failed, keeping previous snapshot: %v", err)
					return
				}
				old := current.Swap(fresh)
				metrics.IncCatalogReload()
				metrics.SetCatalogEntries(fresh.engine.Catalog().Len())
				log.Printf("[INFO] catalog reloaded: %d movies", fresh.engine.Catalog().Len())
				if old != nil {
					old.suggest.Close()
				}
			}, 0, config.AppConfig.MoviesPath, config.AppConfig.VectorsPath)
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("failed to watch artifacts: %w", err)
			}
			defer watcher.Stop()
			fmt.Println("Watching catalog artifacts for changes")
		}

		deps := server.Deps{
			Engine:  func() *recommend.Engine { return current.Load().engine },
			Suggest: func() *suggest.Index { return current.Load().suggest },
			Version: rootCmd.Version,
		}
		if key := config.AppConfig.APIKeys.OMDB; key != "" {
			deps.Posters = poster.New(key)
			fmt.Println("Poster lookups enabled")
		}

		srv := server.NewServer(deps)
		cfg := server.ServerConfig{
			Port:         "8080",
			Host:         "localhost",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		if port := cmd.Flag("port").Value.String(); port != "" {
			cfg.Port = port
		}
		if host := cmd.Flag("host").Value.String(); host != "" {
			cfg.Host = host
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}
		if rl, err := cmd.Flags().GetInt("rate-limit"); err == nil {
			cfg.RequestsPerMin = rl
		}

		return srv.Start(cfg)
	},
}

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend [query]",
	Short: "Recommend movies similar to a title",
	Long:  `Resolve the given text to a catalog title and print the most similar movies.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := buildSnapshot()
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		defer snap.suggest.Close()

		topN, _ := cmd.Flags().GetInt("top-n")
		query := strings.Join(args, " ")

		result, err := snap.engine.Recommend(context.Background(), query, topN)
		if err != nil {
			return err
		}

		if result.Resolved == "" {
			fmt.Printf("No catalog title matched %q\n", query)
			if hints := snap.suggest.Suggest(query, 5); len(hints) > 0 {
				fmt.Println("Did you mean:")
				for _, h := range hints {
					fmt.Printf("  %s\n", h)
				}
			}
			return nil
		}

		fmt.Printf("Recommendations for %q (matched via %s pass):\n", result.Resolved, result.Pass)
		if len(result.Recommendations) == 0 {
			fmt.Println("  no sufficiently similar movies found")
			return nil
		}
		for i, rec := range result.Recommendations {
			fmt.Printf("  %2d. %-50s %6.2f\n", i+1, rec.Title, rec.Score)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.movie-recommender.yaml)")
	rootCmd.PersistentFlags().StringVar(&moviesPath, "movies", "artifacts/movies.json", "path to the movie catalog JSON")
	rootCmd.PersistentFlags().StringVar(&vectorsPath, "vectors", "artifacts/vectors.json", "path to the similarity vectors JSON")
	rootCmd.PersistentFlags().StringVar(&genreAliasPath, "genre-aliases", "", "optional YAML file mapping genre aliases to canonical names")
	rootCmd.PersistentFlags().BoolVar(&watchArtifacts, "watch", false, "reload the catalog when the artifact files change")
	rootCmd.PersistentFlags().BoolVar(&enableAIQueries, "enable-ai", false, "interpret free-form queries with OpenAI when fuzzy matching fails")

	viper.BindPFlag("movies_path", rootCmd.PersistentFlags().Lookup("movies"))
	viper.BindPFlag("vectors_path", rootCmd.PersistentFlags().Lookup("vectors"))
	viper.BindPFlag("genre_alias_path", rootCmd.PersistentFlags().Lookup("genre-aliases"))
	viper.BindPFlag("watch_artifacts", rootCmd.PersistentFlags().Lookup("watch"))
	viper.BindPFlag("enable_ai_queries", rootCmd.PersistentFlags().Lookup("enable-ai"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(validateCmd)

	// Add serve command specific flags
	serveCmd.Flags().String("port", "8080", "port to run the web server on")
	serveCmd.Flags().String("host", "localhost", "host to bind the web server to")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
	serveCmd.Flags().Int("rate-limit", 0, "per-IP API requests per minute (0 disables limiting)")

	recommendCmd.Flags().Int("top-n", recommend.DefaultTopN, "maximum number of recommendations")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".movie-recommender")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
}
