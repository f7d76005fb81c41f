// file: internal/config/config.go
// version: 1.3.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	MoviesPath      string
	VectorsPath     string
	GenreAliasPath  string
	WatchArtifacts  bool
	DefaultTopN     int
	EnableAIQueries bool // Must be true (and an OpenAI key set) to consult the AI query interpreter
	APIKeys         struct {
		OMDB   string
		OpenAI string
	}
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("movies_path", "artifacts/movies.json")
	viper.SetDefault("vectors_path", "artifacts/vectors.json")
	viper.SetDefault("default_top_n", 10)
	viper.SetDefault("enable_ai_queries", false)

	AppConfig = Config{
		MoviesPath:      viper.GetString("movies_path"),
		VectorsPath:     viper.GetString("vectors_path"),
		GenreAliasPath:  viper.GetString("genre_alias_path"),
		WatchArtifacts:  viper.GetBool("watch_artifacts"),
		DefaultTopN:     viper.GetInt("default_top_n"),
		EnableAIQueries: viper.GetBool("enable_ai_queries"),
	}

	// API Keys
	AppConfig.APIKeys.OMDB = viper.GetString("api_keys.omdb")
	AppConfig.APIKeys.OpenAI = viper.GetString("api_keys.openai")

	if AppConfig.DefaultTopN <= 0 {
		AppConfig.DefaultTopN = 10
	}
}
