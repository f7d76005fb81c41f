// file: internal/server/server.go
// version: 1.4.0
// guid: 9e0f1a2b-3c4d-5e6f-7a8b-9c0d1e2f3a4b

package server

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/metrics"
	"github.com/jdfalk/movie-recommender/internal/poster"
	"github.com/jdfalk/movie-recommender/internal/recommend"
	"github.com/jdfalk/movie-recommender/internal/server/middleware"
	"github.com/jdfalk/movie-recommender/internal/suggest"
)

// Browse responses cap out at ten entries regardless of the requested limit.
const maxBrowseLimit = 10

// Deps wires the server to its collaborators. Engine and Suggest are
// accessors rather than values so a catalog reload can swap the snapshot
// underneath a running server.
type Deps struct {
	Engine  func() *recommend.Engine
	Suggest func() *suggest.Index
	Posters *poster.Client
	Version string
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	deps       Deps
	startTime  time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestsPerMin int
}

// NewServer creates a new server instance
func NewServer(deps Deps) *Server {
	router := gin.Default()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.RequestID())

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:    router,
		deps:      deps,
		startTime: time.Now(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	return server
}

// Router exposes the configured handler, primarily for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM.
func (s *Server) Start(cfg ServerConfig) error {
	s.setupRoutes(cfg)

	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Printf("[INFO] Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("[INFO] Server exited")
	return nil
}

// SetupRoutesForTest registers routes without starting the listener.
func (s *Server) SetupRoutesForTest() {
	s.setupRoutes(ServerConfig{})
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes(cfg ServerConfig) {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.healthCheck)

	api := s.router.Group("/api")
	if cfg.RequestsPerMin > 0 {
		limiter := middleware.NewIPRateLimiter(cfg.RequestsPerMin, cfg.RequestsPerMin)
		api.Use(limiter.Middleware())
	}

	api.GET("/recommendations", s.getRecommendations)
	api.GET("/browse", s.browseByGenre)
	api.GET("/genres", s.listGenres)
	api.GET("/suggest", s.suggestTitles)
	api.GET("/posters", s.getPoster)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	engine := s.deps.Engine()
	entries := 0
	if engine != nil {
		entries = engine.Catalog().Len()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"version":         s.deps.Version,
		"uptime":          time.Since(s.startTime).String(),
		"catalog_entries": entries,
	})
}

// getRecommendations handles GET /api/recommendations?q=&top_n=
func (s *Server) getRecommendations(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		RespondWithValidationError(c, "q", "query text is required")
		return
	}

	topN := recommend.DefaultTopN
	if raw := c.Query("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondWithValidationError(c, "top_n", "must be a positive integer")
			return
		}
		topN = n
	}

	engine := s.deps.Engine()
	if engine == nil {
		RespondWithError(c, http.StatusServiceUnavailable, "catalog not loaded", "NOT_READY")
		return
	}

	start := time.Now()
	result, err := engine.Recommend(c.Request.Context(), q, topN)
	metrics.ObserveRecommendDuration(time.Since(start))
	if err != nil {
		metrics.IncRecommendRequest("error")
		RespondWithInternalError(c, err)
		return
	}

	if result.Resolved == "" {
		metrics.IncRecommendRequest("no_match")
		c.JSON(http.StatusOK, gin.H{
			"query":           q,
			"recommendations": result.Recommendations,
			"message":         "no matching title found",
		})
		return
	}

	metrics.IncResolverPass(string(result.Pass))
	body := gin.H{
		"query":           q,
		"resolved":        result.Resolved,
		"pass":            result.Pass,
		"recommendations": result.Recommendations,
	}
	if len(result.Recommendations) == 0 {
		metrics.IncRecommendRequest("empty")
		body["message"] = "no strong recommendations found"
	} else {
		metrics.IncRecommendRequest("ok")
	}

	c.JSON(http.StatusOK, body)
}

type browseEntry struct {
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

// browseByGenre handles GET /api/browse?genre=&limit=
func (s *Server) browseByGenre(c *gin.Context) {
	genre := c.Query("genre")

	limit := maxBrowseLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondWithValidationError(c, "limit", "must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}

	engine := s.deps.Engine()
	if engine == nil {
		RespondWithError(c, http.StatusServiceUnavailable, "catalog not loaded", "NOT_READY")
		return
	}

	entries := s.sample(engine.Catalog(), genre, limit)
	out := make([]browseEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, browseEntry{Title: e.Title, Genres: e.Genres})
	}

	c.JSON(http.StatusOK, gin.H{
		"genre":  genre,
		"movies": out,
	})
}

func (s *Server) sample(cat *catalog.Catalog, genre string, n int) []catalog.Entry {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return cat.SampleByGenre(genre, n, s.rng)
}

// listGenres handles GET /api/genres
func (s *Server) listGenres(c *gin.Context) {
	engine := s.deps.Engine()
	if engine == nil {
		RespondWithError(c, http.StatusServiceUnavailable, "catalog not loaded", "NOT_READY")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": engine.Catalog().Genres()})
}

// suggestTitles handles GET /api/suggest?q=&limit=
func (s *Server) suggestTitles(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		RespondWithValidationError(c, "q", "query text is required")
		return
	}

	limit := suggest.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondWithValidationError(c, "limit", "must be a positive integer")
			return
		}
		limit = n
	}

	index := s.deps.Suggest()
	if index == nil {
		RespondWithError(c, http.StatusServiceUnavailable, "suggestion index not loaded", "NOT_READY")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":       q,
		"suggestions": index.Suggest(q, limit),
	})
}

// getPoster handles GET /api/posters?title=
func (s *Server) getPoster(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		RespondWithValidationError(c, "title", "title is required")
		return
	}

	if s.deps.Posters == nil {
		RespondWithError(c, http.StatusServiceUnavailable, "poster lookups are not configured", "NOT_CONFIGURED")
		return
	}

	url, ok := s.deps.Posters.Lookup(c.Request.Context(), title)
	if !ok {
		metrics.IncPosterLookup("absent")
		c.JSON(http.StatusOK, gin.H{
			"title":  title,
			"poster": nil,
		})
		return
	}

	metrics.IncPosterLookup("found")
	c.JSON(http.StatusOK, gin.H{
		"title":  title,
		"poster": url,
	})
}
