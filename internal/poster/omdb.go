// file: internal/poster/omdb.go
// version: 1.1.0
// guid: c5d6e7f8-a9b0-4c1d-8e2f-3a4b5c6d7e8f

package poster

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdfalk/movie-recommender/internal/cache"
)

// Poster art comes from the OMDb API. Failures of any kind (network, rate
// limiting, missing data) surface to callers as "no poster", never as an
// error: a missing image must not break a recommendation response.

const (
	// requestTimeout bounds each outbound lookup.
	requestTimeout = 5 * time.Second
	// cacheTTL keeps found posters for a day; titles rarely change art.
	cacheTTL = 24 * time.Hour
	// negativeTTL retries absent posters sooner in case of transient
	// upstream trouble.
	negativeTTL = 10 * time.Minute
)

type lookupResult struct {
	url   string
	found bool
}

// Client fetches poster URLs from the OMDb API, memoized per exact title.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *cache.Cache[lookupResult]
	limiter    *rate.Limiter
}

// New creates an OMDb poster client. An empty API key yields a client whose
// lookups always report "no poster".
func New(apiKey string) *Client {
	baseURL := os.Getenv("OMDB_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.omdbapi.com"
	}
	return NewWithBaseURL(apiKey, baseURL)
}

// NewWithBaseURL creates a client with a custom base URL (for testing).
func NewWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		cache:      cache.New[lookupResult](cacheTTL),
		// OMDb free tier allows 1000 req/day; stay well under bursts.
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// Name returns the display name for this poster source.
func (c *Client) Name() string {
	return "OMDb"
}

type omdbResponse struct {
	Poster   string `json:"Poster"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Lookup returns the poster URL for a title, or ("", false) when no poster
// is available for any reason. Results are memoized keyed by the exact
// title string.
func (c *Client) Lookup(ctx context.Context, title string) (string, bool) {
	if c.apiKey == "" || title == "" {
		return "", false
	}

	if res, ok := c.cache.Get(title); ok {
		return res.url, res.found
	}

	res := c.fetch(ctx, title)
	ttl := cacheTTL
	if !res.found {
		ttl = negativeTTL
	}
	c.cache.SetWithTTL(title, res, ttl)
	return res.url, res.found
}

// CachedCount reports how many titles are memoized (for status endpoints).
func (c *Client) CachedCount() int {
	return c.cache.Len()
}

func (c *Client) fetch(ctx context.Context, title string) lookupResult {
	if err := c.limiter.Wait(ctx); err != nil {
		return lookupResult{}
	}

	lookupURL := fmt.Sprintf("%s/?t=%s&apikey=%s", c.baseURL, url.QueryEscape(title), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return lookupResult{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[WARN] poster lookup failed for %q: %v", title, err)
		return lookupResult{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WARN] poster lookup for %q returned status %d", title, resp.StatusCode)
		return lookupResult{}
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("[WARN] poster lookup for %q returned malformed JSON: %v", title, err)
		return lookupResult{}
	}

	// OMDb reports missing posters as the literal string "N/A".
	if body.Poster == "" || body.Poster == "N/A" {
		return lookupResult{}
	}
	return lookupResult{url: body.Poster, found: true}
}
