// file: internal/server/server_test.go
// version: 1.1.0
// guid: 0f1a2b3c-4d5e-6f7a-8b9c-0d1e2f3a4b5c

package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/movie-recommender/internal/catalog"
	"github.com/jdfalk/movie-recommender/internal/poster"
	"github.com/jdfalk/movie-recommender/internal/ranker"
	"github.com/jdfalk/movie-recommender/internal/recommend"
	"github.com/jdfalk/movie-recommender/internal/suggest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func vecWithCosine(s float64) []float32 {
	return []float32{float32(s), float32(math.Sqrt(1 - s*s))}
}

func fixtureDeps(t *testing.T) Deps {
	t.Helper()

	entries := []catalog.Entry{
		{Title: "Inception", CleanTitle: "inception", Genres: []string{"Science Fiction", "Thriller"}},
		{Title: "Interstellar", CleanTitle: "interstellar", Genres: []string{"Science Fiction"}},
		{Title: "The Prestige", CleanTitle: "the prestige", Genres: []string{"Drama", "Thriller"}},
		{Title: "Heat", CleanTitle: "heat", Genres: []string{"Crime"}},
	}
	vectors := [][]float32{
		{1, 0},
		vecWithCosine(0.9),
		vecWithCosine(0.8),
		vecWithCosine(0.5),
	}
	cat, err := catalog.New(entries, vectors)
	if err != nil {
		t.Fatal(err)
	}
	rnk, err := ranker.New(cat, ranker.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	engine := recommend.NewEngine(cat, rnk)

	idx, err := suggest.New(cat.Titles())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })

	return Deps{
		Engine:  func() *recommend.Engine { return engine },
		Suggest: func() *suggest.Index { return idx },
		Version: "test",
	}
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	srv := NewServer(deps)
	srv.SetupRoutesForTest()
	return srv
}

func doGet(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var body map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s: invalid JSON body %q: %v", path, w.Body.String(), err)
		}
	}
	return w, body
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/healthz")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["catalog_entries"] != float64(4) {
		t.Errorf("catalog_entries = %v", body["catalog_entries"])
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestGetRecommendations(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/recommendations?q=Inception")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	if body["resolved"] != "Inception" {
		t.Errorf("resolved = %v", body["resolved"])
	}
	recs, ok := body["recommendations"].([]interface{})
	if !ok || len(recs) == 0 {
		t.Fatalf("recommendations = %v", body["recommendations"])
	}
	first := recs[0].(map[string]interface{})
	if first["title"] != "Interstellar" {
		t.Errorf("top recommendation = %v", first)
	}
}

func TestGetRecommendationsTypo(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/recommendations?q=inceptoin")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["resolved"] != "Inception" {
		t.Errorf("resolved = %v", body["resolved"])
	}
}

func TestGetRecommendationsNoMatch(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/recommendations?q=zzzzqqqq")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for no match", w.Code)
	}
	if _, present := body["resolved"]; present {
		t.Errorf("resolved should be absent, body = %v", body)
	}
	if body["message"] == nil {
		t.Error("expected explanatory message for no match")
	}
}

func TestGetRecommendationsValidation(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))

	w, body := doGet(t, srv, "/api/recommendations")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", w.Code)
	}
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("missing q: code = %v", body["code"])
	}

	w, _ = doGet(t, srv, "/api/recommendations?q=Inception&top_n=0")
	if w.Code != http.StatusBadRequest {
		t.Errorf("top_n=0: status = %d", w.Code)
	}
	w, _ = doGet(t, srv, "/api/recommendations?q=Inception&top_n=abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("top_n=abc: status = %d", w.Code)
	}
}

func TestGetRecommendationsTopN(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/recommendations?q=Inception&top_n=1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	recs := body["recommendations"].([]interface{})
	if len(recs) != 1 {
		t.Errorf("got %d recommendations, want 1", len(recs))
	}
}

func TestBrowseByGenre(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/browse?genre=Thriller")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	movies := body["movies"].([]interface{})
	if len(movies) != 2 {
		t.Fatalf("got %d movies, want 2", len(movies))
	}
	for _, m := range movies {
		title := m.(map[string]interface{})["title"].(string)
		if title != "Inception" && title != "The Prestige" {
			t.Errorf("unexpected title %q in Thriller browse", title)
		}
	}
}

func TestBrowseUnknownGenre(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/browse?genre=Musical")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown genre", w.Code)
	}
	movies := body["movies"].([]interface{})
	if len(movies) != 0 {
		t.Errorf("got %d movies for unknown genre, want 0", len(movies))
	}
}

func TestBrowseLimitCap(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))

	w, body := doGet(t, srv, "/api/browse?limit=100")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	movies := body["movies"].([]interface{})
	if len(movies) != 4 {
		t.Errorf("got %d movies, want whole 4-entry catalog", len(movies))
	}

	w, _ = doGet(t, srv, "/api/browse?limit=-1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit=-1: status = %d", w.Code)
	}
}

func TestListGenres(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/genres")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	genres := body["genres"].([]interface{})
	want := []string{"Crime", "Drama", "Science Fiction", "Thriller"}
	if len(genres) != len(want) {
		t.Fatalf("genres = %v", genres)
	}
	for i, g := range want {
		if genres[i] != g {
			t.Errorf("genres[%d] = %v, want %q", i, genres[i], g)
		}
	}
}

func TestSuggestTitles(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/suggest?q=prestige")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	suggestions := body["suggestions"].([]interface{})
	found := false
	for _, s := range suggestions {
		if s == "The Prestige" {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want The Prestige included", suggestions)
	}

	w, _ = doGet(t, srv, "/api/suggest")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", w.Code)
	}
}

func TestGetPoster(t *testing.T) {
	omdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") == "Inception" {
			w.Write([]byte(`{"Response":"True","Poster":"https://img.example/inception.jpg"}`))
			return
		}
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer omdb.Close()

	deps := fixtureDeps(t)
	deps.Posters = poster.NewWithBaseURL("test-key", omdb.URL)
	srv := newTestServer(t, deps)

	w, body := doGet(t, srv, "/api/posters?title=Inception")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["poster"] != "https://img.example/inception.jpg" {
		t.Errorf("poster = %v", body["poster"])
	}

	w, body = doGet(t, srv, "/api/posters?title=Unknown")
	if w.Code != http.StatusOK {
		t.Fatalf("absent poster: status = %d", w.Code)
	}
	if body["poster"] != nil {
		t.Errorf("absent poster = %v, want null", body["poster"])
	}

	w, _ = doGet(t, srv, "/api/posters")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing title: status = %d", w.Code)
	}
}

func TestPosterNotConfigured(t *testing.T) {
	srv := newTestServer(t, fixtureDeps(t))
	w, body := doGet(t, srv, "/api/posters?title=Inception")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when posters unconfigured", w.Code)
	}
	if body["code"] != "NOT_CONFIGURED" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestNotReady(t *testing.T) {
	srv := newTestServer(t, Deps{
		Engine:  func() *recommend.Engine { return nil },
		Suggest: func() *suggest.Index { return nil },
	})

	for _, path := range []string{
		"/api/recommendations?q=Inception",
		"/api/browse",
		"/api/genres",
		"/api/suggest?q=incep",
	} {
		w, _ := doGet(t, srv, path)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s: status = %d, want 503", path, w.Code)
		}
	}
}
