// file: internal/suggest/suggest_test.go
// version: 1.0.0
// guid: f1a2b3c4-d5e6-4f7a-8b9c-0d1e2f3a4b5c

package suggest

import "testing"

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := New([]string{
		"Inception",
		"Interstellar",
		"The Dark Knight",
		"The Dark Knight Rises",
		"Heat",
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { x.Close() })
	return x
}

func TestSuggestFullText(t *testing.T) {
	x := newTestIndex(t)

	got := x.Suggest("dark knight", 10)
	if len(got) < 2 {
		t.Fatalf("Suggest(dark knight) = %v, want both Dark Knight titles", got)
	}
	for _, title := range got {
		if title != "The Dark Knight" && title != "The Dark Knight Rises" {
			t.Errorf("unexpected suggestion %q", title)
		}
	}
}

func TestSuggestLimit(t *testing.T) {
	x := newTestIndex(t)

	got := x.Suggest("the", 1)
	if len(got) > 1 {
		t.Errorf("limit=1 returned %d suggestions", len(got))
	}
}

func TestSuggestFuzzyFallback(t *testing.T) {
	x := newTestIndex(t)

	// Subsequence-style input that full text won't match as a term.
	got := x.Suggest("incptn", 5)
	if len(got) == 0 {
		t.Fatal("fallback produced no suggestions")
	}
	if got[0] != "Inception" {
		t.Errorf("fallback top suggestion = %q, want Inception", got[0])
	}
}

func TestSuggestEmptyQuery(t *testing.T) {
	x := newTestIndex(t)
	if got := x.Suggest("", 5); len(got) != 0 {
		t.Errorf("empty query suggested %v", got)
	}
}
