// file: internal/catalog/watcher_test.go
// version: 1.0.0
// guid: 7b9c1d3e-5f7a-4b8c-9d0e-4f6a8b0c2d3e

package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnArtifactWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.json")
	if err := os.WriteFile(path, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 1)
	w := NewWatcher(func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}, 50*time.Millisecond, path)

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`[{"title":"Heat","genres":[]}]`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "movies.json")
	if err := os.WriteFile(watched, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 1)
	w := NewWatcher(func() { reloaded <- struct{}{} }, 50*time.Millisecond, watched)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Fatal("reload fired for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.json")
	if err := os.WriteFile(path, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(func() {}, time.Second, path)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
