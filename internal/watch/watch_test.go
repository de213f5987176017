package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) notify(paths []string) {
	r.mu.Lock()
	r.batches = append(r.batches, paths)
	r.mu.Unlock()
}

func (r *recorder) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		for _, p := range b {
			if p == path {
				return true
			}
		}
	}
	return false
}

func startWatcher(t *testing.T, roots ...string) *recorder {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	rec := &recorder{}
	w := New(50*time.Millisecond, logger, rec.notify)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	w.SetRoots(roots)
	time.Sleep(100 * time.Millisecond)
	return rec
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileReported(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)

	p := filepath.Join(dir, "new.yaml")
	_ = os.WriteFile(p, []byte("tags: []\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool { return rec.seen(p) },
		"new file not reported")
}

func TestWatcher_NewDirFollowed(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool { return rec.seen(sub) },
		"new dir not reported")

	// Give the watcher time to add the new directory.
	time.Sleep(100 * time.Millisecond)
	p := filepath.Join(sub, "deep.tag")
	_ = os.WriteFile(p, []byte("tags: []\n"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool { return rec.seen(p) },
		"file in new dir not reported")
}

func TestWatcher_BurstIsBatched(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)

	p := filepath.Join(dir, "level.yaml")
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(p, []byte("tags: []\n"), 0o644)
	}
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool { return rec.seen(p) },
		"write not reported")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, b := range rec.batches {
		count := 0
		for _, q := range b {
			if q == p {
				count++
			}
		}
		if count > 1 {
			t.Errorf("batch %v repeats %s", b, p)
		}
	}
}

func TestWatcher_FileRootWatchesParent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "level.yaml")
	if err := os.WriteFile(p, []byte("tags: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := startWatcher(t, p)

	_ = os.WriteFile(p, []byte("name: x\ntags: []\n"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool { return rec.seen(p) },
		"write to file root not reported")
}

func TestUnderAny(t *testing.T) {
	roots := []string{filepath.Join("a", "b")}
	cases := map[string]bool{
		filepath.Join("a", "b"):      true,
		filepath.Join("a", "b", "c"): true,
		filepath.Join("a", "bc"):     false,
		"a":                          false,
	}
	for p, want := range cases {
		if got := underAny(roots, p); got != want {
			t.Errorf("underAny(%q) = %v, want %v", p, got, want)
		}
	}
}
