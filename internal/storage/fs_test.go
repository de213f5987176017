package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndRead(t *testing.T) {
	s := NewFS(false)
	path := filepath.Join(t.TempDir(), "level.yaml")
	content := []byte("tags: []\n")
	if err := s.Write(path, content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteMissingDir(t *testing.T) {
	s := NewFS(false)
	if err := s.Write(filepath.Join(t.TempDir(), "nope", "x.yaml"), []byte("x")); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := NewFS(false)
	dir := t.TempDir()
	path := filepath.Join(dir, "atomic.yaml")
	_ = s.Write(path, []byte("original"))
	if err := s.Write(path, []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read(path)
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, ".tagtree-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestReadDirOrdering(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "A.yaml"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644)
	_ = os.Mkdir(filepath.Join(dir, "zdir"), 0o755)

	entries, err := NewFS(false).ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"zdir", "A.yaml", "b.yaml"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	all, _ := NewFS(true).ReadDir(dir)
	if len(all) != 4 {
		t.Errorf("with hidden: len = %d, want 4", len(all))
	}
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	e, err := NewFS(false).Stat(dir)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !e.IsDir {
		t.Error("expected directory")
	}
	if _, err := NewFS(false).Stat(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}
