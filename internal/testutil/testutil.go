// Package testutil provides shared test helpers for setting up data trees
// and session databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/tagtree/internal/session"
)

// SampleDoc is a small tag document with one tag of every container kind.
const SampleDoc = `name: Level
tags:
  - name: version
    type: int
    value: 3
  - name: title
    type: string
    value: hello
  - name: player
    type: compound
    value:
      - name: name
        type: string
        value: steve
      - name: health
        type: float
        value: 20
      - name: pos
        type: compound
        value:
          - name: x
            type: double
            value: 1.5
  - name: inventory
    type: list
    elem: string
    value:
      - value: stone
      - value: dirt
`

// TestDB creates a temporary session database that is automatically cleaned up.
func TestDB(t *testing.T) *session.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "tagtree-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := session.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteFile creates dir/name (and missing parents) with content and returns
// its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// TestTree creates a temporary directory holding:
//
//	level.yaml      SampleDoc
//	notes.txt       not a tag document
//	worlds/
//	  nether.tag    SampleDoc
//	  end.yml       SampleDoc
func TestTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, "level.yaml", SampleDoc)
	WriteFile(t, dir, "notes.txt", "plain text")
	WriteFile(t, dir, "worlds/nether.tag", SampleDoc)
	WriteFile(t, dir, "worlds/end.yml", SampleDoc)
	return dir
}
