// Package storage defines the file-system abstraction behind directory and
// tag-file data nodes.
package storage

import "time"

// Entry describes one item of a directory listing.
type Entry struct {
	Path    string
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Provider is the interface for backing-store operations on absolute paths.
type Provider interface {
	// ReadDir lists dir, directories first, each group sorted by name.
	ReadDir(dir string) ([]Entry, error)
	// Stat describes a single path.
	Stat(path string) (Entry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
}
