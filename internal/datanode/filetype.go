package datanode

import (
	"path/filepath"
	"strings"
)

// DefaultTagFilePatterns are the base-name globs recognized as tag documents.
var DefaultTagFilePatterns = []string{"*.yaml", "*.yml", "*.tag"}

// FileType recognizes a family of files by name and creates their nodes.
type FileType struct {
	Name     string
	Patterns []string
	Create   func(s *Store, parent Node, path string) Node
}

// Matches reports whether the base name of path matches any pattern,
// ignoring case.
func (ft FileType) Matches(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, p := range ft.Patterns {
		if ok, _ := filepath.Match(strings.ToLower(p), base); ok {
			return true
		}
	}
	return false
}

// FileTypeRegistry is an ordered list of recognizers; the first match wins.
type FileTypeRegistry struct {
	types []FileType
}

// NewFileTypeRegistry returns a registry recognizing tag documents by the
// given patterns.
func NewFileTypeRegistry(tagPatterns ...string) *FileTypeRegistry {
	r := &FileTypeRegistry{}
	if len(tagPatterns) > 0 {
		r.Register(FileType{
			Name:     "tag document",
			Patterns: tagPatterns,
			Create: func(s *Store, parent Node, path string) Node {
				return NewTagFile(s, parent, path)
			},
		})
	}
	return r
}

// Register appends a recognizer.
func (r *FileTypeRegistry) Register(ft FileType) {
	r.types = append(r.types, ft)
}

// Match returns the first recognizer matching path.
func (r *FileTypeRegistry) Match(path string) (FileType, bool) {
	for _, ft := range r.types {
		if ft.Matches(path) {
			return ft, true
		}
	}
	return FileType{}, false
}

// Create builds a node for path, or returns nil when no recognizer matches.
func (r *FileTypeRegistry) Create(s *Store, parent Node, path string) Node {
	ft, ok := r.Match(path)
	if !ok || ft.Create == nil {
		return nil
	}
	return ft.Create(s, parent, path)
}
