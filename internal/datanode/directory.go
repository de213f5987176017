package datanode

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// DirectoryNode mirrors a directory. Its children are sub-directories and
// the files recognized by the store's file-type registry.
type DirectoryNode struct {
	Base
	path string
}

// NewDirectory creates an unexpanded node for the directory at path.
func NewDirectory(s *Store, parent Node, path string) *DirectoryNode {
	n := &DirectoryNode{path: path}
	s.attach(n, parent)
	return n
}

func (n *DirectoryNode) Kind() Kind { return KindDirectory }

func (n *DirectoryNode) Display() string { return filepath.Base(n.path) }

// Path returns the directory path.
func (n *DirectoryNode) Path() string { return n.path }

func (n *DirectoryNode) HasUnexpandedChildren() bool { return !n.expanded }

func (n *DirectoryNode) Expand() {
	n.expandWith(func() []Node { return n.list(nil) })
}

func (n *DirectoryNode) CanSearch() bool { return true }

func (n *DirectoryNode) CanRefresh() bool { return true }

// Refresh lists the directory again. Children whose path still exists keep
// their node, including any unsaved edits below them.
func (n *DirectoryNode) Refresh() bool {
	if !n.expanded {
		return true
	}
	keep := make(map[string]Node, len(n.children))
	for _, c := range n.children {
		if p, ok := c.(Pathed); ok {
			keep[p.Path()] = c
		}
	}
	next := n.list(keep)
	for _, c := range keep {
		n.store.detach(c)
	}
	n.children = next
	return true
}

// list creates the children of the directory. Existing nodes found in reuse
// are taken out of it and used in place of new ones.
func (n *DirectoryNode) list(reuse map[string]Node) []Node {
	entries, err := n.store.fs.ReadDir(n.path)
	if err != nil {
		n.store.logger.Warn("datanode: list failed", slog.String("path", n.path), slog.String("error", err.Error()))
		return nil
	}
	var out []Node
	for _, e := range entries {
		if c, ok := reuse[e.Path]; ok && (c.Kind() == KindDirectory) == e.IsDir {
			delete(reuse, e.Path)
			out = append(out, c)
			continue
		}
		var c Node
		if e.IsDir {
			c = NewDirectory(n.store, n, e.Path)
		} else {
			c = n.store.fileTypes.Create(n.store, n, e.Path)
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Open creates the node for path under root: a directory node for
// directories, the first matching file type for files. Unrecognized files
// yield nil and no error.
func Open(s *Store, root *RootNode, path string) (Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("datanode: open %s: %w", path, err)
	}
	e, err := s.fs.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("datanode: open %s: %w", path, err)
	}
	var n Node
	if e.IsDir {
		n = NewDirectory(s, root, abs)
	} else {
		n = s.fileTypes.Create(s, root, abs)
	}
	if n == nil {
		return nil, nil
	}
	root.Add(n)
	return n, nil
}
