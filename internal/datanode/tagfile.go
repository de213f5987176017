package datanode

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/starford/tagtree/internal/checksum"
	"github.com/starford/tagtree/internal/tag"
	"github.com/starford/tagtree/internal/tagdoc"
)

// TagFileNode mirrors a tag document. The document is decoded on first
// expansion; its children are the tags of the root compound.
type TagFileNode struct {
	Base
	path   string
	name   string
	doc    *tagdoc.Document
	sum    string
	failed bool
}

// NewTagFile creates an unloaded node for the document at path.
func NewTagFile(s *Store, parent Node, path string) *TagFileNode {
	n := &TagFileNode{path: path, name: filepath.Base(path)}
	s.attach(n, parent)
	return n
}

// NewDocumentNode wraps an in-memory document that has no backing file.
// Saving it only clears the modified state.
func NewDocumentNode(s *Store, parent Node, name string, doc *tagdoc.Document) *TagFileNode {
	if doc.Root == nil {
		doc.Root = tag.NewCompound()
	}
	n := &TagFileNode{name: name, doc: doc}
	s.attach(n, parent)
	return n
}

func (n *TagFileNode) Kind() Kind { return KindTagFile }

func (n *TagFileNode) Display() string {
	if n.failed {
		return n.name + " (unreadable)"
	}
	return n.name
}

// Path returns the backing file, empty for in-memory documents.
func (n *TagFileNode) Path() string { return n.path }

// Document returns the decoded document, loading it if needed.
func (n *TagFileNode) Document() (*tagdoc.Document, bool) {
	if !n.load() {
		return nil, false
	}
	return n.doc, true
}

func (n *TagFileNode) load() bool {
	if n.doc != nil {
		return true
	}
	if n.path == "" || n.failed {
		return false
	}
	data, err := n.store.fs.Read(n.path)
	if err == nil {
		n.doc, err = tagdoc.Decode(data)
	}
	if err != nil {
		n.failed = true
		n.store.logger.Warn("datanode: load failed", slog.String("path", n.path), slog.String("error", err.Error()))
		return false
	}
	n.sum = checksum.Sum(data)
	return true
}

func (n *TagFileNode) container() tag.Container {
	if n.doc == nil {
		return nil
	}
	return n.doc.Root
}

func (n *TagFileNode) HasUnexpandedChildren() bool {
	if n.expanded || n.failed {
		return false
	}
	return n.doc == nil || n.doc.Root.Len() > 0
}

func (n *TagFileNode) Expand() {
	n.expandWith(func() []Node {
		if !n.load() {
			return nil
		}
		return mirror(n.store, n, n.doc.Root)
	})
}

// Collapse also drops the decoded document of a file-backed node; it is
// decoded again on the next expansion.
func (n *TagFileNode) Collapse() {
	if n.IsModified() {
		return
	}
	n.releaseChildren()
	n.expanded = false
	if n.path != "" {
		n.doc = nil
	}
}

func (n *TagFileNode) CanSearch() bool { return !n.failed }

func (n *TagFileNode) CanCreateTag(t tag.Type) bool {
	return t != tag.End && n.load()
}

func (n *TagFileNode) CreateNode(t tag.Type) bool {
	if !n.load() {
		return false
	}
	return createIn(n, n.doc.Root, t)
}

func (n *TagFileNode) CanPasteInto() bool {
	return n.load() && canPasteInto(n.store, n.doc.Root)
}

func (n *TagFileNode) Paste() bool {
	if !n.load() {
		return false
	}
	return pasteInto(n, n.doc.Root)
}

func (n *TagFileNode) CanRefresh() bool { return n.path != "" }

// Refresh discards every unsaved edit and decodes the file again. Tags that
// were expanded before are expanded again when they still exist.
func (n *TagFileNode) Refresh() bool {
	if n.path == "" {
		return false
	}
	wasExpanded := n.expanded
	set := expandSet(n)
	n.releaseChildren()
	n.expanded = false
	n.modified = false
	n.doc = nil
	n.failed = false
	if n.load() && wasExpanded {
		n.Expand()
		restoreExpandSet(n, set)
	}
	return true
}

// expandSet records the expanded descendants of n as key paths, parents
// before their children.
func expandSet(n Node) [][]string {
	var out [][]string
	var walk func(n Node, prefix []string)
	walk = func(n Node, prefix []string) {
		for i, c := range n.Children() {
			if !c.IsExpanded() {
				continue
			}
			p := append(append([]string(nil), prefix...), childKey(c, i))
			out = append(out, p)
			walk(c, p)
		}
	}
	walk(n, nil)
	return out
}

// childKey names a compound entry by its tag name and a list item by its
// index.
func childKey(c Node, i int) string {
	if t, ok := c.(Named); ok && t.TagName() != "" {
		return "n:" + t.TagName()
	}
	return "i:" + strconv.Itoa(i)
}

// restoreExpandSet expands every path of set below n that can still be
// followed.
func restoreExpandSet(n Node, set [][]string) {
	for _, path := range set {
		cur := n
		for _, key := range path {
			cur = childByKey(cur, key)
			if cur == nil {
				break
			}
			if !cur.IsExpanded() {
				cur.Expand()
			}
		}
	}
}

func childByKey(n Node, key string) Node {
	for i, c := range n.Children() {
		if childKey(c, i) == key {
			return c
		}
	}
	return nil
}

// Checksum returns the digest of the bytes last loaded or saved.
func (n *TagFileNode) Checksum() string { return n.sum }

// ChangedOnDisk reports whether the file no longer holds the bytes that were
// last loaded or saved.
func (n *TagFileNode) ChangedOnDisk() bool {
	if n.path == "" || n.sum == "" {
		return false
	}
	data, err := n.store.fs.Read(n.path)
	if err != nil {
		return true
	}
	return checksum.Changed(n.sum, data)
}

// Save encodes and atomically writes the document when it holds unsaved
// edits.
func (n *TagFileNode) Save() error {
	if !n.IsModified() {
		return nil
	}
	if n.path == "" {
		n.clearModified()
		return nil
	}
	data, err := tagdoc.Encode(n.doc)
	if err != nil {
		return fmt.Errorf("datanode: save %s: %w", n.path, err)
	}
	if err := n.store.fs.Write(n.path, data); err != nil {
		return fmt.Errorf("datanode: save %s: %w", n.path, err)
	}
	n.sum = checksum.Sum(data)
	n.clearModified()
	return nil
}
