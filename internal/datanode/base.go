package datanode

import (
	"errors"

	"github.com/starford/tagtree/internal/capability"
	"github.com/starford/tagtree/internal/tag"
)

// Base carries the state common to every node kind and the "not supported"
// answers for every capability. Concrete kinds embed it and override what
// they support.
type Base struct {
	store    *Store
	self     Node
	id       NodeID
	parentID NodeID
	children []Node
	expanded bool
	modified bool
}

func (b *Base) base() *Base { return b }

func (b *Base) ID() NodeID { return b.id }

// Parent resolves the parent link through the store; a detached parent
// resolves to nil.
func (b *Base) Parent() Node {
	if b.parentID == 0 || b.store == nil {
		return nil
	}
	p, ok := b.store.nodes[b.parentID]
	if !ok {
		return nil
	}
	return p
}

// Children returns the loaded children in order.
func (b *Base) Children() []Node { return append([]Node(nil), b.children...) }

func (b *Base) IsExpanded() bool { return b.expanded }

// IsModified reports unsaved changes in this node or any loaded descendant.
func (b *Base) IsModified() bool {
	if b.modified {
		return true
	}
	for _, c := range b.children {
		if c.IsModified() {
			return true
		}
	}
	return false
}

func (b *Base) HasUnexpandedChildren() bool { return false }

func (b *Base) Expand() { b.expanded = true }

// Collapse discards the loaded children unless the subtree is modified.
func (b *Base) Collapse() {
	if b.IsModified() {
		return
	}
	b.releaseChildren()
	b.expanded = false
}

func (b *Base) GroupCapabilities(Op) capability.Flags { return capability.Single }

func (b *Base) CanCreateTag(tag.Type) bool { return false }
func (b *Base) CreateNode(tag.Type) bool   { return false }
func (b *Base) CanDelete() bool            { return false }
func (b *Base) Delete() bool               { return false }
func (b *Base) CanRename() bool            { return false }
func (b *Base) Rename() bool               { return false }
func (b *Base) CanEdit() bool              { return false }
func (b *Base) Edit() bool                 { return false }
func (b *Base) CanMoveUp() bool            { return false }
func (b *Base) CanMoveDown() bool          { return false }
func (b *Base) ChangeRelativePosition(int) bool {
	return false
}
func (b *Base) CanCut() bool       { return false }
func (b *Base) Cut() bool          { return false }
func (b *Base) CanCopy() bool      { return false }
func (b *Base) Copy() bool         { return false }
func (b *Base) CanPasteInto() bool { return false }
func (b *Base) Paste() bool        { return false }
func (b *Base) CanSearch() bool    { return false }
func (b *Base) CanRefresh() bool   { return false }
func (b *Base) Refresh() bool      { return false }

// Save persists every loaded child. Kinds backed by a file override it.
func (b *Base) Save() error {
	var errs []error
	for _, c := range b.children {
		if err := c.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// expandWith loads children once through load.
func (b *Base) expandWith(load func() []Node) {
	if b.expanded {
		return
	}
	b.children = load()
	b.expanded = true
}

func (b *Base) releaseChildren() {
	for _, c := range b.children {
		b.store.detach(c)
	}
	b.children = nil
}

func (b *Base) appendChild(n Node) {
	b.children = append(b.children, n)
}

func (b *Base) removeChild(n Node) bool {
	for i, c := range b.children {
		if c.ID() == n.ID() {
			b.children = append(b.children[:i], b.children[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Base) moveChild(n Node, delta int) {
	i := -1
	for k, c := range b.children {
		if c.ID() == n.ID() {
			i = k
			break
		}
	}
	j := i + delta
	if i < 0 || j < 0 || j >= len(b.children) {
		return
	}
	c := b.children[i]
	b.children = append(b.children[:i], b.children[i+1:]...)
	b.children = append(b.children[:j], append([]Node{c}, b.children[j:]...)...)
}

func (b *Base) clearModified() {
	b.modified = false
	for _, c := range b.children {
		c.base().clearModified()
	}
}

// markModified flags n and the tag file that owns it.
func markModified(n Node) {
	n.base().modified = true
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == KindTagFile {
			p.base().modified = true
			return
		}
	}
}

// Attached reports whether n is still part of its store.
func Attached(n Node) bool {
	if n == nil {
		return false
	}
	b := n.base()
	if b.store == nil {
		return false
	}
	_, ok := b.store.nodes[b.id]
	return ok
}

// Walk visits n and its loaded descendants depth-first, stopping when fn
// returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.base().children {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}
