package fronttree

import (
	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/iconreg"
)

// Tree is the display tree over one data root. It is the only writer of
// display nodes and of the selection, and is owned by the controller thread.
type Tree struct {
	root        *datanode.RootNode
	icons       *iconreg.Registry
	virtualRoot bool
	top         []*Node
	sel         Selection
}

// New creates an empty display tree over root. Call RefreshRootNodes to
// populate the top level.
func New(root *datanode.RootNode, icons *iconreg.Registry) *Tree {
	if icons == nil {
		icons = iconreg.New()
	}
	return &Tree{root: root, icons: icons, virtualRoot: true}
}

// Root returns the data root.
func (t *Tree) Root() *datanode.RootNode { return t.root }

// TopLevel returns the top-level display nodes.
func (t *Tree) TopLevel() []*Node { return append([]*Node(nil), t.top...) }

// Selection returns the selection owned by the tree.
func (t *Tree) Selection() *Selection { return &t.sel }

// VirtualRoot reports whether the data root is shown as the sole top-level
// node.
func (t *Tree) VirtualRoot() bool { return t.virtualRoot }

// SetVirtualRoot switches the display mode and rebuilds the top level.
func (t *Tree) SetVirtualRoot(on bool) {
	if t.virtualRoot == on {
		return
	}
	t.virtualRoot = on
	for _, n := range t.top {
		t.drop(n)
	}
	t.top = nil
	t.RefreshRootNodes()
}

// CreateUnexpanded builds a display node for data with a placeholder child
// when data has children to show.
func (t *Tree) CreateUnexpanded(data datanode.Node) *Node {
	n := &Node{
		text: data.Display(),
		icon: t.icons.Lookup(data.Kind()),
		data: data,
	}
	t.resetPlaceholder(n)
	return n
}

func (t *Tree) resetPlaceholder(n *Node) {
	if n.data.HasUnexpandedChildren() || len(n.data.Children()) > 0 {
		n.children = []*Node{{parent: n}}
	}
}

// Expand shows the data children of n, loading them first if needed.
func (t *Tree) Expand(n *Node) {
	if n == nil || n.data == nil || n.expanded {
		return
	}
	t.clearChildren(n)
	if !n.data.IsExpanded() {
		n.data.Expand()
	}
	for _, c := range n.data.Children() {
		t.adopt(n, t.CreateUnexpanded(c))
	}
	n.expanded = true
}

// Collapse discards the display children of n and asks the data node to
// release its own. It is refused while the data subtree is modified.
func (t *Tree) Collapse(n *Node) bool {
	if n == nil || n.data == nil || n.data.IsModified() {
		return false
	}
	n.data.Collapse()
	t.clearChildren(n)
	t.resetPlaceholder(n)
	n.expanded = false
	return true
}

// RefreshChildren reconciles the display children of n with the current
// children of data by identity. A nil n stands for the top level.
func (t *Tree) RefreshChildren(n *Node, data datanode.Node) {
	if data == nil {
		return
	}
	if n == nil {
		if t.virtualRoot {
			t.RefreshRootNodes()
			return
		}
		t.top = t.reconcile(nil, t.top, data.Children())
		return
	}
	n.children = t.reconcile(n, n.children, data.Children())
	if len(n.children) > 0 {
		n.expanded = true
		return
	}
	if data.HasUnexpandedChildren() {
		n.expanded = false
		t.Expand(n)
	}
}

// reconcile returns one display node per data child, reusing the current
// display node of every data child that is still present. Display nodes
// left over are dropped.
func (t *Tree) reconcile(parent *Node, current []*Node, data []datanode.Node) []*Node {
	byID := make(map[datanode.NodeID]*Node, len(current))
	for _, c := range current {
		if c.data != nil {
			byID[c.data.ID()] = c
		}
	}
	next := make([]*Node, 0, len(data))
	for _, d := range data {
		if c, ok := byID[d.ID()]; ok {
			delete(byID, d.ID())
			next = append(next, c)
			continue
		}
		c := t.CreateUnexpanded(d)
		c.parent = parent
		next = append(next, c)
	}
	for _, c := range current {
		if c.data == nil {
			continue
		}
		if _, stale := byID[c.data.ID()]; stale {
			t.drop(c)
		}
	}
	return next
}

// RefreshRootNodes rebuilds the top level: the data root alone in
// virtual-root mode, the root's children otherwise.
func (t *Tree) RefreshRootNodes() {
	if t.virtualRoot {
		if len(t.top) == 1 && t.top[0].data == datanode.Node(t.root) {
			top := t.top[0]
			t.UpdateText(top)
			if top.expanded {
				t.RefreshChildren(top, t.root)
			} else if !top.HasPlaceholder() {
				t.resetPlaceholder(top)
			}
			return
		}
		for _, n := range t.top {
			t.drop(n)
		}
		t.top = []*Node{t.CreateUnexpanded(t.root)}
		return
	}
	if !t.root.IsExpanded() {
		t.root.Expand()
	}
	t.top = t.reconcile(nil, t.top, t.root.Children())
}

// FindDisplayNode returns the display node mirroring data, expanding the
// collapsed display ancestors on the way down. It returns nil when the path
// cannot be matched.
func (t *Tree) FindDisplayNode(data datanode.Node) *Node {
	n, path := t.topFor(data)
	for _, d := range path {
		if n == nil {
			return nil
		}
		if !n.expanded {
			t.Expand(n)
		}
		n = n.child(d)
	}
	return n
}

// CollapseBelow walks down towards data through expanded display nodes only
// and collapses the display node of data when the walk reaches it.
func (t *Tree) CollapseBelow(data datanode.Node) {
	n, path := t.topFor(data)
	for _, d := range path {
		if n == nil || !n.expanded {
			return
		}
		n = n.child(d)
	}
	if n != nil && n.expanded {
		t.Collapse(n)
	}
}

// ExpandToEdge expands every display node below n whose data node is
// expanded, restoring the visible depth after a refresh.
func (t *Tree) ExpandToEdge(n *Node) {
	if n == nil || n.data == nil || !n.data.IsExpanded() {
		return
	}
	if !n.expanded {
		t.Expand(n)
	}
	for _, c := range n.children {
		t.ExpandToEdge(c)
	}
}

// UpdateText copies the data node's label onto n.
func (t *Tree) UpdateText(n *Node) {
	if n == nil || n.data == nil {
		return
	}
	n.text = n.data.Display()
}

// Remove takes n out of the display tree and the selection. It reports
// whether the selection changed.
func (t *Tree) Remove(n *Node) bool {
	if n == nil {
		return false
	}
	if p := n.parent; p != nil {
		if i := p.indexOf(n); i >= 0 {
			p.children = append(p.children[:i], p.children[i+1:]...)
		}
	} else {
		for i, x := range t.top {
			if x == n {
				t.top = append(t.top[:i], t.top[i+1:]...)
				break
			}
		}
	}
	return t.drop(n)
}

// Lookup returns the display node currently mirroring the data node with
// the given identity, without expanding anything.
func (t *Tree) Lookup(id datanode.NodeID) *Node {
	var walk func([]*Node) *Node
	walk = func(ns []*Node) *Node {
		for _, n := range ns {
			if n.data == nil {
				continue
			}
			if n.data.ID() == id {
				return n
			}
			if found := walk(n.children); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(t.top)
}

// topFor returns the top-level display node on the path to data and the
// data nodes below it, outermost first.
func (t *Tree) topFor(data datanode.Node) (*Node, []datanode.Node) {
	var chain []datanode.Node
	for d := data; d != nil; d = d.Parent() {
		chain = append(chain, d)
	}
	if len(chain) == 0 || chain[len(chain)-1].ID() != t.root.ID() {
		return nil, nil
	}
	if !t.virtualRoot {
		chain = chain[:len(chain)-1]
		if len(chain) == 0 {
			return nil, nil
		}
	}
	top := chain[len(chain)-1]
	path := make([]datanode.Node, 0, len(chain)-1)
	for i := len(chain) - 2; i >= 0; i-- {
		path = append(path, chain[i])
	}
	for _, n := range t.top {
		if n.data != nil && n.data.ID() == top.ID() {
			return n, path
		}
	}
	return nil, nil
}

func (n *Node) child(d datanode.Node) *Node {
	for _, c := range n.children {
		if c.data != nil && c.data.ID() == d.ID() {
			return c
		}
	}
	return nil
}

func (t *Tree) adopt(parent, n *Node) {
	n.parent = parent
	parent.children = append(parent.children, n)
}

func (t *Tree) clearChildren(n *Node) {
	for _, c := range n.children {
		t.drop(c)
	}
	n.children = nil
}

// drop purges n and its display subtree from the selection and unlinks it.
func (t *Tree) drop(n *Node) bool {
	changed := t.sel.remove(n)
	n.parent = nil
	return changed
}
