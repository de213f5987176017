// Package fronttree keeps the display tree in step with the data tree.
//
// A display node mirrors exactly one data node. A display node that was never
// expanded carries a single placeholder child so that it still reads as
// expandable; its real children are created from the data node on first
// expansion and matched back to data nodes by identity afterwards.
package fronttree

import "github.com/starford/tagtree/internal/datanode"

// Node is a display tree node.
type Node struct {
	text     string
	icon     int
	data     datanode.Node
	parent   *Node
	children []*Node
	expanded bool
}

// Text returns the label.
func (n *Node) Text() string { return n.text }

// Icon returns the presentation index.
func (n *Node) Icon() int { return n.icon }

// Data returns the mirrored data node; nil for a placeholder.
func (n *Node) Data() datanode.Node { return n.data }

// Parent returns the display parent; nil for a top-level node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the display children, which may be a lone placeholder.
func (n *Node) Children() []*Node { return append([]*Node(nil), n.children...) }

// IsExpanded reports whether the real children are shown.
func (n *Node) IsExpanded() bool { return n.expanded }

// IsPlaceholder reports whether n only marks its parent as expandable.
func (n *Node) IsPlaceholder() bool { return n.data == nil }

// HasPlaceholder reports whether n shows an expand affordance without real
// children.
func (n *Node) HasPlaceholder() bool {
	return len(n.children) == 1 && n.children[0].IsPlaceholder()
}

// HasAncestor reports whether a is a strict display ancestor of n.
func (n *Node) HasAncestor(a *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

func (n *Node) indexOf(c *Node) int {
	for i, x := range n.children {
		if x == c {
			return i
		}
	}
	return -1
}
