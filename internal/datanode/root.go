package datanode

import "github.com/starford/tagtree/internal/capability"

// DefaultRootName is the label of a fresh root.
const DefaultRootName = "Data Sources"

// RootNode is the single parentless node of a session. Its children are the
// containers the user opened; they are not re-derivable, so collapsing the
// root only hides them.
type RootNode struct {
	Base
	name string
}

// NewRoot creates the session root.
func NewRoot(s *Store) *RootNode {
	n := &RootNode{name: DefaultRootName}
	s.attach(n, nil)
	return n
}

func (n *RootNode) Kind() Kind { return KindRoot }

func (n *RootNode) Display() string { return n.name }

// SetDisplayName changes the root label.
func (n *RootNode) SetDisplayName(name string) { n.name = name }

func (n *RootNode) Expand() { n.expanded = true }

func (n *RootNode) Collapse() { n.expanded = false }

func (n *RootNode) CanSearch() bool { return len(n.children) > 0 }

func (n *RootNode) GroupCapabilities(Op) capability.Flags { return capability.Single }

// Add adopts an opened container as the last child. The node must have been
// created with n as its parent.
func (n *RootNode) Add(child Node) {
	if child.Parent() == nil || child.Parent().ID() != n.id {
		return
	}
	n.appendChild(child)
}

// Clear detaches every opened container.
func (n *RootNode) Clear() {
	n.releaseChildren()
}
