package fronttree

import "github.com/starford/tagtree/internal/datanode"

// Selection is an ordered set of display nodes with a primary member.
// The owning Tree drops members whose display node leaves the tree.
type Selection struct {
	nodes   []*Node
	primary *Node
}

// Nodes returns the members in selection order.
func (s *Selection) Nodes() []*Node { return append([]*Node(nil), s.nodes...) }

// Primary returns the primary member, nil when the selection is empty.
func (s *Selection) Primary() *Node { return s.primary }

// Len returns the number of members.
func (s *Selection) Len() int { return len(s.nodes) }

// Contains reports whether n is a member.
func (s *Selection) Contains(n *Node) bool {
	for _, x := range s.nodes {
		if x == n {
			return true
		}
	}
	return false
}

// Data returns the data nodes of the members in selection order.
func (s *Selection) Data() []datanode.Node {
	out := make([]datanode.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.data)
	}
	return out
}

// Set replaces the members. The first node becomes primary; nil nodes,
// placeholders and duplicates are ignored.
func (s *Selection) Set(nodes ...*Node) {
	s.nodes = s.nodes[:0]
	s.primary = nil
	for _, n := range nodes {
		s.Add(n)
	}
}

// Add appends n unless it is already a member.
func (s *Selection) Add(n *Node) {
	if n == nil || n.IsPlaceholder() || s.Contains(n) {
		return
	}
	s.nodes = append(s.nodes, n)
	if s.primary == nil {
		s.primary = n
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.nodes = nil
	s.primary = nil
}

// remove drops n and every member below it. It reports whether the
// selection changed.
func (s *Selection) remove(n *Node) bool {
	kept := s.nodes[:0]
	changed := false
	for _, x := range s.nodes {
		if x == n || x.HasAncestor(n) {
			changed = true
			continue
		}
		kept = append(kept, x)
	}
	s.nodes = kept
	if changed && (s.primary == n || (s.primary != nil && s.primary.HasAncestor(n))) {
		s.primary = nil
		if len(s.nodes) > 0 {
			s.primary = s.nodes[0]
		}
	}
	return changed
}
