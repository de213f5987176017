// Package negotiator decides whether an operation may run jointly on a set
// of selected display nodes.
package negotiator

import (
	"github.com/starford/tagtree/internal/capability"
	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/fronttree"
)

// Predicate tests whether an operation is legal on one data node and
// returns the group capabilities the node grants for it.
type Predicate func(datanode.Node) (capability.Flags, bool)

// CanOperate reports whether pred allows the operation on every node and the
// group as a whole.
func CanOperate(nodes []*fronttree.Node, pred Predicate) bool {
	ok, _ := CanOperateEx(nodes, pred)
	return ok
}

// CanOperateEx is CanOperate that also reports whether selected descendants
// of selected ancestors should be dropped before running the operation.
// All nodes must agree on that policy.
func CanOperateEx(nodes []*fronttree.Node, pred Predicate) (ok, elide bool) {
	if len(nodes) == 0 {
		return false, false
	}
	joint := capability.All
	for i, n := range nodes {
		if n == nil || n.Data() == nil {
			return false, false
		}
		d := n.Data()
		caps, ok := pred(d)
		if !ok {
			return false, false
		}
		joint = joint.Intersect(caps)

		e := d.GroupCapabilities(datanode.OpDelete).Has(capability.ElideChildren)
		if i == 0 {
			elide = e
		} else if e != elide {
			return false, false
		}
	}
	if len(nodes) > 1 && !joint.Has(capability.Required(commonContainer(nodes), commonType(nodes))) {
		return false, false
	}
	return true, elide
}

// ElideChildren drops every node that has a display ancestor in the set.
func ElideChildren(nodes []*fronttree.Node) []*fronttree.Node {
	in := make(map[*fronttree.Node]bool, len(nodes))
	for _, n := range nodes {
		in[n] = true
	}
	out := make([]*fronttree.Node, 0, len(nodes))
	for _, n := range nodes {
		covered := false
		for p := n.Parent(); p != nil; p = p.Parent() {
			if in[p] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, n)
		}
	}
	return out
}

// commonContainer compares data parents; the display tree may lag.
func commonContainer(nodes []*fronttree.Node) bool {
	first := parentID(nodes[0].Data())
	for _, n := range nodes[1:] {
		if parentID(n.Data()) != first {
			return false
		}
	}
	return true
}

func parentID(d datanode.Node) datanode.NodeID {
	if p := d.Parent(); p != nil {
		return p.ID()
	}
	return 0
}

func commonType(nodes []*fronttree.Node) bool {
	first := nodes[0].Data().Kind()
	for _, n := range nodes[1:] {
		if n.Data().Kind() != first {
			return false
		}
	}
	return true
}
