package negotiator

import (
	"github.com/starford/tagtree/internal/capability"
	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/tag"
)

// CreateTag allows creating a child tag of type t. Creation is single-node
// only.
func CreateTag(t tag.Type) Predicate {
	return func(d datanode.Node) (capability.Flags, bool) {
		return capability.Single, d != nil && d.CanCreateTag(t)
	}
}

func opPredicate(op datanode.Op, can func(datanode.Node) bool) Predicate {
	return func(d datanode.Node) (capability.Flags, bool) {
		if d == nil {
			return capability.None, false
		}
		return d.GroupCapabilities(op), can(d)
	}
}

var (
	Delete    = opPredicate(datanode.OpDelete, datanode.Node.CanDelete)
	Rename    = opPredicate(datanode.OpRename, datanode.Node.CanRename)
	Edit      = opPredicate(datanode.OpEdit, datanode.Node.CanEdit)
	MoveUp    = opPredicate(datanode.OpReorder, datanode.Node.CanMoveUp)
	MoveDown  = opPredicate(datanode.OpReorder, datanode.Node.CanMoveDown)
	Reorder   = opPredicate(datanode.OpReorder, func(d datanode.Node) bool { return d.CanMoveUp() || d.CanMoveDown() })
	Cut       = opPredicate(datanode.OpCut, datanode.Node.CanCut)
	Copy      = opPredicate(datanode.OpCopy, datanode.Node.CanCopy)
	PasteInto = opPredicate(datanode.OpPaste, datanode.Node.CanPasteInto)
	Search    = opPredicate(datanode.OpSearch, datanode.Node.CanSearch)
	Refresh   = opPredicate(datanode.OpRefresh, datanode.Node.CanRefresh)
)

// ByName maps operation names, as used by the front ends, to predicates.
var ByName = map[string]Predicate{
	"delete":    Delete,
	"rename":    Rename,
	"edit":      Edit,
	"move-up":   MoveUp,
	"move-down": MoveDown,
	"reorder":   Reorder,
	"cut":       Cut,
	"copy":      Copy,
	"paste":     PasteInto,
	"search":    Search,
	"refresh":   Refresh,
}
