// Package datanode implements the backing semantic tree: lazily expanded
// nodes that expose their children, their parent and, per structural
// operation, whether the operation is legal and under which group
// conditions it may run.
//
// Nodes live in a Store arena. Parent links are NodeIDs resolved through the
// store, so a node that has been deleted, cut or discarded by a collapse can
// no longer be reached from its former children.
package datanode

import (
	"fmt"

	"github.com/starford/tagtree/internal/capability"
	"github.com/starford/tagtree/internal/tag"
)

// NodeID is a stable identity issued by a Store. Zero is never issued.
type NodeID uint64

// Kind is the closed set of concrete node kinds.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRoot
	KindDirectory
	KindTagFile
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindByteArray
	KindString
	KindList
	KindCompound
	KindIntArray
	KindLongArray
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindRoot:      "root",
	KindDirectory: "directory",
	KindTagFile:   "tag_file",
	KindByte:      "byte",
	KindShort:     "short",
	KindInt:       "int",
	KindLong:      "long",
	KindFloat:     "float",
	KindDouble:    "double",
	KindByteArray: "byte_array",
	KindString:    "string",
	KindList:      "list",
	KindCompound:  "compound",
	KindIntArray:  "int_array",
	KindLongArray: "long_array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindOf returns the node kind that represents tag values of type t.
func KindOf(t tag.Type) Kind {
	switch t {
	case tag.Byte:
		return KindByte
	case tag.Short:
		return KindShort
	case tag.Int:
		return KindInt
	case tag.Long:
		return KindLong
	case tag.Float:
		return KindFloat
	case tag.Double:
		return KindDouble
	case tag.ByteArray:
		return KindByteArray
	case tag.String:
		return KindString
	case tag.TypeList:
		return KindList
	case tag.TypeCompound:
		return KindCompound
	case tag.IntArray:
		return KindIntArray
	case tag.LongArray:
		return KindLongArray
	}
	return KindUnknown
}

// Op names an operation family for group capability queries.
type Op uint8

const (
	OpDelete Op = iota
	OpRename
	OpEdit
	OpReorder
	OpCut
	OpCopy
	OpPaste
	OpSearch
	OpRefresh
)

// Node is the capability surface of a backing tree node.
type Node interface {
	ID() NodeID
	Kind() Kind
	Display() string
	Parent() Node
	Children() []Node

	IsExpanded() bool
	HasUnexpandedChildren() bool
	IsModified() bool
	Expand()
	Collapse()

	// GroupCapabilities reports the conditions under which op may run on
	// this node as part of a multi-node selection.
	GroupCapabilities(op Op) capability.Flags

	CanCreateTag(t tag.Type) bool
	CreateNode(t tag.Type) bool
	CanDelete() bool
	Delete() bool
	CanRename() bool
	Rename() bool
	CanEdit() bool
	Edit() bool
	CanMoveUp() bool
	CanMoveDown() bool
	ChangeRelativePosition(delta int) bool
	CanCut() bool
	Cut() bool
	CanCopy() bool
	Copy() bool
	CanPasteInto() bool
	Paste() bool
	CanSearch() bool
	CanRefresh() bool
	Refresh() bool

	Save() error

	base() *Base
}

// Named is implemented by nodes that carry a tag name.
type Named interface {
	TagName() string
}

// Valued is implemented by nodes that carry a scalar or array value.
type Valued interface {
	ValueText() string
}

// Pathed is implemented by nodes backed by a file-system path.
type Pathed interface {
	Path() string
}

// Prompter is the edit surface nodes use to obtain names and values.
// A false second result means the user declined.
type Prompter interface {
	PromptName(current string) (string, bool)
	PromptValue(t tag.Type, current string) (string, bool)
}
