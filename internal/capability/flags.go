// Package capability defines the group capability bitset that data nodes
// advertise per operation, and the quadrant table used to decide whether a
// multi-node selection may be operated on jointly.
package capability

import "strings"

// Flags is a set of group capabilities.
type Flags uint8

const (
	// Single allows the operation on a lone selected node.
	Single Flags = 1 << iota
	// SiblingSameType allows a group sharing one parent and one kind.
	SiblingSameType
	// SiblingMixedType allows a group sharing one parent with mixed kinds.
	SiblingMixedType
	// MultiSameType allows a group spread over parents with one kind.
	MultiSameType
	// MultiMixedType allows a group spread over parents with mixed kinds.
	MultiMixedType
	// ElideChildren drops selected descendants of selected ancestors.
	ElideChildren
)

const (
	// None is the empty set.
	None Flags = 0
	// All contains every flag; it is the identity for Intersect.
	All = Single | SiblingSameType | SiblingMixedType | MultiSameType | MultiMixedType | ElideChildren
	// AnyGroup contains every multiplicity flag but not ElideChildren.
	AnyGroup = Single | SiblingSameType | SiblingMixedType | MultiSameType | MultiMixedType
)

// Has reports whether every flag in want is present in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// Intersect returns the flags present in both sets.
func (f Flags) Intersect(o Flags) Flags {
	return f & o
}

// Union returns the flags present in either set.
func (f Flags) Union(o Flags) Flags {
	return f | o
}

var flagNames = []struct {
	flag Flags
	name string
}{
	{Single, "single"},
	{SiblingSameType, "sibling-same-type"},
	{SiblingMixedType, "sibling-mixed-type"},
	{MultiSameType, "multi-same-type"},
	{MultiMixedType, "multi-mixed-type"},
	{ElideChildren, "elide-children"},
}

func (f Flags) String() string {
	if f == None {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// quadrants maps [commonContainer][commonType] to the flag a multi-node
// selection must carry.
var quadrants = [2][2]Flags{
	// different container
	{MultiMixedType, MultiSameType},
	// same container
	{SiblingMixedType, SiblingSameType},
}

// Required returns the flag a selection of more than one node must carry,
// given whether all members share a parent and whether they share a kind.
func Required(commonContainer, commonType bool) Flags {
	return quadrants[b2i(commonContainer)][b2i(commonType)]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
