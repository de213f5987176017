// Package iconreg maps data-node kinds to presentation indices.
package iconreg

import "github.com/starford/tagtree/internal/datanode"

// DefaultIndex is returned for kinds that were never registered.
const DefaultIndex = 15

// Registry is a kind → presentation index table.
type Registry struct {
	index map[datanode.Kind]int
}

// New returns a registry preloaded with the standard table.
func New() *Registry {
	r := &Registry{index: make(map[datanode.Kind]int)}
	for k, i := range defaults {
		r.Register(k, i)
	}
	return r
}

var defaults = map[datanode.Kind]int{
	datanode.KindByte:      0,
	datanode.KindShort:     1,
	datanode.KindInt:       2,
	datanode.KindLong:      3,
	datanode.KindFloat:     4,
	datanode.KindDouble:    5,
	datanode.KindByteArray: 6,
	datanode.KindString:    7,
	datanode.KindList:      8,
	datanode.KindCompound:  9,
	datanode.KindDirectory: 10,
	datanode.KindTagFile:   12,
	datanode.KindIntArray:  14,
	datanode.KindLongArray: 14,
	datanode.KindRoot:      16,
}

// Register sets the index for kind, replacing any previous one.
func (r *Registry) Register(kind datanode.Kind, index int) {
	r.index[kind] = index
}

// Lookup returns the index for kind, or DefaultIndex.
func (r *Registry) Lookup(kind datanode.Kind) int {
	if i, ok := r.index[kind]; ok {
		return i
	}
	return DefaultIndex
}
