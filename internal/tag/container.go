package tag

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is returned when a compound already holds the name.
	ErrDuplicateName = errors.New("tag: duplicate name")
	// ErrTypeMismatch is returned when a list cannot hold the value's type.
	ErrTypeMismatch = errors.New("tag: list element type mismatch")
)

// Container is implemented by *List and *Compound.
type Container interface {
	Value
	Entries() []*Entry
	Len() int
	IndexOf(e *Entry) int
	Remove(e *Entry) bool
	Move(e *Entry, delta int) bool
}

type entries []*Entry

func (es entries) indexOf(e *Entry) int {
	for i, x := range es {
		if x == e {
			return i
		}
	}
	return -1
}

func (es *entries) remove(e *Entry) bool {
	i := es.indexOf(e)
	if i < 0 {
		return false
	}
	*es = append((*es)[:i], (*es)[i+1:]...)
	return true
}

func (es entries) move(e *Entry, delta int) bool {
	i := es.indexOf(e)
	j := i + delta
	if i < 0 || j < 0 || j >= len(es) || delta == 0 {
		return false
	}
	if delta > 0 {
		copy(es[i:j], es[i+1:j+1])
	} else {
		copy(es[j+1:i+1], es[j:i])
	}
	es[j] = e
	return true
}

// Compound is an ordered set of uniquely named tags.
type Compound struct {
	entries entries
}

// NewCompound returns an empty compound.
func NewCompound() *Compound { return &Compound{} }

func (*Compound) Type() Type { return TypeCompound }

// Entries returns a snapshot of the compound's slots in order.
func (c *Compound) Entries() []*Entry { return append([]*Entry(nil), c.entries...) }

func (c *Compound) Len() int { return len(c.entries) }

func (c *Compound) IndexOf(e *Entry) int { return c.entries.indexOf(e) }

func (c *Compound) Remove(e *Entry) bool { return c.entries.remove(e) }

func (c *Compound) Move(e *Entry, delta int) bool { return c.entries.move(e, delta) }

// Get returns the slot holding name.
func (c *Compound) Get(name string) (*Entry, bool) {
	for _, e := range c.entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Add appends a new named slot.
func (c *Compound) Add(name string, v Value) (*Entry, error) {
	if _, ok := c.Get(name); ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	e := &Entry{Name: name, Value: v}
	c.entries = append(c.entries, e)
	return e, nil
}

// Rename changes the name of a slot held by c.
func (c *Compound) Rename(e *Entry, name string) error {
	if e.Name == name {
		return nil
	}
	if _, ok := c.Get(name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	e.Name = name
	return nil
}

// UniqueName returns base, or base with a numeric suffix, that is not yet
// used in c.
func (c *Compound) UniqueName(base string) string {
	if _, ok := c.Get(base); !ok {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s (%d)", base, i)
		if _, ok := c.Get(name); !ok {
			return name
		}
	}
}

// List is an ordered sequence of unnamed tags sharing one element type.
// An empty list has element type End and accepts any type.
type List struct {
	elem    Type
	entries entries
}

// NewList returns an empty list of the given element type.
func NewList(elem Type) *List { return &List{elem: elem} }

func (*List) Type() Type { return TypeList }

// Elem returns the element type, End when unset.
func (l *List) Elem() Type { return l.elem }

func (l *List) Entries() []*Entry { return append([]*Entry(nil), l.entries...) }

func (l *List) Len() int { return len(l.entries) }

func (l *List) IndexOf(e *Entry) int { return l.entries.indexOf(e) }

func (l *List) Move(e *Entry, delta int) bool { return l.entries.move(e, delta) }

func (l *List) Remove(e *Entry) bool {
	if !l.entries.remove(e) {
		return false
	}
	if len(l.entries) == 0 {
		l.elem = End
	}
	return true
}

// Accepts reports whether a value of type t may be appended.
func (l *List) Accepts(t Type) bool {
	return t != End && (len(l.entries) == 0 || l.elem == End || l.elem == t)
}

// Add appends v.
func (l *List) Add(v Value) (*Entry, error) {
	if !l.Accepts(v.Type()) {
		return nil, fmt.Errorf("%w: list of %s cannot hold %s", ErrTypeMismatch, l.elem, v.Type())
	}
	l.elem = v.Type()
	e := &Entry{Value: v}
	l.entries = append(l.entries, e)
	return e, nil
}
