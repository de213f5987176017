// Package tag models the values of a structured binary-tag tree: scalars,
// arrays, homogeneous lists and ordered named compounds.
package tag

import (
	"fmt"
	"strings"
)

// Type identifies the kind of a tag value.
type Type uint8

const (
	End Type = iota
	Byte
	Short
	Int
	Long
	Float
	Double
	ByteArray
	String
	TypeList
	TypeCompound
	IntArray
	LongArray
)

var typeNames = map[Type]string{
	End:          "end",
	Byte:         "byte",
	Short:        "short",
	Int:          "int",
	Long:         "long",
	Float:        "float",
	Double:       "double",
	ByteArray:    "byte_array",
	String:       "string",
	TypeList:     "list",
	TypeCompound: "compound",
	IntArray:     "int_array",
	LongArray:    "long_array",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Container reports whether values of this type hold other tags.
func (t Type) Container() bool {
	return t == TypeList || t == TypeCompound
}

// ParseType resolves a type name as produced by Type.String.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s && t != End {
			return t, nil
		}
	}
	return End, fmt.Errorf("tag: unknown type %q", s)
}

// Value is any tag payload.
type Value interface {
	Type() Type
}

type (
	ByteValue      int8
	ShortValue     int16
	IntValue       int32
	LongValue      int64
	FloatValue     float32
	DoubleValue    float64
	StringValue    string
	ByteArrayValue []byte
	IntArrayValue  []int32
	LongArrayValue []int64
)

func (ByteValue) Type() Type      { return Byte }
func (ShortValue) Type() Type     { return Short }
func (IntValue) Type() Type       { return Int }
func (LongValue) Type() Type      { return Long }
func (FloatValue) Type() Type     { return Float }
func (DoubleValue) Type() Type    { return Double }
func (StringValue) Type() Type    { return String }
func (ByteArrayValue) Type() Type { return ByteArray }
func (IntArrayValue) Type() Type  { return IntArray }
func (LongArrayValue) Type() Type { return LongArray }

// Entry is one slot in a container. Entries are held by pointer so that a
// slot keeps its identity while its container is reordered.
type Entry struct {
	Name  string
	Value Value
}

// Zero returns the default value for t.
func Zero(t Type) (Value, error) {
	switch t {
	case Byte:
		return ByteValue(0), nil
	case Short:
		return ShortValue(0), nil
	case Int:
		return IntValue(0), nil
	case Long:
		return LongValue(0), nil
	case Float:
		return FloatValue(0), nil
	case Double:
		return DoubleValue(0), nil
	case String:
		return StringValue(""), nil
	case ByteArray:
		return ByteArrayValue{}, nil
	case IntArray:
		return IntArrayValue{}, nil
	case LongArray:
		return LongArrayValue{}, nil
	case TypeList:
		return NewList(End), nil
	case TypeCompound:
		return NewCompound(), nil
	}
	return nil, fmt.Errorf("tag: no zero value for %s", t)
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch x := v.(type) {
	case ByteArrayValue:
		return append(ByteArrayValue{}, x...)
	case IntArrayValue:
		return append(IntArrayValue{}, x...)
	case LongArrayValue:
		return append(LongArrayValue{}, x...)
	case *List:
		out := NewList(x.elem)
		for _, e := range x.entries {
			out.entries = append(out.entries, &Entry{Value: Clone(e.Value)})
		}
		return out
	case *Compound:
		out := NewCompound()
		for _, e := range x.entries {
			out.entries = append(out.entries, &Entry{Name: e.Name, Value: Clone(e.Value)})
		}
		return out
	}
	return v
}
