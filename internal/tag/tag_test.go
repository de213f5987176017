package tag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundMoveKeepsEntryIdentity(t *testing.T) {
	c := NewCompound()
	a, _ := c.Add("a", IntValue(1))
	b, _ := c.Add("b", IntValue(2))
	d, _ := c.Add("c", IntValue(3))

	require.True(t, c.Move(a, 2))
	assert.Equal(t, []*Entry{b, d, a}, c.Entries())

	require.True(t, c.Move(a, -1))
	assert.Equal(t, []*Entry{b, a, d}, c.Entries())

	assert.False(t, c.Move(b, -1), "first entry cannot move up")
	assert.False(t, c.Move(d, 1), "last entry cannot move down")
}

func TestCompoundDuplicateNames(t *testing.T) {
	c := NewCompound()
	e, err := c.Add("x", ByteValue(1))
	require.NoError(t, err)

	_, err = c.Add("x", ByteValue(2))
	assert.True(t, errors.Is(err, ErrDuplicateName))

	_, _ = c.Add("y", ByteValue(3))
	assert.Error(t, c.Rename(e, "y"))
	assert.NoError(t, c.Rename(e, "z"))
	assert.Equal(t, "x", c.UniqueName("x"))
	assert.Equal(t, "z (1)", c.UniqueName("z"))
}

func TestListElementType(t *testing.T) {
	l := NewList(End)
	assert.True(t, l.Accepts(String))

	e, err := l.Add(StringValue("a"))
	require.NoError(t, err)
	assert.Equal(t, String, l.Elem())

	_, err = l.Add(IntValue(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	require.True(t, l.Remove(e))
	assert.Equal(t, End, l.Elem(), "empty list resets its element type")
	assert.True(t, l.Accepts(Int))
}

func TestCloneIsDeep(t *testing.T) {
	c := NewCompound()
	inner := NewCompound()
	_, _ = inner.Add("v", IntArrayValue{1, 2})
	_, _ = c.Add("inner", inner)

	cp := Clone(c).(*Compound)
	e, _ := cp.Get("inner")
	_, _ = e.Value.(*Compound).Add("extra", ByteValue(1))

	assert.Equal(t, 1, inner.Len())
	assert.Equal(t, 2, e.Value.(*Compound).Len())
}

func TestParseAndFormat(t *testing.T) {
	cases := []struct {
		typ  Type
		text string
		want string
	}{
		{Byte, "-5", "-5"},
		{Short, "300", "300"},
		{Int, " 42 ", "42"},
		{Long, "9000000000", "9000000000"},
		{Double, "1.5", "1.5"},
		{String, "hello", "hello"},
		{IntArray, "1, 2 3", "[3 ints]"},
	}
	for _, c := range cases {
		v, err := Parse(c.typ, c.text)
		require.NoError(t, err, c.text)
		assert.Equal(t, c.typ, v.Type())
		assert.Equal(t, c.want, Format(v))
	}

	_, err := Parse(Byte, "300")
	assert.Error(t, err)
	_, err = Parse(TypeCompound, "x")
	assert.Error(t, err)

	v, _ := Parse(ByteArray, "-1 2")
	assert.Equal(t, "-1 2", EditText(v))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("Int_Array")
	require.NoError(t, err)
	assert.Equal(t, IntArray, typ)

	_, err = ParseType("end")
	assert.Error(t, err)
}
