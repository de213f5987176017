package tag

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a value the way it is shown next to its name.
func Format(v Value) string {
	switch x := v.(type) {
	case ByteValue:
		return strconv.FormatInt(int64(x), 10)
	case ShortValue:
		return strconv.FormatInt(int64(x), 10)
	case IntValue:
		return strconv.FormatInt(int64(x), 10)
	case LongValue:
		return strconv.FormatInt(int64(x), 10)
	case FloatValue:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case DoubleValue:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case StringValue:
		return string(x)
	case ByteArrayValue:
		return fmt.Sprintf("[%d bytes]", len(x))
	case IntArrayValue:
		return fmt.Sprintf("[%d ints]", len(x))
	case LongArrayValue:
		return fmt.Sprintf("[%d longs]", len(x))
	case *List:
		return fmt.Sprintf("%d entries", x.Len())
	case *Compound:
		return fmt.Sprintf("%d entries", x.Len())
	}
	return ""
}

// EditText renders a scalar or array value in the form accepted by Parse.
func EditText(v Value) string {
	switch x := v.(type) {
	case ByteArrayValue:
		return joinInts(len(x), func(i int) int64 { return int64(int8(x[i])) })
	case IntArrayValue:
		return joinInts(len(x), func(i int) int64 { return int64(x[i]) })
	case LongArrayValue:
		return joinInts(len(x), func(i int) int64 { return x[i] })
	}
	return Format(v)
}

func joinInts(n int, at func(int) int64) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = strconv.FormatInt(at(i), 10)
	}
	return strings.Join(parts, " ")
}

// Parse converts text into a value of type t. Arrays take whitespace or
// comma separated integers.
func Parse(t Type, text string) (Value, error) {
	s := strings.TrimSpace(text)
	switch t {
	case Byte:
		n, err := strconv.ParseInt(s, 10, 8)
		return ByteValue(n), wrapParse(t, text, err)
	case Short:
		n, err := strconv.ParseInt(s, 10, 16)
		return ShortValue(n), wrapParse(t, text, err)
	case Int:
		n, err := strconv.ParseInt(s, 10, 32)
		return IntValue(n), wrapParse(t, text, err)
	case Long:
		n, err := strconv.ParseInt(s, 10, 64)
		return LongValue(n), wrapParse(t, text, err)
	case Float:
		f, err := strconv.ParseFloat(s, 32)
		return FloatValue(f), wrapParse(t, text, err)
	case Double:
		f, err := strconv.ParseFloat(s, 64)
		return DoubleValue(f), wrapParse(t, text, err)
	case String:
		return StringValue(text), nil
	case ByteArray:
		ns, err := parseInts(s, 8)
		out := make(ByteArrayValue, len(ns))
		for i, n := range ns {
			out[i] = byte(int8(n))
		}
		return out, wrapParse(t, text, err)
	case IntArray:
		ns, err := parseInts(s, 32)
		out := make(IntArrayValue, len(ns))
		for i, n := range ns {
			out[i] = int32(n)
		}
		return out, wrapParse(t, text, err)
	case LongArray:
		ns, err := parseInts(s, 64)
		return LongArrayValue(ns), wrapParse(t, text, err)
	}
	return nil, fmt.Errorf("tag: %s values cannot be parsed from text", t)
}

func parseInts(s string, bits int) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseInt(f, 10, bits)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func wrapParse(t Type, text string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("tag: parse %s from %q: %w", t, text, err)
}
