// Package tagdoc reads and writes tag documents: a YAML rendering of a root
// compound in which every tag carries its explicit type.
//
//	name: Level
//	tags:
//	  - name: spawn
//	    type: int_array
//	    value: [0, 64, 0]
//	  - name: items
//	    type: list
//	    elem: string
//	    value:
//	      - {type: string, value: stone}
package tagdoc

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/tagtree/internal/tag"
)

// Document is a decoded tag document.
type Document struct {
	Name string
	Root *tag.Compound
}

type decDocument struct {
	Name string    `yaml:"name"`
	Tags []decNode `yaml:"tags"`
}

type decNode struct {
	Name  string    `yaml:"name"`
	Type  string    `yaml:"type"`
	Elem  string    `yaml:"elem"`
	Value yaml.Node `yaml:"value"`
}

type encDocument struct {
	Name string    `yaml:"name,omitempty"`
	Tags []encNode `yaml:"tags"`
}

type encNode struct {
	Name  string `yaml:"name,omitempty"`
	Type  string `yaml:"type"`
	Elem  string `yaml:"elem,omitempty"`
	Value any    `yaml:"value"`
}

// Decode parses a tag document. An empty input yields an empty root.
func Decode(data []byte) (*Document, error) {
	doc := &Document{Root: tag.NewCompound()}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	var raw decDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tagdoc: decode: %w", err)
	}
	doc.Name = raw.Name
	for i, n := range raw.Tags {
		v, err := decodeValue(n)
		if err != nil {
			return nil, fmt.Errorf("tagdoc: tag %d (%q): %w", i, n.Name, err)
		}
		if _, err := doc.Root.Add(n.Name, v); err != nil {
			return nil, fmt.Errorf("tagdoc: %w", err)
		}
	}
	return doc, nil
}

func decodeValue(n decNode) (tag.Value, error) {
	t, err := tag.ParseType(n.Type)
	if err != nil {
		return nil, err
	}
	switch t {
	case tag.TypeCompound:
		var children []decNode
		if err := decodeOptional(&n.Value, &children); err != nil {
			return nil, err
		}
		c := tag.NewCompound()
		for _, child := range children {
			v, err := decodeValue(child)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", child.Name, err)
			}
			if _, err := c.Add(child.Name, v); err != nil {
				return nil, err
			}
		}
		return c, nil
	case tag.TypeList:
		var items []decNode
		if err := decodeOptional(&n.Value, &items); err != nil {
			return nil, err
		}
		elem := tag.End
		if n.Elem != "" {
			if elem, err = tag.ParseType(n.Elem); err != nil {
				return nil, err
			}
		}
		l := tag.NewList(elem)
		for i, item := range items {
			if item.Type == "" && elem != tag.End {
				item.Type = elem.String()
			}
			v, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			if _, err := l.Add(v); err != nil {
				return nil, err
			}
		}
		return l, nil
	case tag.ByteArray, tag.IntArray, tag.LongArray:
		var ns []int64
		if err := decodeOptional(&n.Value, &ns); err != nil {
			return nil, err
		}
		return arrayOf(t, ns), nil
	case tag.String:
		var s string
		if err := decodeOptional(&n.Value, &s); err != nil {
			return nil, err
		}
		return tag.StringValue(s), nil
	}
	// Numeric scalars go through the same text parser used for editing so
	// range checks stay in one place.
	if n.Value.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%s value must be a scalar", t)
	}
	return tag.Parse(t, n.Value.Value)
}

func decodeOptional(node *yaml.Node, out any) error {
	if node.Kind == 0 {
		return nil
	}
	return node.Decode(out)
}

func arrayOf(t tag.Type, ns []int64) tag.Value {
	switch t {
	case tag.ByteArray:
		out := make(tag.ByteArrayValue, len(ns))
		for i, n := range ns {
			out[i] = byte(int8(n))
		}
		return out
	case tag.IntArray:
		out := make(tag.IntArrayValue, len(ns))
		for i, n := range ns {
			out[i] = int32(n)
		}
		return out
	}
	return tag.LongArrayValue(ns)
}

// Encode renders doc as YAML.
func Encode(doc *Document) ([]byte, error) {
	out := encDocument{Name: doc.Name, Tags: encodeEntries(doc.Root.Entries())}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("tagdoc: encode: %w", err)
	}
	return data, nil
}

func encodeEntries(es []*tag.Entry) []encNode {
	out := make([]encNode, 0, len(es))
	for _, e := range es {
		out = append(out, encodeEntry(e))
	}
	return out
}

func encodeEntry(e *tag.Entry) encNode {
	n := encNode{Name: e.Name, Type: e.Value.Type().String()}
	switch v := e.Value.(type) {
	case *tag.Compound:
		n.Value = encodeEntries(v.Entries())
	case *tag.List:
		if v.Elem() != tag.End {
			n.Elem = v.Elem().String()
		}
		n.Value = encodeEntries(v.Entries())
	case tag.ByteArrayValue:
		ns := make([]int64, len(v))
		for i, b := range v {
			ns[i] = int64(int8(b))
		}
		n.Value = ns
	case tag.IntArrayValue:
		n.Value = []int32(v)
	case tag.LongArrayValue:
		n.Value = []int64(v)
	case tag.StringValue:
		n.Value = string(v)
	case tag.ByteValue:
		n.Value = int64(v)
	case tag.ShortValue:
		n.Value = int64(v)
	case tag.IntValue:
		n.Value = int64(v)
	case tag.LongValue:
		n.Value = int64(v)
	case tag.FloatValue:
		n.Value = float32(v)
	case tag.DoubleValue:
		n.Value = float64(v)
	}
	return n
}
