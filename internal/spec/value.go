package spec

import (
	"bytes"
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is a read-only view over a node of the source document. The zero
// Value stands for an absent field. Mappings keep their declaration order
// when rendered as JSON.
type Value struct {
	node *yaml.Node
}

// NewValue wraps n, following aliases and document wrappers.
func NewValue(n *yaml.Node) Value {
	return Value{node: resolveNode(n)}
}

// ValueOf builds a Value from a plain Go value (maps are encoded with sorted keys).
func ValueOf(v any) Value {
	if v == nil {
		return Value{}
	}
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return Value{}
	}
	return NewValue(&n)
}

func resolveNode(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.AliasNode:
			n = n.Alias
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		default:
			return n
		}
	}
	return nil
}

// IsZero reports whether the field was absent.
func (v Value) IsZero() bool { return v.node == nil }

func (v Value) isMapping() bool { return v.node != nil && v.node.Kind == yaml.MappingNode }

func (v Value) isNull() bool {
	return v.node == nil || (v.node.Kind == yaml.ScalarNode && v.node.ShortTag() == "!!null")
}

// Truthy follows the usual dynamic-language notion of truth: null, empty
// strings, false, zero and empty collections are false.
func (v Value) Truthy() bool {
	n := v.node
	if n == nil {
		return false
	}
	switch n.Kind {
	case yaml.MappingNode:
		return len(mappingEntries(n)) > 0
	case yaml.SequenceNode:
		return len(n.Content) > 0
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return false
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return n.Value != ""
			}
			return b
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				var d float64
				if n.Decode(&d) == nil {
					return d != 0
				}
				return true
			}
			return f != 0
		default:
			return n.Value != ""
		}
	}
	return false
}

// Field returns the value stored under key when v is a mapping.
func (v Value) Field(key string) (Value, bool) {
	if !v.isMapping() {
		return Value{}, false
	}
	for _, e := range mappingEntries(v.node) {
		if e.key == key {
			return NewValue(e.val), true
		}
	}
	return Value{}, false
}

// Get is Field without the presence flag.
func (v Value) Get(key string) Value {
	f, _ := v.Field(key)
	return f
}

// pairs iterates a mapping in declaration order, with merged keys expanded.
func (v Value) pairs(fn func(key string, val Value)) {
	if !v.isMapping() {
		return
	}
	for _, e := range mappingEntries(v.node) {
		fn(e.key, NewValue(e.val))
	}
}

type entry struct {
	key string
	val *yaml.Node
}

// mappingEntries flattens a mapping node the way a YAML decoder builds a
// map: "<<" merge sources come first, explicit keys override them, and a
// repeated key keeps its first position with the last value.
func mappingEntries(n *yaml.Node) []entry {
	var out []entry
	index := make(map[string]int)
	set := func(key string, val *yaml.Node) {
		if i, ok := index[key]; ok {
			out[i].val = val
			return
		}
		index[key] = len(out)
		out = append(out, entry{key, val})
	}

	c := n.Content
	var explicit []entry
	for i := 0; i+1 < len(c); i += 2 {
		k := resolveNode(c[i])
		if k == nil {
			continue
		}
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			for _, src := range mergeSources(c[i+1]) {
				for _, e := range mappingEntries(src) {
					set(e.key, e.val)
				}
			}
			continue
		}
		explicit = append(explicit, entry{k.Value, c[i+1]})
	}
	for _, e := range explicit {
		set(e.key, e.val)
	}
	return out
}

// mergeSources lists the mappings named by a merge value, lowest priority
// first: for "<<: [*a, *b]" keys of a win over keys of b.
func mergeSources(n *yaml.Node) []*yaml.Node {
	n = resolveNode(n)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{n}
	case yaml.SequenceNode:
		var out []*yaml.Node
		for i := len(n.Content) - 1; i >= 0; i-- {
			if m := resolveNode(n.Content[i]); m != nil && m.Kind == yaml.MappingNode {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// String returns the literal text of a scalar, or compact JSON for
// collections. Absent and null values render as "".
func (v Value) String() string {
	if v.isNull() {
		return ""
	}
	if v.node.Kind == yaml.ScalarNode {
		return v.node.Value
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// MarshalJSON renders the node as JSON keeping mapping order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNodeJSON(&buf, v.node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNodeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	n = resolveNode(n)
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i, e := range mappingEntries(n) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, e.key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeNodeJSON(buf, e.val); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNodeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		var scalar any
		if err := n.Decode(&scalar); err != nil {
			return writeJSONValue(buf, n.Value)
		}
		if err := writeJSONValue(buf, scalar); err != nil {
			// NaN and infinities have no JSON form.
			return writeJSONValue(buf, n.Value)
		}
	}
	return nil
}

func writeJSONValue(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
