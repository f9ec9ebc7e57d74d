// Package template models document, filter and update templates as a tagged
// tree of objects, arrays and scalars, and provides path-addressed lookup and
// mutation over that tree.
//
// Object key order is preserved, which matters for document databases where
// filters and pipeline stages are order-sensitive.
package template

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NodeKind discriminates the three node variants.
type NodeKind int

const (
	// KindScalar is a leaf value: string, number, bool or nil.
	KindScalar NodeKind = iota
	// KindObject is an ordered mapping of string keys to child nodes.
	KindObject
	// KindArray is an ordered sequence of child nodes.
	KindArray
)

func (k NodeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Field is one key/value entry of an object node.
type Field struct {
	Key   string
	Value *Node
}

// Node is one node of a template tree. Templates are treated as immutable
// after load; substitution always happens on a Clone.
type Node struct {
	kind   NodeKind
	fields []Field // object
	items  []*Node // array
	value  any     // scalar
}

// Scalar creates a leaf node.
func Scalar(v any) *Node {
	return &Node{kind: KindScalar, value: v}
}

// Object creates an object node with the given fields, in order.
func Object(fields ...Field) *Node {
	return &Node{kind: KindObject, fields: fields}
}

// Array creates an array node with the given items, in order.
func Array(items ...*Node) *Node {
	return &Node{kind: KindArray, items: items}
}

// Kind returns the node's variant tag.
func (n *Node) Kind() NodeKind { return n.kind }

// Fields returns the ordered object entries. Nil for non-objects.
func (n *Node) Fields() []Field { return n.fields }

// Items returns the ordered array elements. Nil for non-arrays.
func (n *Node) Items() []*Node { return n.items }

// Value returns the scalar value. Nil for non-scalars.
func (n *Node) Value() any { return n.value }

// Clone returns a deep copy of the tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindObject:
		fields := make([]Field, len(n.fields))
		for i, f := range n.fields {
			fields[i] = Field{Key: f.Key, Value: f.Value.Clone()}
		}
		return &Node{kind: KindObject, fields: fields}
	case KindArray:
		items := make([]*Node, len(n.items))
		for i, it := range n.items {
			items[i] = it.Clone()
		}
		return &Node{kind: KindArray, items: items}
	default:
		return &Node{kind: KindScalar, value: n.value}
	}
}

// Equal reports whether two trees are structurally identical: same shape,
// same key order, same scalar values.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindObject:
		if len(n.fields) != len(other.fields) {
			return false
		}
		for i, f := range n.fields {
			if f.Key != other.fields[i].Key || !f.Value.Equal(other.fields[i].Value) {
				return false
			}
		}
		return true
	case KindArray:
		if len(n.items) != len(other.items) {
			return false
		}
		for i, it := range n.items {
			if !it.Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		return n.value == other.value
	}
}

// Step addresses one hop down the tree: either an object key or an array
// index, discriminated by Array.
type Step struct {
	Key   string
	Index int
	Array bool
}

func (s Step) String() string {
	if s.Array {
		return fmt.Sprintf("[%d]", s.Index)
	}
	return s.Key
}

// Path is an ordered sequence of steps locating a node inside a tree.
type Path []Step

// PathMap holds, per parameter name, every path at which that name occurs as
// a placeholder scalar, in traversal order.
type PathMap map[string][]Path

// child resolves one step against n, or nil if the step does not apply.
func (n *Node) child(s Step) *Node {
	if s.Array {
		if n.kind != KindArray || s.Index < 0 || s.Index >= len(n.items) {
			return nil
		}
		return n.items[s.Index]
	}
	if n.kind != KindObject {
		return nil
	}
	for _, f := range n.fields {
		if f.Key == s.Key {
			return f.Value
		}
	}
	return nil
}

// Get returns the node at path, or an error if the path does not resolve.
func (n *Node) Get(path Path) (*Node, error) {
	cur := n
	for i, s := range path {
		next := cur.child(s)
		if next == nil {
			return nil, fmt.Errorf("path %v does not resolve at step %d (%s)", path, i, s)
		}
		cur = next
	}
	return cur, nil
}

// Set replaces the node at path with a scalar holding v. The final step's
// parent container is mutated in place, so Set must only ever be called on a
// Clone of a shared template.
func (n *Node) Set(path Path, v any) error {
	if len(path) == 0 {
		return fmt.Errorf("cannot set an empty path")
	}
	parent, err := n.Get(path[:len(path)-1])
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	if last.Array {
		if parent.kind != KindArray || last.Index < 0 || last.Index >= len(parent.items) {
			return fmt.Errorf("path %v does not resolve at final index %d", path, last.Index)
		}
		parent.items[last.Index] = Scalar(v)
		return nil
	}
	if parent.kind != KindObject {
		return fmt.Errorf("path %v final step %q is not inside an object", path, last.Key)
	}
	for i, f := range parent.fields {
		if f.Key == last.Key {
			parent.fields[i].Value = Scalar(v)
			return nil
		}
	}
	return fmt.Errorf("path %v final key %q not found", path, last.Key)
}

// ToInterface converts the tree to plain Go containers. Object key order is
// lost; intended for logging and assertions, not execution.
func (n *Node) ToInterface() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindObject:
		m := make(map[string]any, len(n.fields))
		for _, f := range n.fields {
			m[f.Key] = f.Value.ToInterface()
		}
		return m
	case KindArray:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = it.ToInterface()
		}
		return out
	default:
		return n.value
	}
}

// UnmarshalYAML builds a Node from a YAML (or JSON, which yaml.v3 also
// accepts) document, preserving mapping key order.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	built, err := fromYAML(value)
	if err != nil {
		return err
	}
	*n = *built
	return nil
}

// Parse decodes a standalone YAML/JSON document into a Node.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &n, nil
}

// MustParse is Parse for tests and fixtures; it panics on error.
func MustParse(data string) *Node {
	n, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return n
}

func fromYAML(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) != 1 {
			return nil, fmt.Errorf("expected a single document, got %d", len(y.Content))
		}
		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.MappingNode:
		fields := make([]Field, 0, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			var key string
			if err := y.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("decoding object key: %w", err)
			}
			child, err := fromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Key: key, Value: child})
		}
		return Object(fields...), nil
	case yaml.SequenceNode:
		items := make([]*Node, 0, len(y.Content))
		for _, c := range y.Content {
			child, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		return Array(items...), nil
	case yaml.ScalarNode:
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, fmt.Errorf("decoding scalar: %w", err)
		}
		return Scalar(v), nil
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", y.Kind)
	}
}
