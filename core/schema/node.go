package schema

import (
	"sort"
	"strings"
)

// Kind is the variant of a schema node.
type Kind int

const (
	// KindInternal is a struct node whose sub nodes become columns.
	KindInternal Kind = iota
	// KindLeaf is a primitive node mapped to a single column.
	KindLeaf
	// KindRepeated is an array node mapped to a single column.
	KindRepeated
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindRepeated:
		return "repeated"
	default:
		return "internal"
	}
}

// Node is a node of a schema document.
type Node struct {
	// Type is the resource type. Only set on the root node of a document.
	Type string `json:"Type,omitempty"`
	// Name is the field name of the node.
	Name string `json:"Name"`
	// IsLeaf marks primitive nodes.
	IsLeaf bool `json:"IsLeaf"`
	// IsRepeated marks array nodes. A repeated node may also be a leaf.
	IsRepeated bool `json:"IsRepeated"`
	// SubNodes holds the children of struct nodes, keyed by field name.
	SubNodes map[string]*Node `json:"SubNodes,omitempty"`
}

// Kind reports the variant of the node. Repeated wins over leaf since both
// end the traversal and a repeated leaf is still a single array column.
func (n *Node) Kind() Kind {
	switch {
	case n.IsRepeated:
		return KindRepeated
	case n.IsLeaf:
		return KindLeaf
	default:
		return KindInternal
	}
}

// IsTerminal reports whether flattening stops at this node.
func (n *Node) IsTerminal() bool {
	return n.Kind() != KindInternal
}

// childNames returns the sub node keys in sorted order.
func (n *Node) childNames() []string {
	names := make([]string, 0, len(n.SubNodes))
	for name := range n.SubNodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// segment returns the path segment contributed by a child stored under key.
func segment(key string, child *Node) string {
	if child.Name != "" {
		return child.Name
	}
	return key
}

// isPrimitiveExtension reports whether a field holds primitive extension metadata.
func isPrimitiveExtension(name string) bool {
	return strings.HasPrefix(name, "_")
}

// Index maps resource types to their schema root nodes.
type Index map[string]*Node

// ResourceTypes returns the resource types of the index in sorted order.
func (idx Index) ResourceTypes() []string {
	types := make([]string, 0, len(idx))
	for t := range idx {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
