// Package syntax defines the syntax tree consumed by the symbol builder and
// the adapters that produce it.
package syntax

import "strings"

// Point is a zero-based row and byte column.
type Point struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// Less orders points row-major.
func (p Point) Less(o Point) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Column < o.Column
}

// Node is one node of an immutable syntax tree. Methods returning a Node
// return a nil interface when there is no such node.
type Node interface {
	ID() uintptr
	Type() string
	Kind() Kind
	StartPoint() Point
	EndPoint() Point
	StartByte() uint
	EndByte() uint
	ChildCount() uint
	Child(i uint) Node
	ChildByFieldName(name string) Node
	Parent() Node
	IsNamed() bool
	IsError() bool
	IsMissing() bool
}

// Tree is a parsed document.
type Tree interface {
	RootNode() Node
}

// Text returns the source text covered by n, or "" when n is nil or its byte
// range does not fit the source.
func Text(n Node, source []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FirstChildOfKind returns the first direct child of n with kind k.
func FirstChildOfKind(n Node, k Kind) Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == k {
			return c
		}
	}
	return nil
}

// HasChildType reports whether n has a direct child whose type equals typ,
// ignoring case. Keyword tokens are matched this way.
func HasChildType(n Node, typ string) bool {
	if n == nil {
		return false
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && strings.EqualFold(c.Type(), typ) {
			return true
		}
	}
	return false
}

// Contains reports whether inner lies within outer's byte range.
func Contains(outer, inner Node) bool {
	if outer == nil || inner == nil {
		return false
	}
	return outer.StartByte() <= inner.StartByte() && inner.EndByte() <= outer.EndByte()
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		Walk(n.Child(i), fn)
	}
}
