package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// FromTreeSitter wraps a tree-sitter parse so it can be handed to the symbol
// builder. The caller keeps ownership of t and must not close it while the
// wrapper is in use.
func FromTreeSitter(t *sitter.Tree) Tree {
	return tsTree{t: t}
}

type tsTree struct {
	t *sitter.Tree
}

func (t tsTree) RootNode() Node {
	if t.t == nil {
		return nil
	}
	return wrap(t.t.RootNode())
}

type tsNode struct {
	n *sitter.Node
}

// wrap keeps a null tree-sitter node from turning into a non-nil interface.
func wrap(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	return tsNode{n: n}
}

func (w tsNode) ID() uintptr     { return w.n.Id() }
func (w tsNode) Type() string    { return w.n.Kind() }
func (w tsNode) Kind() Kind      { return ParseKind(w.n.Kind()) }
func (w tsNode) StartByte() uint { return w.n.StartByte() }
func (w tsNode) EndByte() uint   { return w.n.EndByte() }
func (w tsNode) IsNamed() bool   { return w.n.IsNamed() }
func (w tsNode) IsError() bool   { return w.n.IsError() }
func (w tsNode) IsMissing() bool { return w.n.IsMissing() }

func (w tsNode) StartPoint() Point { return point(w.n.StartPosition()) }
func (w tsNode) EndPoint() Point   { return point(w.n.EndPosition()) }

func (w tsNode) ChildCount() uint                  { return w.n.ChildCount() }
func (w tsNode) Child(i uint) Node                 { return wrap(w.n.Child(i)) }
func (w tsNode) ChildByFieldName(name string) Node { return wrap(w.n.ChildByFieldName(name)) }
func (w tsNode) Parent() Node                      { return wrap(w.n.Parent()) }

func (w tsNode) FieldNameForChild(i uint) string {
	return w.n.FieldNameForChild(uint32(i))
}

func point(p sitter.Point) Point {
	return Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}
