package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *MemTree {
	// Dim x
	return NewMemTree(&MemNode{
		NodeType: "source_file", Named: true, EndOff: 5, End: Point{Column: 5},
		Children: []*MemNode{{
			NodeType: "variable_declaration", Named: true, EndOff: 5, End: Point{Column: 5},
			Children: []*MemNode{
				{NodeType: "Dim", EndOff: 3, End: Point{Column: 3}},
				nil,
				{NodeType: "identifier", Field: "name", Named: true, StartOff: 4, EndOff: 5,
					Start: Point{Column: 4}, End: Point{Column: 5}},
			},
		}},
	})
}

func TestMemTreeLinking(t *testing.T) {
	tree := sampleTree()
	root := tree.RootNode()
	require.NotNil(t, root)

	decl := root.Child(0)
	require.NotNil(t, decl)
	assert.Equal(t, KindVariableDeclaration, decl.Kind())
	assert.Equal(t, uint(2), decl.ChildCount(), "nil children are dropped")

	name := decl.ChildByFieldName(FieldName)
	require.NotNil(t, name)
	assert.Equal(t, "x", Text(name, []byte("Dim x")))
	assert.Equal(t, decl.ID(), name.Parent().ID())
	assert.Nil(t, root.Parent())

	ids := map[uintptr]bool{}
	Walk(root, func(n Node) bool {
		assert.False(t, ids[n.ID()], "duplicate id %d", n.ID())
		ids[n.ID()] = true
		return true
	})
	assert.Len(t, ids, 4)
}

func TestMemNodeAbsentChildren(t *testing.T) {
	tree := sampleTree()
	root := tree.RootNode()

	assert.Nil(t, root.Child(10))
	assert.Nil(t, root.ChildByFieldName("type"))
	assert.Nil(t, (&MemTree{}).RootNode())

	var nilTree *MemTree
	assert.Nil(t, nilTree.RootNode())
}

func TestTextBounds(t *testing.T) {
	n := &MemNode{NodeType: "identifier", StartOff: 2, EndOff: 10}
	assert.Equal(t, "", Text(n, []byte("short")))
	assert.Equal(t, "", Text(nil, []byte("short")))

	inverted := &MemNode{NodeType: "identifier", StartOff: 3, EndOff: 1}
	assert.Equal(t, "", Text(inverted, []byte("short")))
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := sampleTree()
	var seen []string
	Walk(tree.RootNode(), func(n Node) bool {
		seen = append(seen, n.Type())
		return n.Kind() != KindVariableDeclaration
	})
	assert.Equal(t, []string{"source_file", "variable_declaration"}, seen)
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindFormBlock, ParseKind("form_block"))
	assert.Equal(t, KindOther, ParseKind("binary_expression"))
	assert.Equal(t, "for_each_statement", KindForEachStatement.String())
	assert.Equal(t, "other", KindOther.String())

	assert.True(t, KindPropertyDeclaration.IsProcedure())
	assert.False(t, KindDeclareStatement.IsProcedure())
	assert.True(t, KindModuleConfig.IsDesigner())
	assert.False(t, KindBlock.IsDesigner())

	errNode := NewMemTree(&MemNode{NodeType: "ERROR"}).RootNode()
	assert.True(t, errNode.IsError())
}

func TestPointLess(t *testing.T) {
	assert.True(t, Point{Row: 1, Column: 9}.Less(Point{Row: 2}))
	assert.True(t, Point{Row: 2, Column: 1}.Less(Point{Row: 2, Column: 2}))
	assert.False(t, Point{Row: 2}.Less(Point{Row: 2}))
}
