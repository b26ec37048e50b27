package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/symbols"
)

func TestHoverProcedure(t *testing.T) {
	table := moduleTable(t)

	// on a call site in Main
	h := Hover(table, symbols.Pos(14, 13))
	require.NotNil(t, h)
	assert.Equal(t, protocol.Markdown, h.Contents.Kind)
	assert.Equal(t,
		"```vb\nPrivate Function Add(ByRef a As Integer, ByRef b As Integer) As Integer\n```",
		h.Contents.Value)
	require.NotNil(t, h.Range)
	assert.Equal(t, rng(8, 9, 8, 12).Protocol(), *h.Range)
}

func TestHoverConstant(t *testing.T) {
	h := Hover(moduleTable(t), symbols.Pos(0, 7))
	require.NotNil(t, h)
	assert.Equal(t, "```vb\nPrivate Const Limit As Integer = 10\n```", h.Contents.Value)
}

func TestHoverFormControlAddsDescription(t *testing.T) {
	h := Hover(formTable(t), symbols.Pos(5, 6))
	require.NotNil(t, h)
	assert.Contains(t, h.Contents.Value, "```vb\ntxtName As TextBox\n```")
	assert.Contains(t, h.Contents.Value, "Displays information entered at design time")
}

func TestHoverNothing(t *testing.T) {
	table := moduleTable(t)
	assert.Nil(t, Hover(table, symbols.Pos(2, 0)))
	assert.Nil(t, Hover(table, symbols.Pos(500, 3)))
}
