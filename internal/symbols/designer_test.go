package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/standardbeagle/vbsym/internal/syntax/syntaxtest"
)

const formSource = `Begin VB.Form Form1
   Caption = "Main"
   Begin VB.TextBox txtName
      Text = "hi"
   End
   Begin VB.Frame fraOptions
      Begin VB.CheckBox chkBold
      End
   End
End
Sub Form_Load()
    With txtName
        .Text = "x"
    End With
    chkBold.Value = 1
End Sub`

func control(typ, name string, children ...*Sketch) *Sketch {
	all := append([]*Sketch{Tok("Begin"), Leaf("qualified_name", typ).As("type"), Ident(name).As("name")}, children...)
	all = append(all, Tok("End"))
	return N("form_element", N("form_block", all...))
}

func formSketch() *Sketch {
	return N("source_file",
		N("form_block", Tok("Begin"), Leaf("qualified_name", "VB.Form").As("type"), Ident("Form1").As("name"),
			N("form_property_line", Ident("Caption"), Tok("="), Leaf("string_literal", `"Main"`)),
			control("VB.TextBox", "txtName",
				N("form_property_line", Ident("Text"), Tok("="), Leaf("string_literal", `"hi"`))),
			control("VB.Frame", "fraOptions",
				control("VB.CheckBox", "chkBold")),
			Tok("End")),
		sub("Form_Load",
			N("with_statement", Tok("With"), Ident("txtName").As("object"),
				N("block", assign(N("member_expression", Tok("."), Ident("Text")), Leaf("string_literal", `"x"`))),
				Tok("End"), Tok("With")),
			assign(N("member_expression", Ident("chkBold"), Tok("."), Ident("Value")), intLit("1"))))
}

func TestDesignerControls(t *testing.T) {
	table := build(t, formSource, formSketch())

	want := []struct{ name, typ string }{
		{"Form1", "Form"},
		{"txtName", "TextBox"},
		{"fraOptions", "Frame"},
		{"chkBold", "CheckBox"},
	}
	for i, w := range want {
		sym := table.Symbol(SymbolID(i))
		require.NotNil(t, sym)
		assert.Equal(t, w.name, sym.Name)
		assert.Equal(t, KindFormControl, sym.Kind)
		assert.Equal(t, ModuleScope, sym.Scope, "nested controls are flat")
		require.NotNil(t, sym.Type)
		assert.Equal(t, w.typ, sym.Type.Name)
	}
	assert.Equal(t, rng(2, 20, 2, 27), table.Symbol(1).NameRange)
	checkInvariants(t, table)
}

func TestDesignerControlReferences(t *testing.T) {
	table := build(t, formSource, formSketch())

	txt := findSymbol(t, table, "txtName", KindFormControl)
	refs := table.ReferencesTo(txt.ID)
	require.Len(t, refs, 1)
	assert.Equal(t, ScopeWithBlock, table.Scope(refs[0].Scope).Kind)

	chk := findSymbol(t, table, "chkBold", KindFormControl)
	chkRefs := table.ReferencesTo(chk.ID)
	require.Len(t, chkRefs, 1)
	assert.True(t, chkRefs[0].IsAssignment, "a member assignment targets its object")

	assert.Equal(t, 2, table.ReferenceCount(), "designer properties are not references")
}

func TestDesignerControlsWithoutNames(t *testing.T) {
	src := "Begin VB.Form\n   Begin VB.Label lblTitle\n   End\nEnd"
	table := build(t, src, N("source_file",
		N("form_block", Tok("Begin"), Leaf("qualified_name", "VB.Form").As("type"),
			control("VB.Label", "lblTitle"),
			Tok("End"))))

	require.Equal(t, 1, table.SymbolCount())
	assert.Equal(t, "lblTitle", table.Symbol(0).Name)
}

func TestControlTypeName(t *testing.T) {
	assert.Equal(t, "TextBox", controlTypeName("VB.TextBox"))
	assert.Equal(t, "ListView", controlTypeName("MSComctlLib.ListView"))
	assert.Equal(t, "Custom", controlTypeName(" Custom "))
	assert.Equal(t, "", controlTypeName(""))
}
