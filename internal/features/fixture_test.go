package features

import (
	"testing"

	"go.lsp.dev/uri"

	"github.com/standardbeagle/vbsym/internal/symbols"
	. "github.com/standardbeagle/vbsym/internal/syntax/syntaxtest"
)

const moduleURI = uri.URI("file:///project/Module1.bas")

const moduleSource = `Const Limit As Integer = 10
Dim total As Long

Public Enum Color
    Red = 1
    Green = 2
End Enum

Function Add(a As Integer, b As Integer) As Integer
    Add = a + b
End Function

Sub Main()
    Dim count As Integer
    count = Add(total, Limit)
    total = count
End Sub`

const formSource = `Begin VB.Form Form1
   Begin VB.TextBox txtName
   End
End
Sub Form_Load()
    txtName.Text = ""
    With txtName
        .Text = "x"
    End With
    Me.Caption = "t"
End Sub`

func asClause(typ string) *Sketch {
	return N("as_clause", Tok("As"), Ident(typ).As("type"))
}

func dim(name, typ string) *Sketch {
	return N("variable_declaration", Tok("Dim"),
		N("variable_list", N("variable_declarator", Ident(name).As("name"), asClause(typ))))
}

func assign(target, value *Sketch) *Sketch {
	return N("assignment_statement", target.As("target"), Tok("="), value)
}

func param(name, typ string) *Sketch {
	return N("parameter", Ident(name).As("name"), asClause(typ))
}

func sub(name string, body ...*Sketch) *Sketch {
	return N("sub_declaration", Tok("Sub"), Ident(name).As("name"),
		N("parameter_list", Tok("("), Tok(")")),
		N("block", body...),
		Tok("End"), Tok("Sub"))
}

func moduleSketch() *Sketch {
	member := func(name, v string) *Sketch {
		return N("enum_member", Ident(name).As("name"), Tok("="), Leaf("integer_literal", v).As("value"))
	}
	return N("source_file",
		N("constant_declaration", Tok("Const"),
			N("constant_declarator", Ident("Limit").As("name"), asClause("Integer"),
				Tok("="), Leaf("integer_literal", "10").As("value"))),
		dim("total", "Long"),
		N("enum_declaration", Tok("Public"), Tok("Enum"), Ident("Color").As("name"),
			member("Red", "1"), member("Green", "2"), Tok("End"), Tok("Enum")),
		N("function_declaration", Tok("Function"), Ident("Add").As("name"),
			N("parameter_list", Tok("("), param("a", "Integer"), Tok(","), param("b", "Integer"), Tok(")")),
			asClause("Integer"),
			N("block",
				assign(Ident("Add"), N("binary_expression", Ident("a"), Tok("+"), Ident("b")))),
			Tok("End"), Tok("Function")),
		sub("Main",
			dim("count", "Integer"),
			assign(Ident("count"), N("call_expression", Ident("Add"),
				N("argument_list", Tok("("), Ident("total"), Tok(","), Ident("Limit"), Tok(")")))),
			assign(Ident("total"), Ident("count"))))
}

func formSketch() *Sketch {
	str := func(v string) *Sketch { return Leaf("string_literal", v) }
	return N("source_file",
		N("form_block", Tok("Begin"), Leaf("qualified_name", "VB.Form").As("type"), Ident("Form1").As("name"),
			N("form_element", N("form_block", Tok("Begin"),
				Leaf("qualified_name", "VB.TextBox").As("type"), Ident("txtName").As("name"), Tok("End"))),
			Tok("End")),
		sub("Form_Load",
			assign(N("member_expression", Ident("txtName"), Tok("."), Ident("Text")), str(`""`)),
			N("with_statement", Tok("With"), Ident("txtName").As("object"),
				N("block", assign(N("member_expression", Tok("."), Ident("Text")), str(`"x"`))),
				Tok("End"), Tok("With")),
			assign(N("member_expression", Ident("Me"), Tok("."), Ident("Caption")), str(`"t"`))))
}

func moduleTable(t *testing.T) *symbols.SymbolTable {
	t.Helper()
	return symbols.BuildSymbolTable(moduleURI, []byte(moduleSource), Build(t, moduleSource, moduleSketch()))
}

func formTable(t *testing.T) *symbols.SymbolTable {
	t.Helper()
	u := uri.URI("file:///project/Form1.frm")
	return symbols.BuildSymbolTable(u, []byte(formSource), Build(t, formSource, formSketch()))
}

func rng(sl, sc, el, ec uint32) symbols.Range {
	return symbols.Range{Start: symbols.Pos(sl, sc), End: symbols.Pos(el, ec)}
}

