package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/symbols"
)

func TestWordAt(t *testing.T) {
	tests := []struct {
		name string
		pos  symbols.Position
		word string
		r    symbols.Range
		ok   bool
	}{
		{"inside", symbols.Pos(14, 6), "count", rng(14, 4, 14, 9), true},
		{"at end", symbols.Pos(14, 9), "count", rng(14, 4, 14, 9), true},
		{"before paren", symbols.Pos(14, 15), "Add", rng(14, 12, 14, 15), true},
		{"empty line", symbols.Pos(2, 0), "", symbols.Range{}, false},
		{"past last line", symbols.Pos(99, 0), "", symbols.Range{}, false},
		{"past line end", symbols.Pos(1, 80), "Long", rng(1, 13, 1, 17), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, r, ok := WordAt(moduleSource, tt.pos)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.word, word)
			assert.Equal(t, tt.r, r)
		})
	}
}

func TestLineTextStripsCarriageReturn(t *testing.T) {
	text, ok := lineText("Dim a\r\nDim b\r\n", 1)
	assert.True(t, ok)
	assert.Equal(t, "Dim b", text)

	_, ok = lineText("Dim a", 1)
	assert.False(t, ok)
}

func TestValidIdentifier(t *testing.T) {
	for _, name := range []string{"x", "total", "txt_Name2", "A1"} {
		assert.True(t, ValidIdentifier(name), name)
	}
	for _, name := range []string{"", "1abc", "_x", "my name", "a.b", "naïve"} {
		assert.False(t, ValidIdentifier(name), name)
	}
}

func TestIsReservedWord(t *testing.T) {
	for _, w := range []string{"Dim", "dim", "END", "Error", "ByVal", "Me", "Select"} {
		assert.True(t, IsReservedWord(w), w)
	}
	for _, w := range []string{"total", "Text", "Caption"} {
		assert.False(t, IsReservedWord(w), w)
	}
}

func TestKindMappings(t *testing.T) {
	tests := []struct {
		kind       symbols.SymbolKind
		symbol     protocol.SymbolKind
		completion protocol.CompletionItemKind
	}{
		{symbols.KindLocalVariable, protocol.SymbolKindVariable, protocol.CompletionItemKindVariable},
		{symbols.KindParameter, protocol.SymbolKindVariable, protocol.CompletionItemKindVariable},
		{symbols.KindLocalConstant, protocol.SymbolKindConstant, protocol.CompletionItemKindConstant},
		{symbols.KindUserDefinedType, protocol.SymbolKindStruct, protocol.CompletionItemKindStruct},
		{symbols.KindEnumMember, protocol.SymbolKindEnumMember, protocol.CompletionItemKindEnumMember},
		{symbols.KindFormControl, protocol.SymbolKindField, protocol.CompletionItemKindField},
		{symbols.KindDeclareFunction, protocol.SymbolKindFunction, protocol.CompletionItemKindFunction},
		{symbols.KindPropertySet, protocol.SymbolKindProperty, protocol.CompletionItemKindProperty},
		{symbols.KindEvent, protocol.SymbolKindEvent, protocol.CompletionItemKindEvent},
		{symbols.KindLabel, protocol.SymbolKindNull, protocol.CompletionItemKindReference},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.symbol, SymbolKind(tt.kind), tt.kind.String())
		assert.Equal(t, tt.completion, CompletionKind(tt.kind), tt.kind.String())
	}
}
