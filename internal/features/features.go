// Package features answers editor requests (hover, navigation, completion,
// outline and rename) from a built symbol table. Handlers return
// go.lsp.dev/protocol values and never fail on positions outside the
// document; they return nil or empty results instead.
package features

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/symbols"
)

// Keywords offered by completion outside member access.
var Keywords = []string{
	"If", "Then", "Else", "ElseIf", "End If",
	"For", "Next", "Do", "Loop", "While", "Wend",
	"Select Case", "Case", "End Select", "With", "End With",
	"Sub", "End Sub", "Function", "End Function",
	"Dim", "Private", "Public", "As",
	"Integer", "Long", "String", "Boolean", "Variant", "Object",
	"Nothing", "True", "False", "And", "Or", "Not",
	"Exit", "GoTo", "On Error", "Resume",
	"Set", "Let", "Call", "ReDim",
	"Type", "End Type", "Enum", "End Enum",
}

var reserved = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, kw := range Keywords {
		for _, w := range strings.Fields(kw) {
			m[strings.ToLower(w)] = struct{}{}
		}
	}
	for _, w := range []string{
		"ByVal", "ByRef", "Optional", "ParamArray", "Const", "Declare", "Lib", "Alias",
		"Event", "RaiseEvent", "Property", "New", "Me", "Friend", "Global", "Static",
		"Each", "In", "To", "Step", "Until", "Is", "Like", "Mod", "Xor", "Eqv", "Imp",
		"Option", "Byte", "Single", "Double", "Currency", "Date", "Empty", "Null",
		"Erase", "Preserve", "Stop", "Implements",
	} {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}()

// IsReservedWord reports whether name is a keyword, in any case.
func IsReservedWord(name string) bool {
	_, ok := reserved[strings.ToLower(name)]
	return ok
}

// maxIdentifierLength is the longest name VB accepts.
const maxIdentifierLength = 255

// ValidIdentifier reports whether name is a well-formed VB identifier: an
// ASCII letter followed by letters, digits or underscores.
func ValidIdentifier(name string) bool {
	if name == "" || len(name) > maxIdentifierLength || !isLetter(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentByte(name[i]) {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// lineText returns line number line of source without its terminator.
func lineText(source string, line uint32) (string, bool) {
	start := 0
	for i := uint32(0); i < line; i++ {
		j := strings.IndexByte(source[start:], '\n')
		if j < 0 {
			return "", false
		}
		start += j + 1
	}
	text := source[start:]
	if end := strings.IndexByte(text, '\n'); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSuffix(text, "\r"), true
}

// WordAt returns the identifier under pos, or the one ending right before it.
func WordAt(source string, pos symbols.Position) (string, symbols.Range, bool) {
	text, ok := lineText(source, pos.Line)
	if !ok {
		return "", symbols.Range{}, false
	}
	col := min(int(pos.Column), len(text))
	start, end := col, col
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	if start == end {
		return "", symbols.Range{}, false
	}
	return text[start:end], symbols.Range{
		Start: symbols.Pos(pos.Line, uint32(start)),
		End:   symbols.Pos(pos.Line, uint32(end)),
	}, true
}

// SymbolKind maps a symbol kind to its LSP document symbol kind.
func SymbolKind(k symbols.SymbolKind) protocol.SymbolKind {
	switch k {
	case symbols.KindVariable, symbols.KindLocalVariable, symbols.KindForLoopVariable,
		symbols.KindForEachVariable, symbols.KindParameter:
		return protocol.SymbolKindVariable
	case symbols.KindConstant, symbols.KindLocalConstant:
		return protocol.SymbolKindConstant
	case symbols.KindUserDefinedType:
		return protocol.SymbolKindStruct
	case symbols.KindEnum:
		return protocol.SymbolKindEnum
	case symbols.KindEnumMember:
		return protocol.SymbolKindEnumMember
	case symbols.KindTypeMember, symbols.KindFormControl:
		return protocol.SymbolKindField
	case symbols.KindSub, symbols.KindFunction, symbols.KindDeclareSub, symbols.KindDeclareFunction:
		return protocol.SymbolKindFunction
	case symbols.KindPropertyGet, symbols.KindPropertyLet, symbols.KindPropertySet:
		return protocol.SymbolKindProperty
	case symbols.KindEvent:
		return protocol.SymbolKindEvent
	}
	return protocol.SymbolKindNull
}

// CompletionKind maps a symbol kind to its LSP completion item kind.
func CompletionKind(k symbols.SymbolKind) protocol.CompletionItemKind {
	switch k {
	case symbols.KindVariable, symbols.KindLocalVariable, symbols.KindForLoopVariable,
		symbols.KindForEachVariable, symbols.KindParameter:
		return protocol.CompletionItemKindVariable
	case symbols.KindConstant, symbols.KindLocalConstant:
		return protocol.CompletionItemKindConstant
	case symbols.KindUserDefinedType:
		return protocol.CompletionItemKindStruct
	case symbols.KindEnum:
		return protocol.CompletionItemKindEnum
	case symbols.KindEnumMember:
		return protocol.CompletionItemKindEnumMember
	case symbols.KindTypeMember, symbols.KindFormControl:
		return protocol.CompletionItemKindField
	case symbols.KindSub, symbols.KindFunction, symbols.KindDeclareSub, symbols.KindDeclareFunction:
		return protocol.CompletionItemKindFunction
	case symbols.KindPropertyGet, symbols.KindPropertyLet, symbols.KindPropertySet:
		return protocol.CompletionItemKindProperty
	case symbols.KindEvent:
		return protocol.CompletionItemKindEvent
	}
	return protocol.CompletionItemKindReference
}

func location(table *symbols.SymbolTable, r symbols.Range) protocol.Location {
	return protocol.Location{URI: table.URI(), Range: r.Protocol()}
}
