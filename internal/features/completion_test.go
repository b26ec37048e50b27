package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/symbols"
)

func itemLabels(items []protocol.CompletionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func findItem(t *testing.T, items []protocol.CompletionItem, label string) protocol.CompletionItem {
	t.Helper()
	for _, it := range items {
		if it.Label == label {
			return it
		}
	}
	t.Fatalf("no completion item %q in %v", label, itemLabels(items))
	return protocol.CompletionItem{}
}

func docValue(t *testing.T, it protocol.CompletionItem) string {
	t.Helper()
	doc, ok := it.Documentation.(protocol.MarkupContent)
	require.True(t, ok, "documentation of %s", it.Label)
	return doc.Value
}

func TestContextAt(t *testing.T) {
	tests := []struct {
		line string
		col  uint32
		want completionContext
	}{
		{"    txtName.Te", 14, completionContext{prefix: "Te", member: true, object: "txtName"}},
		{"    txtName.", 12, completionContext{member: true, object: "txtName"}},
		{"        .Text", 9, completionContext{member: true}},
		{"x = Lim", 7, completionContext{prefix: "Lim"}},
		{"x = Limit", 5, completionContext{prefix: "L"}},
		{"x = ", 40, completionContext{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, contextAt(tt.line, symbols.Pos(0, tt.col)), tt.line)
	}
	assert.Equal(t, completionContext{}, contextAt("x", symbols.Pos(3, 0)))
}

func TestCompletionVisibleSymbols(t *testing.T) {
	table := moduleTable(t)
	opts := DefaultCompletionOptions()
	opts.Keywords = false

	items := Completion(table, moduleSource, symbols.Pos(15, 4), opts)
	assert.Equal(t, []string{"count", "Limit", "total", "Color", "Red", "Green", "Add", "Main"}, itemLabels(items))

	add := findItem(t, items, "Add")
	assert.Equal(t, protocol.CompletionItemKindFunction, add.Kind)
	assert.Equal(t, "Add($1)", add.InsertText)
	assert.Equal(t, protocol.InsertTextFormatSnippet, add.InsertTextFormat)
	assert.Equal(t, "Private Function Add(ByRef a As Integer, ByRef b As Integer) As Integer", add.Detail)

	count := items[0]
	assert.Equal(t, protocol.CompletionItemKindVariable, count.Kind)
	assert.Empty(t, count.InsertText)
	assert.Equal(t, "00000", count.SortText)
	assert.Equal(t, "count", count.FilterText)
}

func TestCompletionAddsKeywords(t *testing.T) {
	items := Completion(moduleTable(t), moduleSource, symbols.Pos(15, 4), DefaultCompletionOptions())
	require.Len(t, items, 8+len(Keywords))

	kw := findItem(t, items, "End Select")
	assert.Equal(t, protocol.CompletionItemKindKeyword, kw.Kind)
	assert.Equal(t, "keyword", kw.Detail)
}

func TestCompletionPrefixRanksFirst(t *testing.T) {
	items := Completion(moduleTable(t), moduleSource, symbols.Pos(14, 25), DefaultCompletionOptions())
	require.NotEmpty(t, items)
	assert.Equal(t, "Limit", items[0].Label)
	assert.Equal(t, protocol.CompletionItemKindConstant, items[0].Kind)
	assert.Equal(t, "00000", items[0].SortText)
}

func TestCompletionFuzzy(t *testing.T) {
	table := moduleTable(t)
	typo := strings.Replace(moduleSource, "total = count", "total = cuont", 1)
	pos := symbols.Pos(15, 17)

	items := Completion(table, typo, pos, DefaultCompletionOptions())
	require.NotEmpty(t, items)
	assert.Equal(t, "count", items[0].Label)
	assert.NotContains(t, itemLabels(items), "Main")

	opts := DefaultCompletionOptions()
	opts.Fuzzy = false
	assert.Empty(t, Completion(table, typo, pos, opts))
}

func TestCompletionMaxItems(t *testing.T) {
	opts := DefaultCompletionOptions()
	opts.MaxItems = 3
	items := Completion(moduleTable(t), moduleSource, symbols.Pos(15, 4), opts)
	require.Len(t, items, 3)
	assert.Equal(t, "00002", items[2].SortText)
}

func TestCompletionControlMembers(t *testing.T) {
	table := formTable(t)
	items := Completion(table, formSource, symbols.Pos(5, 12), DefaultCompletionOptions())

	text := findItem(t, items, "Text")
	assert.Equal(t, protocol.CompletionItemKindProperty, text.Kind)
	assert.Contains(t, docValue(t, text), "**Type:** String")
	assert.Contains(t, docValue(t, text), "**Default:** Text1")

	align := findItem(t, items, "Alignment")
	assert.Contains(t, docValue(t, align), "**Valid Values:**")
	assert.Contains(t, docValue(t, align), "- `2` (vbCenter): Center")

	focus := findItem(t, items, "SetFocus")
	assert.Equal(t, protocol.CompletionItemKindMethod, focus.Kind)
	assert.Empty(t, focus.InsertText, "no arguments to fill in")
	assert.Contains(t, docValue(t, focus), "**Signature:** `SetFocus`")

	move := findItem(t, items, "Move")
	assert.Equal(t, "Move $1", move.InsertText)

	change := findItem(t, items, "Change")
	assert.Equal(t, protocol.CompletionItemKindEvent, change.Kind)
	assert.Contains(t, docValue(t, change), "Private Sub TextBox_Change()")

	assert.NotContains(t, itemLabels(items), "Form_Load", "symbols are not members")
	assert.NotContains(t, itemLabels(items), "If", "keywords are not members")
}

func TestCompletionControlMemberPrefix(t *testing.T) {
	items := Completion(formTable(t), formSource, symbols.Pos(5, 14), DefaultCompletionOptions())
	require.NotEmpty(t, items)
	assert.Equal(t, "Text", items[0].Label)
}

func TestCompletionWithBlockMembers(t *testing.T) {
	items := Completion(formTable(t), formSource, symbols.Pos(7, 9), DefaultCompletionOptions())
	assert.Contains(t, itemLabels(items), "Text")
	assert.Contains(t, itemLabels(items), "MaxLength")
}

func TestCompletionMeMembers(t *testing.T) {
	items := Completion(formTable(t), formSource, symbols.Pos(9, 7), DefaultCompletionOptions())
	assert.Contains(t, itemLabels(items), "Caption")

	show := findItem(t, items, "Show")
	assert.Equal(t, "Show $1", show.InsertText)
	assert.Equal(t, protocol.InsertTextFormatSnippet, show.InsertTextFormat)
}

func TestCompletionUnknownObject(t *testing.T) {
	src := strings.Replace(formSource, "Me.Caption", "xx.Caption", 1)
	assert.Nil(t, Completion(formTable(t), src, symbols.Pos(9, 7), DefaultCompletionOptions()))
}
