package features

import (
	"fmt"
	"sort"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/controls"
	"github.com/standardbeagle/vbsym/internal/fuzzy"
	"github.com/standardbeagle/vbsym/internal/symbols"
)

// CompletionOptions tunes candidate ranking.
type CompletionOptions struct {
	// Fuzzy admits candidates that do not start with the typed prefix but are
	// Jaro-Winkler similar to it.
	Fuzzy          bool
	FuzzyThreshold float64
	// MaxItems truncates the result; zero means no limit.
	MaxItems int
	// Keywords adds language keywords outside member access.
	Keywords bool
	// Catalog resolves form control members; nil means controls.Default().
	Catalog *controls.Catalog
}

// DefaultCompletionOptions matches the configuration defaults.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		Fuzzy:          true,
		FuzzyThreshold: fuzzy.DefaultThreshold,
		MaxItems:       200,
		Keywords:       true,
	}
}

// completionContext is what the text left of the cursor says about the
// requested completion.
type completionContext struct {
	prefix string
	member bool   // the prefix follows a "."
	object string // identifier before the ".", empty for a With member
}

func contextAt(source string, pos symbols.Position) completionContext {
	text, ok := lineText(source, pos.Line)
	if !ok {
		return completionContext{}
	}
	before := text[:min(int(pos.Column), len(text))]
	i := len(before)
	for i > 0 && isIdentByte(before[i-1]) {
		i--
	}
	ctx := completionContext{prefix: before[i:]}
	if i > 0 && before[i-1] == '.' {
		ctx.member = true
		j := i - 1
		for j > 0 && isIdentByte(before[j-1]) {
			j--
		}
		ctx.object = before[j : i-1]
	}
	return ctx
}

// Completion lists candidates at pos. After "ctl." where ctl is a form
// control, or after a leading "." inside With ctl, the members of the
// control type are offered. Member access on anything else yields nothing.
// Elsewhere the visible symbols are offered, followed by keywords.
func Completion(table *symbols.SymbolTable, source string, pos symbols.Position, opts CompletionOptions) []protocol.CompletionItem {
	if opts.Catalog == nil {
		opts.Catalog = controls.Default()
	}
	ctx := contextAt(source, pos)

	var items []protocol.CompletionItem
	if ctx.member {
		ctl := memberControl(table, pos, ctx.object, opts.Catalog)
		if ctl == nil {
			return nil
		}
		items = memberItems(ctl)
	} else {
		items = symbolItems(table.VisibleSymbols(pos))
		if opts.Keywords {
			items = append(items, keywordItems()...)
		}
	}
	return rank(items, ctx.prefix, opts)
}

// memberControl resolves the object of a member access to a catalog control.
func memberControl(table *symbols.SymbolTable, pos symbols.Position, object string, cat *controls.Catalog) *controls.Control {
	if object == "" {
		object = withObject(table, pos)
	}
	if object == "" {
		return nil
	}

	var sym *symbols.Symbol
	if strings.EqualFold(object, "Me") {
		sym = formSymbol(table)
	} else {
		sym = table.LookupAtPosition(object, pos)
	}
	if sym == nil || sym.Kind != symbols.KindFormControl || sym.Type == nil {
		return nil
	}
	ctl, _ := cat.Lookup(sym.Type.Name)
	return ctl
}

// withObject returns the last identifier of the innermost enclosing With
// object, so "With Me.txtName" yields "txtName".
func withObject(table *symbols.SymbolTable, pos symbols.Position) string {
	for _, id := range table.ScopeChain(table.ScopeAtPosition(pos)) {
		s := table.Scope(id)
		if s.Kind != symbols.ScopeWithBlock {
			continue
		}
		obj := strings.TrimSpace(s.WithObject)
		if i := strings.LastIndexByte(obj, '.'); i >= 0 {
			obj = obj[i+1:]
		}
		return obj
	}
	return ""
}

// formSymbol finds the form a designer section declares.
func formSymbol(table *symbols.SymbolTable) *symbols.Symbol {
	for _, sym := range table.SymbolsInScope(symbols.ModuleScope) {
		if sym.Kind != symbols.KindFormControl || sym.Type == nil {
			continue
		}
		if strings.EqualFold(sym.Type.Name, "Form") || strings.EqualFold(sym.Type.Name, "MDIForm") {
			return sym
		}
	}
	return nil
}

func markdown(s string) protocol.MarkupContent {
	return protocol.MarkupContent{Kind: protocol.Markdown, Value: s}
}

// maxListedValues caps the enum values shown in property documentation.
const maxListedValues = 10

func propertyDoc(p *controls.Property) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Type:** %s\n\n%s", p.Type, p.Description)
	if len(p.Values) > 0 {
		b.WriteString("\n\n**Valid Values:**")
		for i, v := range p.Values {
			if i == maxListedValues {
				b.WriteString("\n- ...")
				break
			}
			fmt.Fprintf(&b, "\n- `%d` (%s): %s", v.Value, v.Name, v.Description)
		}
	} else {
		def := "(none)"
		if p.HasDefault {
			def = p.Default
		}
		fmt.Fprintf(&b, "\n\n**Default:** %s", def)
	}
	if p.ReadOnly {
		b.WriteString("\n\nRead-only at run time.")
	}
	return b.String()
}

func memberItems(ctl *controls.Control) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(ctl.Properties)+len(ctl.Methods)+len(ctl.Events))
	for i := range ctl.Properties {
		p := &ctl.Properties[i]
		items = append(items, protocol.CompletionItem{
			Label:         p.Name,
			Kind:          protocol.CompletionItemKindProperty,
			Detail:        p.Description,
			Documentation: markdown(propertyDoc(p)),
		})
	}
	for _, m := range ctl.Methods {
		item := protocol.CompletionItem{
			Label:         m.Name,
			Kind:          protocol.CompletionItemKindMethod,
			Detail:        m.Description,
			Documentation: markdown(fmt.Sprintf("%s\n\n**Signature:** `%s`", m.Description, m.Signature)),
		}
		switch args := strings.TrimPrefix(m.Signature, m.Name); {
		case strings.HasPrefix(args, "("):
			item.InsertText, item.InsertTextFormat = m.Name+"($1)", protocol.InsertTextFormatSnippet
		case strings.TrimSpace(args) != "":
			item.InsertText, item.InsertTextFormat = m.Name+" $1", protocol.InsertTextFormatSnippet
		}
		items = append(items, item)
	}
	for _, e := range ctl.Events {
		items = append(items, protocol.CompletionItem{
			Label:         e.Name,
			Kind:          protocol.CompletionItemKindEvent,
			Detail:        e.Description,
			Documentation: markdown("```vb\n" + e.HandlerSignature(ctl.Name) + "\n```"),
		})
	}
	return items
}

func symbolItems(syms []*symbols.Symbol) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(syms))
	for _, sym := range syms {
		item := protocol.CompletionItem{
			Label:  sym.Name,
			Kind:   CompletionKind(sym.Kind),
			Detail: sym.Signature(),
		}
		if sym.Documentation != "" {
			item.Documentation = markdown(sym.Documentation)
		}
		if sym.Kind.IsCallable() {
			item.InsertText, item.InsertTextFormat = sym.Name+"($1)", protocol.InsertTextFormatSnippet
		}
		items = append(items, item)
	}
	return items
}

func keywordItems() []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, len(Keywords))
	for i, kw := range Keywords {
		items[i] = protocol.CompletionItem{
			Label:  kw,
			Kind:   protocol.CompletionItemKindKeyword,
			Detail: "keyword",
		}
	}
	return items
}

// rank orders candidates for prefix: prefix matches in their original order,
// then fuzzy matches by descending similarity. SortText carries the rank.
func rank(items []protocol.CompletionItem, prefix string, opts CompletionOptions) []protocol.CompletionItem {
	if prefix != "" {
		type scored struct {
			item  protocol.CompletionItem
			score float64
		}
		matcher := fuzzy.NewMatcher(opts.Fuzzy, opts.FuzzyThreshold, fuzzy.JaroWinkler)
		lower := strings.ToLower(prefix)

		var matched []protocol.CompletionItem
		var similar []scored
		for _, item := range items {
			if strings.HasPrefix(strings.ToLower(item.Label), lower) {
				matched = append(matched, item)
				continue
			}
			if !matcher.Enabled() {
				continue
			}
			if s := matcher.Similarity(prefix, item.Label); s >= matcher.Threshold() {
				similar = append(similar, scored{item, s})
			}
		}
		sort.SliceStable(similar, func(i, j int) bool { return similar[i].score > similar[j].score })
		for _, s := range similar {
			matched = append(matched, s.item)
		}
		items = matched
	}

	if opts.MaxItems > 0 && len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
	}
	for i := range items {
		items[i].SortText = fmt.Sprintf("%05d", i)
		items[i].FilterText = items[i].Label
	}
	return items
}
