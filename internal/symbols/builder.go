package symbols

import (
	"strings"

	"go.lsp.dev/uri"

	"github.com/standardbeagle/vbsym/internal/debug"
	"github.com/standardbeagle/vbsym/internal/syntax"
)

// BuildSymbolTable builds the symbol table of one document. It never fails:
// declarations missing their expected fields are skipped and unresolvable
// identifiers produce no reference.
func BuildSymbolTable(u uri.URI, source []byte, tree syntax.Tree, opts ...Option) *SymbolTable {
	b := newBuilder(NewSymbolTable(u, opts...), source)
	if tree == nil {
		return b.table
	}
	return b.build(tree.RootNode())
}

type procKey struct {
	name string
	kind SymbolKind
}

type blockKey struct {
	kind  ScopeKind
	start Position
}

type builder struct {
	source []byte
	table  *SymbolTable
	stack  []ScopeID

	skipped int

	// pass 2 lookups, filled from the pass 1 results
	procScopes  map[procKey]ScopeID
	blockScopes map[blockKey]ScopeID
}

func newBuilder(t *SymbolTable, source []byte) *builder {
	return &builder{source: source, table: t, stack: []ScopeID{ModuleScope}}
}

func (b *builder) build(root syntax.Node) (table *SymbolTable) {
	table = b.table
	if root == nil {
		return table
	}
	defer func() {
		if r := recover(); r != nil {
			debug.LogBuild("build of %s aborted: %v\n", table.URI(), r)
		}
	}()

	b.declareFormControls(root)
	b.declare(root)

	b.indexScopes()
	b.stack = b.stack[:1]
	b.collect(root)

	debug.LogBuild("built %s: %d symbols, %d scopes, %d references, %d declarations skipped\n",
		table.URI(), table.SymbolCount(), table.ScopeCount(), table.ReferenceCount(), b.skipped)
	return table
}

func (b *builder) current() ScopeID {
	return b.stack[len(b.stack)-1]
}

// variableScope is the innermost scope Dim and Const may declare into.
func (b *builder) variableScope() ScopeID {
	for i := len(b.stack) - 1; i > 0; i-- {
		if s := b.table.Scope(b.stack[i]); s != nil && s.Kind.IsVariableScope() {
			return s.ID
		}
	}
	return ModuleScope
}

func (b *builder) push(kind ScopeKind, r Range) ScopeID {
	id := b.table.CreateScope(kind, b.current(), r)
	b.stack = append(b.stack, id)
	return id
}

func (b *builder) pop() {
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func (b *builder) text(n syntax.Node) string {
	return syntax.Text(n, b.source)
}

// named reports whether name is usable as the name of decl: present,
// non-empty and inside the declaration. Unusable names count as skipped
// declarations.
func (b *builder) named(decl, name syntax.Node) bool {
	if name == nil || b.text(name) == "" || !RangeOf(decl).ContainsRange(RangeOf(name)) {
		b.skipped++
		return false
	}
	return true
}

func sameNode(a, n syntax.Node) bool {
	return a != nil && n != nil && a.ID() == n.ID()
}

// ---- pass 1: declarations ----

func (b *builder) declare(n syntax.Node) {
	if n.Kind().IsDesigner() {
		// handled by declareFormControls
		return
	}
	switch n.Kind() {
	case syntax.KindVariableDeclaration:
		b.declareVariables(n)
	case syntax.KindConstantDeclaration:
		b.declareConstants(n)
	case syntax.KindTypeDeclaration:
		b.declareType(n)
	case syntax.KindEnumDeclaration:
		b.declareEnum(n)
	case syntax.KindSubDeclaration:
		b.declareProcedure(n, KindSub)
	case syntax.KindFunctionDeclaration:
		b.declareProcedure(n, KindFunction)
	case syntax.KindPropertyDeclaration:
		b.declareProcedure(n, b.propertyKind(n))
	case syntax.KindDeclareStatement:
		b.declareExternal(n)
	case syntax.KindEventStatement:
		b.declareEvent(n)
	case syntax.KindWithStatement:
		b.declareWith(n)
	case syntax.KindForStatement:
		b.declareLoop(n, ScopeForLoop, KindForLoopVariable, syntax.FieldCounter)
	case syntax.KindForEachStatement:
		b.declareLoop(n, ScopeForEachLoop, KindForEachVariable, syntax.FieldElement)
	case syntax.KindLabel:
		b.declareLabel(n)
	case syntax.KindPreprocIf, syntax.KindPreprocElseIf, syntax.KindPreprocElse:
		// every branch is declared; conditional compilation does not affect visibility
		b.declareChildren(n)
	default:
		b.declareChildren(n)
	}
}

func (b *builder) declareChildren(n syntax.Node) {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			b.declare(c)
		}
	}
}

// visibility scans the declaration's own tokens for a visibility keyword.
func (b *builder) visibility(n syntax.Node) Visibility {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || c.EndByte()-c.StartByte() > uint(len("private")) {
			continue
		}
		if v, ok := ParseVisibility(b.text(c)); ok {
			return v
		}
	}
	return Private
}

// typeInfo reads the first As clause directly under n. Array-ness comes from
// a trailing "()" on the type or bounds on the clause or on n itself.
func (b *builder) typeInfo(n syntax.Node) *TypeInfo {
	as := syntax.FirstChildOfKind(n, syntax.KindAsClause)
	if as == nil {
		return nil
	}
	typeNode := as.ChildByFieldName(syntax.FieldType)
	if typeNode == nil {
		return nil
	}
	name := strings.TrimSpace(b.text(typeNode))
	if name == "" {
		return nil
	}
	ti := &TypeInfo{
		Name: strings.TrimSuffix(name, "()"),
		IsArray: strings.HasSuffix(name, "()") ||
			syntax.FirstChildOfKind(as, syntax.KindArrayBounds) != nil ||
			syntax.FirstChildOfKind(n, syntax.KindArrayBounds) != nil,
	}
	for i := uint(0); i < as.ChildCount(); i++ {
		if c := as.Child(i); c != nil && !sameNode(c, typeNode) && strings.EqualFold(b.text(c), "new") {
			ti.IsNew = true
			break
		}
	}
	return ti
}

func (b *builder) localOrModule(local, module SymbolKind, scope ScopeID) SymbolKind {
	if s := b.table.Scope(scope); s != nil && s.Kind == ScopeModule {
		return module
	}
	return local
}

func (b *builder) declareVariables(n syntax.Node) {
	vis := b.visibility(n)
	scope := b.variableScope()
	kind := b.localOrModule(KindLocalVariable, KindVariable, scope)

	for i := uint(0); i < n.ChildCount(); i++ {
		list := n.Child(i)
		if list == nil || list.Kind() != syntax.KindVariableList {
			continue
		}
		for j := uint(0); j < list.ChildCount(); j++ {
			decl := list.Child(j)
			if decl == nil || decl.Kind() != syntax.KindVariableDeclarator {
				continue
			}
			name := decl.ChildByFieldName(syntax.FieldName)
			if !b.named(decl, name) {
				continue
			}
			b.table.CreateSymbol(Symbol{
				Name:            b.text(name),
				Kind:            kind,
				Visibility:      vis,
				Type:            b.typeInfo(decl),
				DefinitionRange: RangeOf(decl),
				NameRange:       RangeOf(name),
				Scope:           scope,
			})
		}
	}
}

func (b *builder) declareConstants(n syntax.Node) {
	vis := b.visibility(n)
	scope := b.variableScope()
	kind := b.localOrModule(KindLocalConstant, KindConstant, scope)

	for i := uint(0); i < n.ChildCount(); i++ {
		decl := n.Child(i)
		if decl == nil || decl.Kind() != syntax.KindConstantDeclarator {
			continue
		}
		name := decl.ChildByFieldName(syntax.FieldName)
		if !b.named(decl, name) {
			continue
		}
		sym := Symbol{
			Name:            b.text(name),
			Kind:            kind,
			Visibility:      vis,
			Type:            b.typeInfo(decl),
			DefinitionRange: RangeOf(decl),
			NameRange:       RangeOf(name),
			Scope:           scope,
		}
		if v := decl.ChildByFieldName(syntax.FieldValue); v != nil {
			sym.Value, sym.HasValue = b.text(v), true
		}
		b.table.CreateSymbol(sym)
	}
}

func (b *builder) declareType(n syntax.Node) {
	name := n.ChildByFieldName(syntax.FieldName)
	if !b.named(n, name) {
		return
	}
	scope := b.current()
	typeID := b.table.CreateSymbol(Symbol{
		Name:            b.text(name),
		Kind:            KindUserDefinedType,
		Visibility:      b.visibility(n),
		DefinitionRange: RangeOf(n),
		NameRange:       RangeOf(name),
		Scope:           scope,
	})

	var members []SymbolID
	for i := uint(0); i < n.ChildCount(); i++ {
		m := n.Child(i)
		if m == nil || m.Kind() != syntax.KindTypeMember {
			continue
		}
		mname := m.ChildByFieldName(syntax.FieldName)
		if !b.named(m, mname) {
			continue
		}
		members = append(members, b.table.CreateSymbol(Symbol{
			Name:            b.text(mname),
			Kind:            KindTypeMember,
			Visibility:      Public,
			Type:            b.typeInfo(m),
			DefinitionRange: RangeOf(m),
			NameRange:       RangeOf(mname),
			Scope:           scope,
		}))
	}
	b.table.Symbol(typeID).Members = members
}

func (b *builder) declareEnum(n syntax.Node) {
	name := n.ChildByFieldName(syntax.FieldName)
	if !b.named(n, name) {
		return
	}
	vis := b.visibility(n)
	scope := b.current()
	enumID := b.table.CreateSymbol(Symbol{
		Name:            b.text(name),
		Kind:            KindEnum,
		Visibility:      vis,
		DefinitionRange: RangeOf(n),
		NameRange:       RangeOf(name),
		Scope:           scope,
	})

	var members []SymbolID
	for i := uint(0); i < n.ChildCount(); i++ {
		m := n.Child(i)
		if m == nil || m.Kind() != syntax.KindEnumMember {
			continue
		}
		mname := m.ChildByFieldName(syntax.FieldName)
		if !b.named(m, mname) {
			continue
		}
		sym := Symbol{
			Name:            b.text(mname),
			Kind:            KindEnumMember,
			Visibility:      vis,
			DefinitionRange: RangeOf(m),
			NameRange:       RangeOf(mname),
			Scope:           scope,
		}
		if v := m.ChildByFieldName(syntax.FieldValue); v != nil {
			sym.Value, sym.HasValue = b.text(v), true
		}
		members = append(members, b.table.CreateSymbol(sym))
	}
	b.table.Symbol(enumID).Members = members
}

func (b *builder) propertyKind(n syntax.Node) SymbolKind {
	acc := n.ChildByFieldName(syntax.FieldAccessor)
	switch strings.ToLower(b.text(acc)) {
	case "let":
		return KindPropertyLet
	case "set":
		return KindPropertySet
	}
	return KindPropertyGet
}

func (b *builder) declareProcedure(n syntax.Node, kind SymbolKind) {
	name := n.ChildByFieldName(syntax.FieldName)
	if !b.named(n, name) {
		b.declareChildren(n)
		return
	}

	sym := Symbol{
		Name:            b.text(name),
		Kind:            kind,
		Visibility:      b.visibility(n),
		DefinitionRange: RangeOf(n),
		NameRange:       RangeOf(name),
		Scope:           b.current(),
	}
	if kind == KindFunction || kind == KindPropertyGet {
		sym.Type = b.typeInfo(n)
	}
	id := b.table.CreateSymbol(sym)

	scope := b.push(ScopeProcedure, sym.DefinitionRange)
	b.table.LinkProcedureScope(scope, id)
	b.table.Symbol(id).Parameters = b.parameters(n, scope, true)

	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == syntax.KindBlock {
			b.declareChildren(c)
		}
	}
	b.pop()
}

// parameters reads the parameter list of n. With declare set, each
// parameter is also declared as a symbol in scope.
func (b *builder) parameters(n syntax.Node, scope ScopeID, declare bool) []ParameterInfo {
	var params []ParameterInfo
	for i := uint(0); i < n.ChildCount(); i++ {
		list := n.Child(i)
		if list == nil || list.Kind() != syntax.KindParameterList {
			continue
		}
		for j := uint(0); j < list.ChildCount(); j++ {
			p := list.Child(j)
			if p == nil || p.Kind() != syntax.KindParameter {
				continue
			}
			name := p.ChildByFieldName(syntax.FieldName)
			if !b.named(p, name) {
				continue
			}
			info := ParameterInfo{
				Name:      b.text(name),
				Type:      b.typeInfo(p),
				ByRef:     true,
				Range:     RangeOf(p),
				NameRange: RangeOf(name),
			}
			b.parameterModifiers(p, name, &info)
			if d := p.ChildByFieldName(syntax.FieldDefault); d != nil {
				info.DefaultValue, info.HasDefault = b.text(d), true
			}
			params = append(params, info)

			if declare {
				b.table.CreateSymbol(Symbol{
					Name:            info.Name,
					Kind:            KindParameter,
					Type:            info.Type,
					DefinitionRange: info.Range,
					NameRange:       info.NameRange,
					Scope:           scope,
				})
			}
		}
	}
	return params
}

// parameterModifiers applies ByVal, ByRef, Optional and ParamArray words found
// in the parameter's children other than its name, type and default.
func (b *builder) parameterModifiers(p, name syntax.Node, info *ParameterInfo) {
	def := p.ChildByFieldName(syntax.FieldDefault)
	for i := uint(0); i < p.ChildCount(); i++ {
		c := p.Child(i)
		if c == nil || sameNode(c, name) || sameNode(c, def) || c.Kind() == syntax.KindAsClause {
			continue
		}
		for _, word := range strings.Fields(b.text(c)) {
			switch strings.ToLower(word) {
			case "byval":
				info.ByRef = false
			case "byref":
				info.ByRef = true
			case "optional":
				info.Optional = true
			case "paramarray":
				info.ParamArray = true
			}
		}
	}
}

func (b *builder) declareExternal(n syntax.Node) {
	name := n.ChildByFieldName(syntax.FieldName)
	if !b.named(n, name) {
		return
	}
	kind := KindDeclareSub
	if syntax.HasChildType(n, "function") {
		kind = KindDeclareFunction
	}

	sym := Symbol{
		Name:            b.text(name),
		Kind:            kind,
		Visibility:      b.visibility(n),
		DefinitionRange: RangeOf(n),
		NameRange:       RangeOf(name),
		Scope:           b.current(),
		Parameters:      b.parameters(n, NoScope, false),
		Documentation:   b.libraryClause(n),
	}
	if kind == KindDeclareFunction {
		sym.Type = b.typeInfo(n)
	}
	b.table.CreateSymbol(sym)
}

// libraryClause renders the Lib and Alias parts of a Declare statement.
func (b *builder) libraryClause(n syntax.Node) string {
	var parts []string
	for i := uint(0); i+1 < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		kw := b.text(c)
		if strings.EqualFold(kw, "lib") || strings.EqualFold(kw, "alias") {
			if next := n.Child(i + 1); next != nil {
				parts = append(parts, kw+" "+b.text(next))
			}
		}
	}
	return strings.Join(parts, " ")
}

func (b *builder) declareEvent(n syntax.Node) {
	name := n.ChildByFieldName(syntax.FieldName)
	if !b.named(n, name) {
		return
	}
	b.table.CreateSymbol(Symbol{
		Name:            b.text(name),
		Kind:            KindEvent,
		Visibility:      b.visibility(n),
		DefinitionRange: RangeOf(n),
		NameRange:       RangeOf(name),
		Scope:           b.current(),
		Parameters:      b.parameters(n, NoScope, false),
	})
}

func (b *builder) declareWith(n syntax.Node) {
	scope := b.push(ScopeWithBlock, RangeOf(n))
	if obj := n.ChildByFieldName(syntax.FieldObject); obj != nil {
		b.table.Scope(scope).WithObject = b.text(obj)
	}
	b.declareChildren(n)
	b.pop()
}

// loopVariable returns the loop's variable node under field, or under the
// generic variable field some grammars use.
func loopVariable(n syntax.Node, field string) syntax.Node {
	if v := n.ChildByFieldName(field); v != nil {
		return v
	}
	return n.ChildByFieldName(syntax.FieldVariable)
}

func (b *builder) declareLoop(n syntax.Node, scopeKind ScopeKind, varKind SymbolKind, field string) {
	scope := b.push(scopeKind, RangeOf(n))
	if v := loopVariable(n, field); v != nil && b.text(v) != "" {
		r := RangeOf(v)
		b.table.CreateSymbol(Symbol{
			Name:            b.text(v),
			Kind:            varKind,
			DefinitionRange: r,
			NameRange:       r,
			Scope:           scope,
		})
	}
	b.declareChildren(n)
	b.pop()
}

func (b *builder) declareLabel(n syntax.Node) {
	first := n.Child(0)
	if first != nil && strings.TrimSpace(b.text(first)) == "" {
		first = nil
	}
	if !b.named(n, first) {
		return
	}
	b.table.CreateSymbol(Symbol{
		Name:            b.text(first),
		Kind:            KindLabel,
		DefinitionRange: RangeOf(n),
		NameRange:       RangeOf(first),
		Scope:           b.current(),
	})
}

// ---- pass 2: references ----

// indexScopes records, for each procedure and block scope created in pass 1,
// the key pass 2 uses to re-enter it. The first scope with a key wins.
func (b *builder) indexScopes() {
	b.procScopes = make(map[procKey]ScopeID)
	b.blockScopes = make(map[blockKey]ScopeID)
	for _, sym := range b.table.Symbols() {
		if !sym.Kind.CreatesScope() {
			continue
		}
		scope, ok := b.table.ProcedureScope(sym.ID)
		if !ok {
			continue
		}
		key := procKey{name: strings.ToLower(sym.Name), kind: sym.Kind}
		if _, dup := b.procScopes[key]; !dup {
			b.procScopes[key] = scope
		}
	}
	for _, s := range b.table.Scopes() {
		switch s.Kind {
		case ScopeWithBlock, ScopeForLoop, ScopeForEachLoop:
			key := blockKey{kind: s.Kind, start: s.Range.Start}
			if _, dup := b.blockScopes[key]; !dup {
				b.blockScopes[key] = s.ID
			}
		}
	}
}

func (b *builder) collect(n syntax.Node) {
	if n.Kind().IsDesigner() {
		return
	}
	switch n.Kind() {
	case syntax.KindSubDeclaration:
		b.collectProcedure(n, KindSub)
	case syntax.KindFunctionDeclaration:
		b.collectProcedure(n, KindFunction)
	case syntax.KindPropertyDeclaration:
		b.collectProcedure(n, b.propertyKind(n))
	case syntax.KindWithStatement:
		b.collectBlock(n, ScopeWithBlock, nil)
	case syntax.KindForStatement:
		b.collectBlock(n, ScopeForLoop, loopVariable(n, syntax.FieldCounter))
	case syntax.KindForEachStatement:
		b.collectBlock(n, ScopeForEachLoop, loopVariable(n, syntax.FieldElement))
	case syntax.KindIdentifier:
		b.reference(n)
		b.collectChildren(n, nil)
	case syntax.KindPreprocIf, syntax.KindPreprocElseIf, syntax.KindPreprocElse:
		b.collectChildren(n, nil)
	default:
		b.collectChildren(n, nil)
	}
}

// collectChildren visits the children of n except those skip rejects.
// Identifiers directly after a "." token are member accesses and are left
// unresolved.
func (b *builder) collectChildren(n syntax.Node, skip func(syntax.Node) bool) {
	afterDot := false
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			afterDot = false
			continue
		}
		member := afterDot && c.Kind() == syntax.KindIdentifier
		afterDot = c.Type() == "."
		if member || (skip != nil && skip(c)) {
			continue
		}
		b.collect(c)
	}
}

func (b *builder) collectProcedure(n syntax.Node, kind SymbolKind) {
	name := n.ChildByFieldName(syntax.FieldName)
	pushed := false
	if name != nil {
		if scope, ok := b.procScopes[procKey{name: strings.ToLower(b.text(name)), kind: kind}]; ok {
			b.stack = append(b.stack, scope)
			pushed = true
		}
	}
	b.collectChildren(n, func(c syntax.Node) bool {
		return c.Kind() == syntax.KindParameterList || sameNode(c, name)
	})
	if pushed {
		b.pop()
	}
}

func (b *builder) collectBlock(n syntax.Node, kind ScopeKind, loopVar syntax.Node) {
	scope, pushed := b.blockScopes[blockKey{kind: kind, start: PositionFromPoint(n.StartPoint())}]
	if pushed {
		b.stack = append(b.stack, scope)
	}
	b.collectChildren(n, func(c syntax.Node) bool {
		return sameNode(c, loopVar)
	})
	if pushed {
		b.pop()
	}
}

func (b *builder) reference(n syntax.Node) {
	if b.isDeclarationName(n) {
		return
	}
	name := b.text(n)
	if name == "" {
		return
	}
	scope := b.current()
	sym := b.table.LookupSymbol(name, scope)
	if sym == nil {
		return
	}
	b.table.AddReference(Reference{
		Symbol:       sym.ID,
		Range:        RangeOf(n),
		Scope:        scope,
		IsAssignment: isAssignmentTarget(n),
	})
}

func (b *builder) isDeclarationName(n syntax.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case syntax.KindLabel:
		return true
	case syntax.KindVariableDeclarator, syntax.KindConstantDeclarator, syntax.KindEnumMember,
		syntax.KindTypeMember, syntax.KindParameter, syntax.KindSubDeclaration,
		syntax.KindFunctionDeclaration, syntax.KindPropertyDeclaration, syntax.KindTypeDeclaration,
		syntax.KindEnumDeclaration, syntax.KindDeclareStatement, syntax.KindEventStatement,
		syntax.KindForStatement, syntax.KindForEachStatement:
		for _, field := range []string{syntax.FieldName, syntax.FieldVariable, syntax.FieldCounter, syntax.FieldElement} {
			if sameNode(parent.ChildByFieldName(field), n) {
				return true
			}
		}
	}
	return false
}

// isAssignmentTarget reports whether n is, or lies within, the target of the
// nearest enclosing assignment or Set statement.
func isAssignmentTarget(n syntax.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case syntax.KindAssignmentStatement, syntax.KindSetStatement:
			target := p.ChildByFieldName(syntax.FieldTarget)
			return sameNode(target, n) || syntax.Contains(target, n)
		case syntax.KindBlock, syntax.KindSourceFile:
			return false
		}
		if p.Kind().IsProcedure() {
			return false
		}
	}
	return false
}
