package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/uri"
)

const testURI = uri.URI("file:///project/Module1.bas")

func TestNewSymbolTable(t *testing.T) {
	table := NewSymbolTable(testURI)

	assert.Equal(t, testURI, table.URI())
	assert.Equal(t, 1, table.ScopeCount())
	assert.Zero(t, table.SymbolCount())
	assert.Zero(t, table.ReferenceCount())

	module := table.ModuleScope()
	assert.Equal(t, ModuleScope, module.ID)
	assert.Equal(t, ScopeModule, module.Kind)
	assert.Equal(t, NoScope, module.Parent)
	assert.Equal(t, ModuleScope, table.ScopeAtPosition(Pos(123456, 7)))
}

func TestCreateSymbolUnknownScopeFallsBackToModule(t *testing.T) {
	table := NewSymbolTable(testURI)
	id := table.CreateSymbol(Symbol{Name: "stray", Scope: 42})

	sym := table.Symbol(id)
	require.NotNil(t, sym)
	assert.Equal(t, ModuleScope, sym.Scope)
	assert.Same(t, sym, table.LookupSymbol("STRAY", ModuleScope))
}

func TestOutOfRangeQueries(t *testing.T) {
	table := NewSymbolTable(testURI)
	assert.Nil(t, table.Symbol(0))
	assert.Nil(t, table.Symbol(NoSymbol))
	assert.Nil(t, table.Scope(7))
	assert.Nil(t, table.Scope(NoScope))
	assert.Nil(t, table.SymbolsInScope(9))
	assert.Nil(t, table.LookupSymbol("x", 9))
	assert.Nil(t, table.SymbolAtPosition(Pos(0, 0)))
	assert.Nil(t, table.ReferenceAtPosition(Pos(0, 0)))
	assert.Nil(t, table.FindAllReferences(Pos(0, 0)))
	assert.Empty(t, table.ReferencesTo(3))
	assert.Empty(t, table.ScopeChain(NoScope))

	_, ok := table.ProcedureScope(0)
	assert.False(t, ok)
}

func TestAddReferenceIgnoresUnknownSymbols(t *testing.T) {
	table := NewSymbolTable(testURI)
	table.AddReference(Reference{Symbol: 5, Range: rng(0, 0, 0, 1)})
	assert.Zero(t, table.ReferenceCount())
}

func TestScopeAtPositionPicksInnermost(t *testing.T) {
	table := NewSymbolTable(testURI)
	proc := table.CreateScope(ScopeProcedure, ModuleScope, rng(2, 0, 20, 7))
	with := table.CreateScope(ScopeWithBlock, proc, rng(5, 4, 9, 12))
	loop := table.CreateScope(ScopeForLoop, with, rng(6, 8, 8, 14))

	assert.Equal(t, ModuleScope, table.ScopeAtPosition(Pos(0, 0)))
	assert.Equal(t, proc, table.ScopeAtPosition(Pos(3, 0)))
	assert.Equal(t, proc, table.ScopeAtPosition(Pos(5, 2)), "before the With on its first line")
	assert.Equal(t, with, table.ScopeAtPosition(Pos(5, 4)))
	assert.Equal(t, loop, table.ScopeAtPosition(Pos(7, 0)))
	assert.Equal(t, with, table.ScopeAtPosition(Pos(9, 0)))
	assert.Equal(t, ModuleScope, table.ScopeAtPosition(Pos(21, 0)))

	assert.Equal(t, []ScopeID{loop, with, proc, ModuleScope}, table.ScopeChain(loop))
	assert.Equal(t, []ScopeID{proc}, table.ModuleScope().Children)
}

func TestScopeIndexLimit(t *testing.T) {
	table := NewSymbolTable(testURI, WithScopeIndexLimit(5))
	proc := table.CreateScope(ScopeProcedure, ModuleScope, rng(0, 0, 100, 0))

	assert.Equal(t, proc, table.ScopeAtPosition(Pos(3, 0)))
	assert.Equal(t, proc, table.ScopeAtPosition(Pos(5, 0)))
	assert.Equal(t, ModuleScope, table.ScopeAtPosition(Pos(50, 0)), "lines past the cap are not indexed")

	defaults := NewSymbolTable(testURI, WithScopeIndexLimit(0))
	proc = defaults.CreateScope(ScopeProcedure, ModuleScope, rng(0, 0, 100, 0))
	assert.Equal(t, proc, defaults.ScopeAtPosition(Pos(50, 0)))
}

func TestNameAndReferenceIndexLimit(t *testing.T) {
	table := NewSymbolTable(testURI, WithScopeIndexLimit(5))
	id := table.CreateSymbol(Symbol{Name: "x", Kind: KindVariable, NameRange: rng(0, 4, 3000000, 0)})
	table.AddReference(Reference{Symbol: id, Range: rng(10, 0, 2000000, 0)})

	assert.Len(t, table.symbolsByLine, 6)
	assert.Len(t, table.refsByLine, 6)
	assert.Equal(t, id, table.SymbolAtPosition(Pos(2, 0)).ID)
	assert.Equal(t, id, table.SymbolAtPosition(Pos(12, 0)).ID)
	assert.Nil(t, table.SymbolAtPosition(Pos(100, 0)), "lines past the cap are not indexed")
}

func TestLookupWalksOutwards(t *testing.T) {
	table := NewSymbolTable(testURI)
	moduleX := table.CreateSymbol(Symbol{Name: "x", Kind: KindVariable, NameRange: rng(0, 4, 0, 5)})
	table.CreateSymbol(Symbol{Name: "y", Kind: KindVariable, NameRange: rng(1, 4, 1, 5)})
	proc := table.CreateScope(ScopeProcedure, ModuleScope, rng(3, 0, 8, 7))
	localX := table.CreateSymbol(Symbol{Name: "X", Kind: KindLocalVariable, Scope: proc, NameRange: rng(4, 8, 4, 9)})

	assert.Equal(t, localX, table.LookupSymbol("x", proc).ID)
	assert.Equal(t, moduleX, table.LookupSymbol("X", ModuleScope).ID)
	assert.Equal(t, "y", table.LookupSymbol("Y", proc).Name)
	assert.Nil(t, table.LookupSymbol("z", proc))

	assert.Equal(t, localX, table.LookupAtPosition("x", Pos(5, 0)).ID)
	assert.Equal(t, moduleX, table.LookupAtPosition("x", Pos(10, 0)).ID)
}

func TestVisibleSymbolsHideOuterNames(t *testing.T) {
	table := NewSymbolTable(testURI)
	table.CreateSymbol(Symbol{Name: "x", Kind: KindVariable})
	table.CreateSymbol(Symbol{Name: "total", Kind: KindVariable})
	proc := table.CreateScope(ScopeProcedure, ModuleScope, rng(3, 0, 8, 7))
	localX := table.CreateSymbol(Symbol{Name: "X", Kind: KindLocalVariable, Scope: proc})

	visible := table.VisibleSymbols(Pos(4, 0))
	require.Len(t, visible, 2)
	assert.Equal(t, localX, visible[0].ID)
	assert.Equal(t, "total", visible[1].Name)

	assert.Len(t, table.VisibleSymbols(Pos(20, 0)), 2)
}

func TestSymbolAtPositionPrefersDeclarations(t *testing.T) {
	table := NewSymbolTable(testURI)
	a := table.CreateSymbol(Symbol{Name: "a", NameRange: rng(0, 4, 0, 5)})
	b := table.CreateSymbol(Symbol{Name: "b", NameRange: rng(1, 4, 1, 5)})
	// a reference to b recorded over a's name must not shadow the declaration
	table.AddReference(Reference{Symbol: b, Range: rng(0, 4, 0, 5)})
	table.AddReference(Reference{Symbol: a, Range: rng(2, 0, 2, 1)})

	assert.Equal(t, a, table.SymbolAtPosition(Pos(0, 4)).ID)
	assert.Equal(t, a, table.SymbolAtPosition(Pos(2, 1)).ID)
	assert.Nil(t, table.SymbolAtPosition(Pos(2, 3)))

	assert.Equal(t, []Range{rng(0, 4, 0, 5), rng(2, 0, 2, 1)}, table.FindAllReferences(Pos(2, 0)))
	assert.Equal(t, 1, table.ReferenceCountOf(b))
}

func TestLinkProcedureScope(t *testing.T) {
	table := NewSymbolTable(testURI)
	sub := table.CreateSymbol(Symbol{Name: "Main", Kind: KindSub})
	scope := table.CreateScope(ScopeProcedure, ModuleScope, rng(0, 0, 2, 7))
	table.LinkProcedureScope(scope, sub)
	table.LinkProcedureScope(scope, 99)

	got, ok := table.ProcedureScope(sub)
	require.True(t, ok)
	assert.Equal(t, scope, got)
	assert.Equal(t, sub, table.Scope(scope).DefiningSymbol)
}
