package workspace

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/uri"

	"github.com/standardbeagle/vbsym/internal/symbols"
	"github.com/standardbeagle/vbsym/internal/syntax"
	. "github.com/standardbeagle/vbsym/internal/syntax/syntaxtest"
)

const (
	module1 = uri.URI("file:///project/Module1.bas")
	module2 = uri.URI("file:///project/Module2.bas")
)

func dimSource(name string) string { return "Dim " + name + " As Integer" }

func dimTree(t *testing.T, name string) syntax.Tree {
	t.Helper()
	return Build(t, dimSource(name), N("source_file",
		N("variable_declaration", Tok("Dim"),
			N("variable_list", N("variable_declarator", Ident(name).As("name"),
				N("as_clause", Tok("As"), Ident("Integer").As("type")))))))
}

// countingStore counts the builds a store performs.
func countingStore() (*Store, *atomic.Int32) {
	s := NewStore()
	var builds atomic.Int32
	s.build = func(u uri.URI, source []byte, tree syntax.Tree, opts ...symbols.Option) *symbols.SymbolTable {
		builds.Add(1)
		return symbols.BuildSymbolTable(u, source, tree, opts...)
	}
	return s, &builds
}

func TestStoreUpdateAndGet(t *testing.T) {
	s := NewStore()
	snap, applied := s.Update(module1, 1, []byte(dimSource("x")), dimTree(t, "x"))
	require.True(t, applied)
	assert.Equal(t, int32(1), snap.Version)
	assert.Equal(t, xxhash.Sum64String(dimSource("x")), snap.Hash)
	assert.False(t, snap.BuiltAt.IsZero())

	got, ok := s.Get(module1)
	require.True(t, ok)
	assert.Same(t, snap, got)
	assert.NotNil(t, got.Table.LookupSymbol("X", symbols.ModuleScope))
	assert.Equal(t, module1, got.Table.URI())

	_, ok = s.Get(module2)
	assert.False(t, ok)
}

func TestStoreDiscardsStaleBuild(t *testing.T) {
	s := NewStore()
	s.Update(module1, 2, []byte(dimSource("newer")), dimTree(t, "newer"))

	snap, applied := s.Update(module1, 1, []byte(dimSource("older")), dimTree(t, "older"))
	assert.False(t, applied)
	assert.Equal(t, int32(2), snap.Version)
	assert.NotNil(t, snap.Table.LookupSymbol("newer", symbols.ModuleScope))

	_, applied = s.Update(module1, 2, []byte(dimSource("same")), dimTree(t, "same"))
	assert.False(t, applied, "an equal version is not newer")
}

func TestStoreReusesTableForUnchangedSource(t *testing.T) {
	s, builds := countingStore()
	first, _ := s.Update(module1, 1, []byte(dimSource("x")), dimTree(t, "x"))
	second, applied := s.Update(module1, 2, []byte(dimSource("x")), dimTree(t, "x"))

	require.True(t, applied)
	assert.Equal(t, int32(1), builds.Load())
	assert.Equal(t, int32(2), second.Version)
	assert.Same(t, first.Table, second.Table)
	assert.Equal(t, first.BuiltAt, second.BuiltAt)

	s.Update(module1, 3, []byte(dimSource("y")), dimTree(t, "y"))
	assert.Equal(t, int32(2), builds.Load())
}

func TestStoreRemoveAndURIs(t *testing.T) {
	s := NewStore()
	s.Update(module2, 1, []byte(dimSource("b")), dimTree(t, "b"))
	s.Update(module1, 1, []byte(dimSource("a")), dimTree(t, "a"))

	assert.Equal(t, []uri.URI{module1, module2}, s.URIs())
	assert.Equal(t, 2, s.Len())

	s.Remove(module1)
	assert.Equal(t, []uri.URI{module2}, s.URIs())
	s.Remove(module1)
	assert.Equal(t, 1, s.Len())
}

func TestStoreConcurrentUpdatesKeepNewest(t *testing.T) {
	const versions = 40
	sources := make([]string, versions+1)
	trees := make([]syntax.Tree, versions+1)
	for v := 1; v <= versions; v++ {
		name := fmt.Sprintf("v%d", v)
		sources[v], trees[v] = dimSource(name), dimTree(t, name)
	}

	s := NewStore()
	var wg sync.WaitGroup
	for v := versions; v >= 1; v-- {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.Update(module1, int32(v), []byte(sources[v]), trees[v])
		}(v)
	}
	wg.Wait()

	snap, ok := s.Get(module1)
	require.True(t, ok)
	assert.Equal(t, int32(versions), snap.Version)
	assert.NotNil(t, snap.Table.LookupSymbol(fmt.Sprintf("v%d", versions), symbols.ModuleScope))
}

func TestStoreAppliesTableOptions(t *testing.T) {
	s := NewStore(symbols.WithScopeIndexLimit(1))
	snap, _ := s.Update(module1, 1, []byte(dimSource("x")), dimTree(t, "x"))
	assert.Equal(t, 1, snap.Table.SymbolCount())
}
