// Package workspace keeps the symbol tables of many documents current: a
// versioned store, a per-document rebuild debouncer and a file watcher.
package workspace

import (
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.lsp.dev/uri"

	"github.com/standardbeagle/vbsym/internal/debug"
	"github.com/standardbeagle/vbsym/internal/symbols"
	"github.com/standardbeagle/vbsym/internal/syntax"
)

// Snapshot is the table built for one version of a document.
type Snapshot struct {
	URI     uri.URI
	Version int32
	Hash    uint64 // xxhash of the source
	Table   *symbols.SymbolTable
	BuiltAt time.Time
}

// Store holds the latest snapshot per document. Builds run outside any lock;
// a build for an older version never replaces a newer snapshot.
type Store struct {
	docs  cmap.ConcurrentMap[string, *Snapshot]
	opts  []symbols.Option
	now   func() time.Time
	build func(u uri.URI, source []byte, tree syntax.Tree, opts ...symbols.Option) *symbols.SymbolTable
}

// NewStore creates an empty store. opts are passed to every build.
func NewStore(opts ...symbols.Option) *Store {
	return &Store{
		docs:  cmap.New[*Snapshot](),
		opts:  opts,
		now:   time.Now,
		build: symbols.BuildSymbolTable,
	}
}

// Update builds the table for version of a document and stores it unless a
// snapshot with the same or a newer version is already present. When the
// source hashes the same as the stored snapshot the stored table is reused.
// It returns the snapshot now held for u and whether this update was applied.
func (s *Store) Update(u uri.URI, version int32, source []byte, tree syntax.Tree) (*Snapshot, bool) {
	hash := xxhash.Sum64(source)

	candidate := &Snapshot{URI: u, Version: version, Hash: hash}
	if cur, ok := s.docs.Get(string(u)); ok && cur.Hash == hash {
		candidate.Table, candidate.BuiltAt = cur.Table, cur.BuiltAt
	} else {
		candidate.Table = s.build(u, source, tree, s.opts...)
		candidate.BuiltAt = s.now()
	}

	applied := true
	stored := s.docs.Upsert(string(u), candidate, func(exist bool, inMap, newValue *Snapshot) *Snapshot {
		if exist && inMap.Version >= newValue.Version {
			applied = false
			return inMap
		}
		return newValue
	})

	if applied {
		debug.LogWorkspace("%s: version %d swapped in (%d symbols)\n", u, version, stored.Table.SymbolCount())
	} else {
		debug.LogWorkspace("%s: stale build of version %d discarded, holding %d\n", u, version, stored.Version)
	}
	return stored, applied
}

// Get returns the current snapshot of u.
func (s *Store) Get(u uri.URI) (*Snapshot, bool) {
	return s.docs.Get(string(u))
}

// Remove forgets u.
func (s *Store) Remove(u uri.URI) {
	s.docs.Remove(string(u))
}

// URIs lists the stored documents in sorted order.
func (s *Store) URIs() []uri.URI {
	keys := s.docs.Keys()
	sort.Strings(keys)
	out := make([]uri.URI, len(keys))
	for i, k := range keys {
		out[i] = uri.URI(k)
	}
	return out
}

func (s *Store) Len() int { return s.docs.Count() }

// snapshots returns every snapshot ordered by URI.
func (s *Store) snapshots() []*Snapshot {
	var out []*Snapshot
	for _, u := range s.URIs() {
		if snap, ok := s.Get(u); ok {
			out = append(out, snap)
		}
	}
	return out
}
