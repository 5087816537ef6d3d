package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensave/CodeCortX-MCP/internal/types"
)

func sampleSymbol(name string, kind types.Kind, line int) *types.Symbol {
	return &types.Symbol{
		Name:     name,
		Kind:     kind,
		Location: types.Location{StartLine: line, StartCol: 0, EndLine: line, EndCol: 10},
	}
}

// TestSymbolIDIsStableAcrossFileIDAllocationOrder guards against a
// regression where the symbol id hash depended on the numeric FileID:
// FileID is an incrementing counter assigned in first-seen order by
// concurrent extraction workers, so two cold-start indexing runs of the
// same directory can allocate different FileIDs to the same path. The id
// must depend only on (path, name, kind, start byte) so it reproduces
// across runs regardless of allocation order.
func TestSymbolIDIsStableAcrossFileIDAllocationOrder(t *testing.T) {
	sym := func() *types.Symbol {
		return &types.Symbol{
			Name:     "greet",
			Kind:     types.KindFunction,
			Location: types.Location{StartLine: 3, StartCol: 0, StartByte: 42, EndLine: 5, EndCol: 1},
		}
	}

	s1 := New()
	s1.ReplaceFile(types.FileInfo{ID: 1, Path: "hello.go"}, []*types.Symbol{sym()}, nil, nil)

	s2 := New()
	// Same path, but a different FileID, simulating a second run where
	// another file happened to be enumerated or extracted first.
	s2.ReplaceFile(types.FileInfo{ID: 7, Path: "hello.go"}, []*types.Symbol{sym()}, nil, nil)

	id1 := s1.SymbolsByName("greet")[0].ID
	id2 := s2.SymbolsByName("greet")[0].ID
	assert.Equal(t, id1, id2)
}

// TestSymbolIDDistinguishesKindAtSamePosition guards against dropping kind
// from the hash input: two different symbol kinds should never collide
// just because they share a path/name/start_byte.
func TestSymbolIDDistinguishesKindAtSamePosition(t *testing.T) {
	loc := types.Location{StartLine: 1, StartByte: 10}
	a := &types.Symbol{Name: "Widget", Kind: types.KindStruct, Location: loc}
	b := &types.Symbol{Name: "Widget", Kind: types.KindClass, Location: loc}

	s := New()
	s.ReplaceFile(types.FileInfo{ID: 1, Path: "a.go"}, []*types.Symbol{a}, nil, nil)
	idA := s.SymbolsByName("Widget")[0].ID

	s2 := New()
	s2.ReplaceFile(types.FileInfo{ID: 1, Path: "a.go"}, []*types.Symbol{b}, nil, nil)
	idB := s2.SymbolsByName("Widget")[0].ID

	assert.NotEqual(t, idA, idB)
}

func TestReplaceFileRetainsContentAndSymbols(t *testing.T) {
	s := New()
	info := types.FileInfo{ID: 1, Path: "hello.go", ParseStatus: types.ParseOK}
	content := []byte("package main\n\nfunc greet() {}\n")

	s.ReplaceFile(info, []*types.Symbol{sampleSymbol("greet", types.KindFunction, 3)}, nil, content)

	require.Equal(t, 1, s.TotalFiles())
	require.Equal(t, 1, s.TotalSymbols())

	got, ok := s.Content(1)
	require.True(t, ok)
	assert.Equal(t, content, got)

	syms := s.SymbolsByName("greet")
	require.Len(t, syms, 1)
	assert.Equal(t, types.KindFunction, syms[0].Kind)
}

func TestReplaceFileIsAtomicAcrossReindex(t *testing.T) {
	s := New()
	info := types.FileInfo{ID: 1, Path: "hello.go"}

	s.ReplaceFile(info, []*types.Symbol{sampleSymbol("greet", types.KindFunction, 3)}, nil, []byte("v1"))
	require.Len(t, s.SymbolsByName("greet"), 1)

	s.ReplaceFile(info, []*types.Symbol{
		sampleSymbol("greet", types.KindFunction, 3),
		sampleSymbol("greeting", types.KindFunction, 7),
	}, nil, []byte("v2"))

	assert.Len(t, s.SymbolsByName("greet"), 1)
	assert.Len(t, s.SymbolsByName("greeting"), 1)
	assert.Equal(t, 2, s.TotalSymbols())

	content, ok := s.Content(1)
	require.True(t, ok)
	assert.Equal(t, "v2", string(content))
}

func TestRemoveFileClearsEverything(t *testing.T) {
	s := New()
	info := types.FileInfo{ID: 1, Path: "hello.go"}
	s.ReplaceFile(info, []*types.Symbol{sampleSymbol("greet", types.KindFunction, 3)}, []types.Reference{
		{SymbolName: "greet", Kind: types.ReferenceDefinition, Location: types.Location{FileID: 1, StartLine: 3}},
	}, []byte("content"))

	s.RemoveFile(1)

	assert.Equal(t, 0, s.TotalFiles())
	assert.Equal(t, 0, s.TotalSymbols())
	assert.Empty(t, s.SymbolsByName("greet"))
	assert.Empty(t, s.References("greet"))
	_, ok := s.Content(1)
	assert.False(t, ok)
	assert.Zero(t, s.MemoryBytes())
}

func TestSetContentIfMissingDoesNotOverwrite(t *testing.T) {
	s := New()
	info := types.FileInfo{ID: 1, Path: "hello.go"}
	s.ReplaceFile(info, nil, nil, []byte("original"))

	s.SetContentIfMissing(1, []byte("stale"))

	content, ok := s.Content(1)
	require.True(t, ok)
	assert.Equal(t, "original", string(content))
}

func TestSetContentIfMissingRestoresEvictedContent(t *testing.T) {
	s := New()
	info := types.FileInfo{ID: 1, Path: "hello.go"}
	s.ReplaceFile(info, nil, nil, nil) // simulate content already evicted

	s.SetContentIfMissing(1, []byte("restored"))

	content, ok := s.Content(1)
	require.True(t, ok)
	assert.Equal(t, "restored", string(content))
}

func TestSymbolsByPrefixIsCaseInsensitiveAndSorted(t *testing.T) {
	s := New()
	info := types.FileInfo{ID: 1, Path: "hello.go"}
	s.ReplaceFile(info, []*types.Symbol{
		sampleSymbol("Greeting", types.KindFunction, 1),
		sampleSymbol("greet", types.KindFunction, 3),
		sampleSymbol("grep", types.KindFunction, 5),
	}, nil, nil)

	got := s.SymbolsByPrefix("GRE", 0)
	var names []string
	for _, sym := range got {
		names = append(names, sym.Name)
	}
	assert.Equal(t, []string{"Greeting", "greet", "grep"}, names)
}

func TestMemoryBytesCountsRetainedContent(t *testing.T) {
	s := New()
	info := types.FileInfo{ID: 1, Path: "hello.go"}
	before := s.MemoryBytes()

	s.ReplaceFile(info, []*types.Symbol{sampleSymbol("greet", types.KindFunction, 3)}, nil, []byte("0123456789"))

	after := s.MemoryBytes()
	assert.Greater(t, after-before, int64(10))
}

// TestCrossMapConsistencyAfterMixedOperations walks the store through
// insert, replace, remove and checks the cross-map invariants directly:
// every byName entry resolves in byID, every file symbol id resolves and
// points back at its file, and no symbol outlives its file.
func TestCrossMapConsistencyAfterMixedOperations(t *testing.T) {
	s := New()

	s.ReplaceFile(types.FileInfo{ID: 1, Path: "a.go"}, []*types.Symbol{
		sampleSymbol("Alpha", types.KindStruct, 1),
		sampleSymbol("shared", types.KindFunction, 5),
	}, nil, []byte("a"))
	s.ReplaceFile(types.FileInfo{ID: 2, Path: "b.go"}, []*types.Symbol{
		sampleSymbol("Beta", types.KindStruct, 1),
		sampleSymbol("shared", types.KindFunction, 9),
	}, nil, []byte("b"))

	// Replace a.go with different symbols, then drop b.go entirely.
	s.ReplaceFile(types.FileInfo{ID: 1, Path: "a.go"}, []*types.Symbol{
		sampleSymbol("Gamma", types.KindFunction, 2),
	}, nil, []byte("a2"))
	s.RemoveFile(2)

	checkConsistency(t, s)
	assert.Empty(t, s.SymbolsByName("Alpha"))
	assert.Empty(t, s.SymbolsByName("Beta"))
	assert.Empty(t, s.SymbolsByName("shared"))
	require.Len(t, s.SymbolsByName("Gamma"), 1)
	assert.Equal(t, 1, s.TotalFiles())
	assert.Equal(t, 1, s.TotalSymbols())
}

func checkConsistency(t *testing.T, s *Store) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, syms := range s.byName {
		for _, sym := range syms {
			got, ok := s.byID[sym.ID]
			require.True(t, ok, "byName[%q] id %d missing from byID", name, sym.ID)
			assert.Equal(t, name, got.Name)
		}
	}
	for id, sym := range s.byID {
		_, ok := s.files[sym.Location.FileID]
		require.True(t, ok, "symbol %d has no file %d", id, sym.Location.FileID)
		found := false
		for _, fid := range s.fileSyms[sym.Location.FileID] {
			if fid == id {
				found = true
			}
		}
		assert.True(t, found, "symbol %d missing from its file's id set", id)
	}
	for fileID, ids := range s.fileSyms {
		for _, id := range ids {
			sym, ok := s.byID[id]
			require.True(t, ok, "fileSyms[%d] id %d missing from byID", fileID, id)
			assert.Equal(t, fileID, sym.Location.FileID)
		}
	}
	assert.GreaterOrEqual(t, s.MemoryBytes(), int64(0))
}

// TestConcurrentReplaceAndReadNeverMixesGenerations hammers one path with
// writers alternating two symbol sets while readers assert they only ever
// observe one complete generation.
func TestConcurrentReplaceAndReadNeverMixesGenerations(t *testing.T) {
	s := New()
	gen1 := func() []*types.Symbol {
		return []*types.Symbol{sampleSymbol("greet", types.KindFunction, 3)}
	}
	gen2 := func() []*types.Symbol {
		return []*types.Symbol{
			sampleSymbol("greet", types.KindFunction, 3),
			sampleSymbol("greeting", types.KindFunction, 7),
		}
	}
	s.ReplaceFile(types.FileInfo{ID: 1, Path: "hello.go"}, gen1(), nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				s.ReplaceFile(types.FileInfo{ID: 1, Path: "hello.go"}, gen2(), nil, nil)
			} else {
				s.ReplaceFile(types.FileInfo{ID: 1, Path: "hello.go"}, gen1(), nil, nil)
			}
		}
	}()

	for i := 0; i < 500; i++ {
		greet := len(s.SymbolsByName("greet"))
		greeting := len(s.SymbolsByName("greeting"))
		assert.Equal(t, 1, greet, "greet must exist in every generation")
		assert.LessOrEqual(t, greeting, 1)
	}
	<-done
}
