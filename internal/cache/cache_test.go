package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensave/CodeCortX-MCP/internal/bm25"
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		CreatedUnix: 1700000000,
		RootPath:    "/repo",
		Files: []types.FileInfo{
			{ID: 1, Path: "hello.go", Language: "go", SymbolCount: 1, ParseStatus: types.ParseOK},
		},
		Symbols: []*types.Symbol{
			{ID: 42, Name: "greet", Kind: types.KindFunction, Location: types.Location{FileID: 1, StartLine: 3, EndLine: 5}},
		},
		References: []types.Reference{
			{SymbolName: "greet", Kind: types.ReferenceDefinition, Location: types.Location{FileID: 1, StartLine: 3}},
		},
		BM25State: []bm25.DocState{
			{FileID: 1, Path: "hello.go", Lines: []string{"package main"}, TermFreq: map[string]int{"package": 1}, Length: 1},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo.ccmc")
	snap := sampleSnapshot()

	require.NoError(t, Save(path, snap))

	loaded, ok, err := Load(path)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, snap.RootPath, loaded.RootPath)
	require.Len(t, loaded.Files, 1)
	assert.Equal(t, snap.Files[0].Path, loaded.Files[0].Path)
	require.Len(t, loaded.Symbols, 1)
	assert.Equal(t, snap.Symbols[0].Name, loaded.Symbols[0].Name)
	require.Len(t, loaded.BM25State, 1)
	assert.Equal(t, snap.BM25State[0].TermFreq, loaded.BM25State[0].TermFreq)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.ccmc")

	snap, ok, err := Load(path)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Snapshot{}, snap)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo.ccmc")
	require.NoError(t, os.WriteFile(path, []byte("XXXX\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00"), 0o644))

	_, ok, err := Load(path)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestLoadDiscardsDanglingSymbolReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo.ccmc")
	snap := sampleSnapshot()
	snap.Symbols[0].Location.FileID = 99 // no file with this id in snap.Files

	require.NoError(t, Save(path, snap))

	_, ok, err := Load(path)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestKeyForIsStableAndDeterministic(t *testing.T) {
	k1 := KeyFor("/repo/a")
	k2 := KeyFor("/repo/a")
	k3 := KeyFor("/repo/b")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, 16)
}
