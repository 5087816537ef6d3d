package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensave/CodeCortX-MCP/internal/types"
)

func TestSearchRanksByRelevance(t *testing.T) {
	idx := New()
	idx.Index(1, "greet.go", []byte("func greet() {\n  fmt.Println(\"hello\")\n}\n"))
	idx.Index(2, "other.go", []byte("func other() {\n  fmt.Println(\"nothing to see\")\n}\n"))

	hits := idx.Search("greet", 10, 2)
	require.Len(t, hits, 1)
	assert.Equal(t, "greet.go", hits[0].Path)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestSearchContextLinesControlsSnippetWidth(t *testing.T) {
	idx := New()
	idx.Index(1, "greet.go", []byte("line1\nline2\nfunc greet() {}\nline4\nline5\n"))

	narrow := idx.Search("greet", 10, 0)
	require.Len(t, narrow, 1)
	assert.Equal(t, "func greet() {}", narrow[0].Snippet)

	wide := idx.Search("greet", 10, 1)
	require.Len(t, wide, 1)
	assert.Equal(t, "line2\nfunc greet() {}\nline4", wide[0].Snippet)
}

func TestRemoveDropsDocument(t *testing.T) {
	idx := New()
	idx.Index(1, "greet.go", []byte("func greet() {}"))
	idx.Remove(1)

	hits := idx.Search("greet", 10, 2)
	assert.Empty(t, hits)
}

func TestReindexReplacesDocument(t *testing.T) {
	idx := New()
	idx.Index(1, "greet.go", []byte("func greet() {}"))
	idx.Index(1, "greet.go", []byte("func renamed() {}"))

	assert.Empty(t, idx.Search("greet", 10, 2))
	assert.NotEmpty(t, idx.Search("renamed", 10, 2))
}

func TestTokenizeSplitsCamelAndSnakeCase(t *testing.T) {
	idx := New()
	idx.Index(1, "client.go", []byte("type HTTPClient struct{}\nvar http_client int"))

	hits := idx.Search("http", 10, 0)
	require.Len(t, hits, 1)
}

func TestExportImportRoundTrips(t *testing.T) {
	idx := New()
	idx.Index(1, "greet.go", []byte("func greet() {}"))
	idx.Index(2, "other.go", []byte("func other() {}"))

	state := idx.Export()

	restored := New()
	restored.Import(state)

	want := idx.Search("greet", 10, 2)
	got := restored.Search("greet", 10, 2)
	require.Len(t, got, 1)
	require.Len(t, want, 1)
	assert.Equal(t, want[0].Path, got[0].Path)
	assert.InDelta(t, want[0].Score, got[0].Score, 0.0001)

	var fileIDs []types.FileID
	for _, d := range state {
		fileIDs = append(fileIDs, d.FileID)
	}
	assert.ElementsMatch(t, []types.FileID{1, 2}, fileIDs)
}

// TestCorpusFrequencyTracksAddAndRemove pins the document-frequency
// bookkeeping: adding a document containing a term raises its df, removing
// the document restores it exactly.
func TestCorpusFrequencyTracksAddAndRemove(t *testing.T) {
	idx := New()
	idx.Index(1, "a.go", []byte("func greet() {}"))

	idx.mu.RLock()
	dfBefore := idx.docFreq["greet"]
	termsBefore := idx.totalTerms
	idx.mu.RUnlock()
	require.Equal(t, 1, dfBefore)

	idx.Index(2, "b.go", []byte("greet greet greet"))

	idx.mu.RLock()
	assert.Equal(t, 2, idx.docFreq["greet"])
	assert.Greater(t, idx.totalTerms, termsBefore)
	idx.mu.RUnlock()

	idx.Remove(2)

	idx.mu.RLock()
	assert.Equal(t, 1, idx.docFreq["greet"])
	assert.Equal(t, termsBefore, idx.totalTerms)
	idx.mu.RUnlock()
}

func TestExportImportRestoresSearchResults(t *testing.T) {
	idx := New()
	idx.Index(1, "greet.go", []byte("func greet() {\n  hello()\n}\n"))
	idx.Index(2, "other.go", []byte("func other() {}\n"))

	restored := New()
	restored.Import(idx.Export())

	want := idx.Search("greet", 10, 1)
	got := restored.Search("greet", 10, 1)
	require.Len(t, got, len(want))
	assert.Equal(t, want[0].Path, got[0].Path)
	assert.InDelta(t, want[0].Score, got[0].Score, 1e-12)
	assert.Equal(t, want[0].Snippet, got[0].Snippet)
}

func TestSearchLowercasedConcatenationMatchesCamelCase(t *testing.T) {
	idx := New()
	idx.Index(1, "outline.go", []byte("type FileOutline struct{}"))

	hits := idx.Search("fileoutline", 10, 0)
	require.Len(t, hits, 1)
	assert.Equal(t, "outline.go", hits[0].Path)
}

func TestSearchLimitsResults(t *testing.T) {
	idx := New()
	for i := 1; i <= 5; i++ {
		idx.Index(types.FileID(i), "f.go", []byte("greet greet"))
	}

	hits := idx.Search("greet", 3, 0)
	assert.Len(t, hits, 3)
}
